package models

import (
	"testing"
	"time"
)

func TestApplyProjectPatch(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	goal := "g1"

	p := NewProject("p1", "u1", CreateProjectInput{Name: "  lifeos  ", GoalID: &goal}, created)
	if p.Name != "lifeos" || p.Status != ProjectStatusIdea || p.Icon != "folder" || p.StartedAt != nil {
		t.Fatalf("unexpected new project: %+v", p)
	}

	active := ProjectStatusActive
	p = ApplyProjectPatch(p, UpdateProjectInput{Status: &active}, now)
	if p.StartedAt == nil || !p.StartedAt.Equal(now) || p.CompletedAt != nil {
		t.Errorf("activating should stamp started_at only: %+v", p)
	}

	done := ProjectStatusCompleted
	later := now.Add(time.Hour)
	p = ApplyProjectPatch(p, UpdateProjectInput{Status: &done}, later)
	if p.CompletedAt == nil || !p.CompletedAt.Equal(later) || !p.StartedAt.Equal(now) {
		t.Errorf("completing should stamp completed_at and keep started_at: %+v", p)
	}

	paused := ProjectStatusPaused
	p = ApplyProjectPatch(p, UpdateProjectInput{Status: &paused}, later)
	if p.CompletedAt != nil {
		t.Errorf("leaving completed should clear completed_at: %+v", p)
	}

	unlink := ""
	if p = ApplyProjectPatch(p, UpdateProjectInput{GoalID: &unlink}, later); p.GoalID != nil {
		t.Errorf("empty goal_id should unlink, got %v", *p.GoalID)
	}

	p.GoalID = &goal
	if got := UnlinkGoal(p, "other"); got.GoalID == nil {
		t.Error("UnlinkGoal cleared an unrelated goal")
	}
	if got := UnlinkGoal(p, goal); got.GoalID != nil {
		t.Error("UnlinkGoal kept the deleted goal")
	}
}
