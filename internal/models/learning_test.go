package models

import (
	"testing"
	"time"
)

func TestLearningSessionIsTemporary(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: "temp-0f8c2b", want: true},
		{id: "7d9e1a40-5b2c-4c0e-9a51-3f4d2e6b8c10", want: false},
		{id: "", want: false},
	}

	for _, tt := range tests {
		if got := (LearningSession{ID: tt.id}).IsTemporary(); got != tt.want {
			t.Errorf("IsTemporary(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestApplySession(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	item := LearningItem{ID: "l1", Title: "SICP", TotalUnits: 10, CompletedUnits: 2, TotalTimeMinutes: 30, Status: LearningStatusNotStarted}

	got := ApplySession(item, LearningSession{DurationMinutes: 45, UnitsCompleted: 3}, now)
	if got.ID != "l1" || got.Title != "SICP" {
		t.Errorf("identity changed: %+v", got)
	}
	if got.CompletedUnits != 5 || got.TotalTimeMinutes != 75 {
		t.Errorf("totals = %d/%d, want 5/75", got.CompletedUnits, got.TotalTimeMinutes)
	}
	if got.Status != LearningStatusActive || got.StartedAt == nil || !got.StartedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("status/timestamps not applied: %+v", got)
	}

	paused := LearningItem{Status: LearningStatusPaused}
	if got := ApplySession(paused, LearningSession{UnitsCompleted: 1}, now); got.Status != LearningStatusPaused {
		t.Errorf("status = %s, want paused untouched", got.Status)
	}
}
