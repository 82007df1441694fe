package models

import (
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

type GoalCategory string

const (
	GoalCategoryCareer   GoalCategory = "career"
	GoalCategoryHealth   GoalCategory = "health"
	GoalCategoryFinance  GoalCategory = "finance"
	GoalCategoryPersonal GoalCategory = "personal"
	GoalCategoryLearning GoalCategory = "learning"
	GoalCategoryCreative GoalCategory = "creative"
)

// Goal is a longer-running objective broken into milestones.
// CompletedAt is non-nil exactly when Status is GoalStatusCompleted.
type Goal struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	TargetDate  *string      `json:"target_date"` // YYYY-MM-DD format
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at"`
	Status      GoalStatus   `json:"status"`
	Color       string       `json:"color"`
	Icon        string       `json:"icon"`
	Category    GoalCategory `json:"category"`
	OrderIndex  int          `json:"order_index"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type GoalMilestone struct {
	ID          string     `json:"id"`
	GoalID      string     `json:"goal_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	OrderIndex  int        `json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
}

type GoalWithMilestones struct {
	Goal
	Milestones      []GoalMilestone `json:"milestones"`
	ProgressPercent int             `json:"progress_percent"`
}

type CreateGoalInput struct {
	Title       string       `json:"title" validate:"required,notblank,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=2000"`
	TargetDate  *string      `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Color       string       `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        string       `json:"icon,omitempty"`
	Category    GoalCategory `json:"category,omitempty" validate:"omitempty,oneof=career health finance personal learning creative"`
}

type UpdateGoalInput struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	TargetDate  *string       `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Color       *string       `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string       `json:"icon,omitempty"`
	Category    *GoalCategory `json:"category,omitempty" validate:"omitempty,oneof=career health finance personal learning creative"`
	Status      *GoalStatus   `json:"status,omitempty" validate:"omitempty,oneof=active completed paused abandoned"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	OrderIndex  *int          `json:"order_index,omitempty" validate:"omitempty,min=0"`
}

type CreateMilestoneInput struct {
	Title       string  `json:"title" validate:"required,notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type UpdateMilestoneInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// NewGoal builds an active goal from a create input.
func NewGoal(id, userID string, in CreateGoalInput, now time.Time) Goal {
	g := Goal{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		TargetDate:  in.TargetDate,
		StartedAt:   now,
		Status:      GoalStatusActive,
		Color:       in.Color,
		Icon:        in.Icon,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if g.Color == "" {
		g.Color = constants.DefaultColor
	}
	if g.Icon == "" {
		g.Icon = "target"
	}
	if g.Category == "" {
		g.Category = GoalCategoryPersonal
	}
	return g
}

// ApplyGoalPatch returns g with p applied. Status changes keep CompletedAt in
// step: entering completed stamps it (unless the patch supplies one), leaving
// completed clears it.
func ApplyGoalPatch(g Goal, p UpdateGoalInput, now time.Time) Goal {
	if p.Title != nil {
		g.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		g.Description = p.Description
	}
	if p.TargetDate != nil {
		g.TargetDate = p.TargetDate
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
	if p.Icon != nil {
		g.Icon = *p.Icon
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.OrderIndex != nil {
		g.OrderIndex = *p.OrderIndex
	}
	if p.Status != nil {
		g.Status = *p.Status
	}

	if g.Status == GoalStatusCompleted {
		switch {
		case p.CompletedAt != nil:
			t := *p.CompletedAt
			g.CompletedAt = &t
		case g.CompletedAt == nil:
			t := now
			g.CompletedAt = &t
		}
	} else {
		g.CompletedAt = nil
	}

	g.UpdatedAt = now
	return g
}

// NewMilestone builds an open milestone appended after existing ones.
func NewMilestone(id, goalID string, in CreateMilestoneInput, order int, now time.Time) GoalMilestone {
	return GoalMilestone{
		ID:          id,
		GoalID:      goalID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		OrderIndex:  order,
		CreatedAt:   now,
	}
}

// ApplyMilestonePatch returns m with p applied; toggling completion stamps or
// clears CompletedAt.
func ApplyMilestonePatch(m GoalMilestone, p UpdateMilestoneInput, now time.Time) GoalMilestone {
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		m.Description = p.Description
	}
	if p.IsCompleted != nil {
		m.IsCompleted = *p.IsCompleted
		if m.IsCompleted {
			t := now
			m.CompletedAt = &t
		} else {
			m.CompletedAt = nil
		}
	}
	return m
}
