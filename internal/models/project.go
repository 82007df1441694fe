package models

import (
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
)

type ProjectStatus string

const (
	ProjectStatusIdea      ProjectStatus = "idea"
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusPaused    ProjectStatus = "paused"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusAbandoned ProjectStatus = "abandoned"
)

// Project is a side project, optionally contributing to a goal.
// CompletedAt is non-nil exactly when Status is ProjectStatusCompleted.
type Project struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Name          string        `json:"name"`
	Description   *string       `json:"description"`
	Status        ProjectStatus `json:"status"`
	GoalID        *string       `json:"goal_id"`
	Color         string        `json:"color"`
	Icon          string        `json:"icon"`
	URL           *string       `json:"url"`
	RepositoryURL *string       `json:"repository_url"`
	StartedAt     *time.Time    `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at"`
	OrderIndex    int           `json:"order_index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type CreateProjectInput struct {
	Name          string        `json:"name" validate:"required,notblank,max=200"`
	Description   *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status        ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=idea planned active paused completed abandoned"`
	GoalID        *string       `json:"goal_id,omitempty" validate:"omitempty,notblank"`
	Color         string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon          string        `json:"icon,omitempty"`
	URL           *string       `json:"url,omitempty" validate:"omitempty,url"`
	RepositoryURL *string       `json:"repository_url,omitempty" validate:"omitempty,url"`
}

// UpdateProjectInput patches a project. An empty GoalID unlinks the goal.
type UpdateProjectInput struct {
	Name          *string        `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Description   *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status        *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=idea planned active paused completed abandoned"`
	GoalID        *string        `json:"goal_id,omitempty"`
	Color         *string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon          *string        `json:"icon,omitempty"`
	URL           *string        `json:"url,omitempty" validate:"omitempty,url"`
	RepositoryURL *string        `json:"repository_url,omitempty" validate:"omitempty,url"`
	OrderIndex    *int           `json:"order_index,omitempty" validate:"omitempty,min=0"`
}

// NewProject builds a project from a create input; status defaults to idea.
func NewProject(id, userID string, in CreateProjectInput, now time.Time) Project {
	p := Project{
		ID:            id,
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Status:        in.Status,
		GoalID:        in.GoalID,
		Color:         in.Color,
		Icon:          in.Icon,
		URL:           in.URL,
		RepositoryURL: in.RepositoryURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.Status == "" {
		p.Status = ProjectStatusIdea
	}
	if p.Color == "" {
		p.Color = constants.DefaultColor
	}
	if p.Icon == "" {
		p.Icon = "folder"
	}
	return stampProject(p, now)
}

// ApplyProjectPatch returns p with patch applied. Becoming active stamps
// StartedAt once; completing stamps CompletedAt and leaving completed
// clears it.
func ApplyProjectPatch(p Project, patch UpdateProjectInput, now time.Time) Project {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.GoalID != nil {
		if *patch.GoalID == "" {
			p.GoalID = nil
		} else {
			id := *patch.GoalID
			p.GoalID = &id
		}
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.Icon != nil {
		p.Icon = *patch.Icon
	}
	if patch.URL != nil {
		p.URL = patch.URL
	}
	if patch.RepositoryURL != nil {
		p.RepositoryURL = patch.RepositoryURL
	}
	if patch.OrderIndex != nil {
		p.OrderIndex = *patch.OrderIndex
	}
	p.UpdatedAt = now
	return stampProject(p, now)
}

// UnlinkGoal clears the goal reference when it points at goalID.
func UnlinkGoal(p Project, goalID string) Project {
	if p.GoalID != nil && *p.GoalID == goalID {
		p.GoalID = nil
	}
	return p
}

func stampProject(p Project, now time.Time) Project {
	if (p.Status == ProjectStatusActive || p.Status == ProjectStatusCompleted) && p.StartedAt == nil {
		t := now
		p.StartedAt = &t
	}
	if p.Status == ProjectStatusCompleted {
		if p.CompletedAt == nil {
			t := now
			p.CompletedAt = &t
		}
	} else {
		p.CompletedAt = nil
	}
	return p
}
