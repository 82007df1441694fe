package models

import (
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
)

type LearningType string

const (
	LearningTypeSkill         LearningType = "skill"
	LearningTypeBook          LearningType = "book"
	LearningTypeCourse        LearningType = "course"
	LearningTypeProject       LearningType = "project"
	LearningTypeCertification LearningType = "certification"
)

type LearningStatus string

const (
	LearningStatusNotStarted LearningStatus = "not_started"
	LearningStatusActive     LearningStatus = "active"
	LearningStatusPaused     LearningStatus = "paused"
	LearningStatusCompleted  LearningStatus = "completed"
	LearningStatusDropped    LearningStatus = "dropped"
)

// LearningItem tracks a book, course or skill. CompletedUnits and
// TotalTimeMinutes are running totals of the item's sessions.
type LearningItem struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description"`
	Type             LearningType   `json:"type"`
	TotalUnits       int            `json:"total_units"`
	CompletedUnits   int            `json:"completed_units"`
	UnitName         string         `json:"unit_name"`
	Status           LearningStatus `json:"status"`
	URL              *string        `json:"url"`
	Color            string         `json:"color"`
	Icon             string         `json:"icon"`
	TotalTimeMinutes int            `json:"total_time_minutes"`
	StartedAt        *time.Time     `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	OrderIndex       int            `json:"order_index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type LearningSession struct {
	ID              string    `json:"id"`
	LearningItemID  string    `json:"learning_item_id"`
	SessionDate     string    `json:"session_date"` // YYYY-MM-DD format
	DurationMinutes int       `json:"duration_minutes"`
	UnitsCompleted  int       `json:"units_completed"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsTemporary reports whether the session is an optimistic placeholder.
func (s LearningSession) IsTemporary() bool {
	return strings.HasPrefix(s.ID, constants.TempIDPrefix)
}

type LearningItemWithSessions struct {
	LearningItem
	Sessions        []LearningSession `json:"sessions"`
	ProgressPercent int               `json:"progress_percent"`
}

// LogSessionResult is returned by a session write: the new session and, when
// the provider reports it, the parent item with its running totals already
// incremented. Item is nil when only the session came back.
type LogSessionResult struct {
	Session LearningSession `json:"session"`
	Item    *LearningItem   `json:"item,omitempty"`
}

type CreateLearningInput struct {
	Title       string       `json:"title" validate:"required,notblank,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type        LearningType `json:"type,omitempty" validate:"omitempty,oneof=skill book course project certification"`
	TotalUnits  int          `json:"total_units,omitempty" validate:"omitempty,min=1"`
	UnitName    string       `json:"unit_name,omitempty" validate:"omitempty,max=50"`
	URL         *string      `json:"url,omitempty" validate:"omitempty,url"`
	Color       string       `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        string       `json:"icon,omitempty"`
}

type UpdateLearningInput struct {
	Title            *string         `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description      *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type             *LearningType   `json:"type,omitempty" validate:"omitempty,oneof=skill book course project certification"`
	TotalUnits       *int            `json:"total_units,omitempty" validate:"omitempty,min=1"`
	UnitName         *string         `json:"unit_name,omitempty" validate:"omitempty,max=50"`
	URL              *string         `json:"url,omitempty" validate:"omitempty,url"`
	Color            *string         `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon             *string         `json:"icon,omitempty"`
	CompletedUnits   *int            `json:"completed_units,omitempty" validate:"omitempty,min=0"`
	Status           *LearningStatus `json:"status,omitempty" validate:"omitempty,oneof=not_started active paused completed dropped"`
	TotalTimeMinutes *int            `json:"total_time_minutes,omitempty" validate:"omitempty,min=0"`
}

type CreateSessionInput struct {
	DurationMinutes int     `json:"duration_minutes" validate:"min=0,max=1440"`
	UnitsCompleted  int     `json:"units_completed,omitempty" validate:"min=0"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	SessionDate     string  `json:"session_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// NewLearningItem builds a not-started item from a create input.
func NewLearningItem(id, userID string, in CreateLearningInput, now time.Time) LearningItem {
	item := LearningItem{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		TotalUnits:  in.TotalUnits,
		UnitName:    in.UnitName,
		Status:      LearningStatusNotStarted,
		URL:         in.URL,
		Color:       in.Color,
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.Type == "" {
		item.Type = LearningTypeSkill
	}
	if item.TotalUnits == 0 {
		item.TotalUnits = constants.DefaultTotalUnits
	}
	if item.UnitName == "" {
		item.UnitName = constants.DefaultUnitName
	}
	if item.Color == "" {
		item.Color = constants.DefaultColor
	}
	if item.Icon == "" {
		item.Icon = "book"
	}
	return item
}

// ApplyLearningPatch returns item with p applied. Moving to active stamps
// StartedAt once; moving to completed stamps CompletedAt, leaving it clears it.
func ApplyLearningPatch(item LearningItem, p UpdateLearningInput, now time.Time) LearningItem {
	if p.Title != nil {
		item.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		item.Description = p.Description
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.TotalUnits != nil {
		item.TotalUnits = *p.TotalUnits
	}
	if p.UnitName != nil {
		item.UnitName = *p.UnitName
	}
	if p.URL != nil {
		item.URL = p.URL
	}
	if p.Color != nil {
		item.Color = *p.Color
	}
	if p.Icon != nil {
		item.Icon = *p.Icon
	}
	if p.CompletedUnits != nil {
		item.CompletedUnits = *p.CompletedUnits
	}
	if p.TotalTimeMinutes != nil {
		item.TotalTimeMinutes = *p.TotalTimeMinutes
	}
	if p.Status != nil {
		item.Status = *p.Status
		if item.Status == LearningStatusActive && item.StartedAt == nil {
			t := now
			item.StartedAt = &t
		}
		if item.Status == LearningStatusCompleted {
			if item.CompletedAt == nil {
				t := now
				item.CompletedAt = &t
			}
		} else {
			item.CompletedAt = nil
		}
	}
	item.UpdatedAt = now
	return item
}

// NewSession builds a session record for itemID. An empty SessionDate
// defaults to today.
func NewSession(id, itemID string, in CreateSessionInput, today string, now time.Time) LearningSession {
	day := in.SessionDate
	if day == "" {
		day = today
	}
	return LearningSession{
		ID:              id,
		LearningItemID:  itemID,
		SessionDate:     day,
		DurationMinutes: in.DurationMinutes,
		UnitsCompleted:  in.UnitsCompleted,
		Notes:           in.Notes,
		CreatedAt:       now,
	}
}

// ApplySession increments the item's running totals by one session. A first
// session on a not-started item also marks it active.
func ApplySession(item LearningItem, s LearningSession, now time.Time) LearningItem {
	item.CompletedUnits += s.UnitsCompleted
	item.TotalTimeMinutes += s.DurationMinutes
	if item.Status == LearningStatusNotStarted {
		item.Status = LearningStatusActive
	}
	if item.StartedAt == nil {
		t := now
		item.StartedAt = &t
	}
	item.UpdatedAt = now
	return item
}
