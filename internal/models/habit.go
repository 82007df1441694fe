package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
)

type HabitCategory string

const (
	HabitCategoryHealth       HabitCategory = "health"
	HabitCategoryProductivity HabitCategory = "productivity"
	HabitCategoryLearning     HabitCategory = "learning"
	HabitCategoryPersonal     HabitCategory = "personal"
	HabitCategoryFinance      HabitCategory = "finance"
	HabitCategorySocial       HabitCategory = "social"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"user_id"`
	Name                  string        `json:"name"`
	Description           *string       `json:"description"`
	Icon                  string        `json:"icon"`
	Color                 string        `json:"color"`
	Frequency             Frequency     `json:"-"`
	Category              HabitCategory `json:"category"`
	TargetDurationMinutes *int          `json:"target_duration_minutes"`
	IsArchived            bool          `json:"is_archived"`
	OrderIndex            int           `json:"order_index"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

type habitAlias Habit

type habitWire struct {
	habitAlias
	FrequencyType  FrequencyType   `json:"frequency_type"`
	FrequencyValue json.RawMessage `json:"frequency_value"`
}

func (h Habit) MarshalJSON() ([]byte, error) {
	ft, fv, err := EncodeFrequency(h.Frequency)
	if err != nil {
		return nil, err
	}
	return json.Marshal(habitWire{habitAlias: habitAlias(h), FrequencyType: ft, FrequencyValue: fv})
}

func (h *Habit) UnmarshalJSON(data []byte) error {
	var w habitWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	freq, err := DecodeFrequency(w.FrequencyType, w.FrequencyValue)
	if err != nil {
		return err
	}
	*h = Habit(w.habitAlias)
	h.Frequency = freq
	return nil
}

// HabitCompletion is a single day's record of a habit. There is at most one
// per (HabitID, CompletedDate).
type HabitCompletion struct {
	ID              string    `json:"id"`
	HabitID         string    `json:"habit_id"`
	CompletedDate   string    `json:"completed_date"` // YYYY-MM-DD format
	DurationMinutes *int      `json:"duration_minutes"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsTemporary reports whether the completion was synthesized locally and has
// not been confirmed by the server yet.
func (c HabitCompletion) IsTemporary() bool {
	return strings.HasPrefix(c.ID, constants.TempIDPrefix)
}

// HabitWithCompletions is a habit together with its completion history and
// the fields derived from it.
type HabitWithCompletions struct {
	Habit
	Completions      []HabitCompletion `json:"completions"`
	CurrentStreak    int               `json:"current_streak"`
	IsCompletedToday bool              `json:"is_completed_today"`
}

type habitDerived struct {
	Completions      []HabitCompletion `json:"completions"`
	CurrentStreak    int               `json:"current_streak"`
	IsCompletedToday bool              `json:"is_completed_today"`
}

// MarshalJSON is defined explicitly because Habit's promoted method would
// otherwise drop the completion fields.
func (h HabitWithCompletions) MarshalJSON() ([]byte, error) {
	return mergeObjects(h.Habit, habitDerived{
		Completions:      h.Completions,
		CurrentStreak:    h.CurrentStreak,
		IsCompletedToday: h.IsCompletedToday,
	})
}

func (h *HabitWithCompletions) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &h.Habit); err != nil {
		return err
	}
	var d habitDerived
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	h.Completions = d.Completions
	h.CurrentStreak = d.CurrentStreak
	h.IsCompletedToday = d.IsCompletedToday
	return nil
}

// CompletionFor returns the completion recorded for day, if any.
func (h HabitWithCompletions) CompletionFor(day string) (HabitCompletion, bool) {
	for _, c := range h.Completions {
		if c.CompletedDate == day {
			return c, true
		}
	}
	return HabitCompletion{}, false
}

type CreateHabitInput struct {
	Name                  string        `json:"name" validate:"required,notblank,max=100"`
	Description           *string       `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon                  string        `json:"icon,omitempty"`
	Color                 string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Frequency             Frequency     `json:"-"`
	Category              HabitCategory `json:"category,omitempty" validate:"omitempty,oneof=health productivity learning personal finance social"`
	TargetDurationMinutes *int          `json:"target_duration_minutes,omitempty" validate:"omitempty,min=1"`
}

type createHabitAlias CreateHabitInput

func (in CreateHabitInput) MarshalJSON() ([]byte, error) {
	ft, fv, err := EncodeFrequency(in.Frequency)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		createHabitAlias
		FrequencyType  FrequencyType   `json:"frequency_type"`
		FrequencyValue json.RawMessage `json:"frequency_value"`
	}{createHabitAlias(in), ft, fv})
}

type UpdateHabitInput struct {
	Name                  *string        `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Description           *string        `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon                  *string        `json:"icon,omitempty"`
	Color                 *string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Frequency             Frequency      `json:"-"`
	Category              *HabitCategory `json:"category,omitempty" validate:"omitempty,oneof=health productivity learning personal finance social"`
	TargetDurationMinutes *int           `json:"target_duration_minutes,omitempty" validate:"omitempty,min=1"`
	IsArchived            *bool          `json:"is_archived,omitempty"`
	OrderIndex            *int           `json:"order_index,omitempty" validate:"omitempty,min=0"`
}

type updateHabitAlias UpdateHabitInput

func (in UpdateHabitInput) MarshalJSON() ([]byte, error) {
	if in.Frequency == nil {
		return json.Marshal(updateHabitAlias(in))
	}
	ft, fv, err := EncodeFrequency(in.Frequency)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		updateHabitAlias
		FrequencyType  FrequencyType   `json:"frequency_type"`
		FrequencyValue json.RawMessage `json:"frequency_value"`
	}{updateHabitAlias(in), ft, fv})
}

// CompletionFields are the optional attributes stored with a completion upsert.
type CompletionFields struct {
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// NewHabit builds a habit from a create input, filling defaults.
func NewHabit(id, userID string, in CreateHabitInput, now time.Time) Habit {
	h := Habit{
		ID:                    id,
		UserID:                userID,
		Name:                  strings.TrimSpace(in.Name),
		Description:           in.Description,
		Icon:                  in.Icon,
		Color:                 in.Color,
		Frequency:             in.Frequency,
		Category:              in.Category,
		TargetDurationMinutes: in.TargetDurationMinutes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if h.Frequency == nil {
		h.Frequency = Daily{}
	}
	if h.Icon == "" {
		h.Icon = constants.DefaultHabitIcon
	}
	if h.Color == "" {
		h.Color = constants.DefaultColor
	}
	if h.Category == "" {
		h.Category = HabitCategoryPersonal
	}
	return h
}

// ApplyHabitPatch returns h with every non-nil field of p applied.
func ApplyHabitPatch(h Habit, p UpdateHabitInput, now time.Time) Habit {
	if p.Name != nil {
		h.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		h.Description = p.Description
	}
	if p.Icon != nil {
		h.Icon = *p.Icon
	}
	if p.Color != nil {
		h.Color = *p.Color
	}
	if p.Frequency != nil {
		h.Frequency = p.Frequency
	}
	if p.Category != nil {
		h.Category = *p.Category
	}
	if p.TargetDurationMinutes != nil {
		h.TargetDurationMinutes = p.TargetDurationMinutes
	}
	if p.IsArchived != nil {
		h.IsArchived = *p.IsArchived
	}
	if p.OrderIndex != nil {
		h.OrderIndex = *p.OrderIndex
	}
	h.UpdatedAt = now
	return h
}

func mergeObjects(values ...any) ([]byte, error) {
	merged := make(map[string]json.RawMessage)
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		for k, f := range fields {
			merged[k] = f
		}
	}
	return json.Marshal(merged)
}
