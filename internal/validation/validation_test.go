package validation

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		input     any
		wantField string
		wantMsg   string
	}{
		{name: "valid goal", input: models.CreateGoalInput{Title: "Run a marathon"}},
		{name: "missing title", input: models.CreateGoalInput{}, wantField: "title", wantMsg: "is required"},
		{name: "blank title", input: models.CreateGoalInput{Title: "   "}, wantField: "title", wantMsg: "must not be blank"},
		{name: "bad color", input: models.CreateGoalInput{Title: "x", Color: "blue"}, wantField: "color", wantMsg: "hex color"},
		{name: "bad category", input: models.CreateGoalInput{Title: "x", Category: "misc"}, wantField: "category", wantMsg: "must be one of"},
		{name: "bad target date", input: models.CreateGoalInput{Title: "x", TargetDate: ptr("2024/01/01")}, wantField: "target_date", wantMsg: "YYYY-MM-DD"},
		{name: "patch blank name", input: models.UpdateHabitInput{Name: ptr(" ")}, wantField: "name", wantMsg: "must not be blank"},
		{name: "patch empty ok", input: models.UpdateHabitInput{}},
		{name: "session too long", input: models.CreateSessionInput{DurationMinutes: 2000}, wantField: "duration_minutes", wantMsg: "at most 1440"},
		{name: "wishlist bad url", input: models.CreateWishlistInput{Name: "Desk", URL: ptr("not a url")}, wantField: "url", wantMsg: "valid URL"},
		{name: "wishlist negative price", input: models.CreateWishlistInput{Name: "Desk", Price: ptr(-1.0)}, wantField: "price", wantMsg: "at least 0"},
		{name: "project ok", input: models.CreateProjectInput{Name: "lifeos", Status: models.ProjectStatusActive}},
		{name: "project bad status", input: models.CreateProjectInput{Name: "lifeos", Status: "shipped"}, wantField: "status", wantMsg: "one of"},
		{name: "project bad repo url", input: models.CreateProjectInput{Name: "lifeos", RepositoryURL: ptr("github")}, wantField: "repository_url", wantMsg: "valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !stderrors.Is(err, errors.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var ve *errors.ValidationError
			if !stderrors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			msg, ok := ve.Fields[tt.wantField]
			if !ok {
				t.Fatalf("expected field %q in %v", tt.wantField, ve.Fields)
			}
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("field %q message = %q, want it to contain %q", tt.wantField, msg, tt.wantMsg)
			}
		})
	}
}

func TestFrequency(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		freq    models.Frequency
		wantErr bool
	}{
		{name: "nil is daily", freq: nil},
		{name: "daily", freq: models.Daily{}},
		{name: "specific days", freq: models.SpecificDays{Days: []time.Weekday{time.Monday}}},
		{name: "no days", freq: models.SpecificDays{}, wantErr: true},
		{name: "weekday out of range", freq: models.SpecificDays{Days: []time.Weekday{7}}, wantErr: true},
		{name: "three times", freq: models.TimesPerWeek{Times: 3}},
		{name: "zero times", freq: models.TimesPerWeek{Times: 0}, wantErr: true},
		{name: "eight times", freq: models.TimesPerWeek{Times: 8}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Frequency(tt.freq)
			if (err != nil) != tt.wantErr {
				t.Errorf("Frequency(%#v) error = %v, wantErr %v", tt.freq, err, tt.wantErr)
			}
			if err != nil && !stderrors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateHabitChecksFrequency(t *testing.T) {
	v := New()
	err := v.CreateHabit(models.CreateHabitInput{Name: "Gym", Frequency: models.TimesPerWeek{Times: 9}})
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid frequency to be rejected, got %v", err)
	}
	if err := v.CreateHabit(models.CreateHabitInput{Name: "Gym", Frequency: models.TimesPerWeek{Times: 3}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDateAndID(t *testing.T) {
	v := New()
	if err := v.Date("date", "2024-02-29"); err != nil {
		t.Errorf("unexpected error for leap day: %v", err)
	}
	if err := v.Date("date", "2023-02-29"); err == nil {
		t.Error("expected error for non-existent date")
	}
	if err := v.ID("habit_id", " "); err == nil {
		t.Error("expected error for blank id")
	}
}
