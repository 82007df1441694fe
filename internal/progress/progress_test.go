package progress

import (
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/models"
)

func TestIsDueToday(t *testing.T) {
	// 2024-05-10 is a Friday
	ref := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		freq models.Frequency
		want bool
	}{
		{name: "nil frequency", freq: nil, want: true},
		{name: "daily", freq: models.Daily{}, want: true},
		{name: "specific days hit", freq: models.SpecificDays{Days: []time.Weekday{time.Monday, time.Friday}}, want: true},
		{name: "specific days miss", freq: models.SpecificDays{Days: []time.Weekday{time.Monday}}, want: false},
		{name: "specific days empty", freq: models.SpecificDays{}, want: false},
		{name: "times per week", freq: models.TimesPerWeek{Times: 3}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := models.Habit{Frequency: tt.freq}
			if got := IsDueToday(h, ref); got != tt.want {
				t.Errorf("IsDueToday() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCompletedOn(t *testing.T) {
	ref := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	cs := []models.HabitCompletion{{CompletedDate: "2024-05-09"}, {CompletedDate: "2024-05-10"}}

	if !IsCompletedOn(cs, ref) {
		t.Error("expected completed on 2024-05-10")
	}
	if IsCompletedOn(cs, ref.AddDate(0, 0, 1)) {
		t.Error("expected not completed on 2024-05-11")
	}
	if IsCompletedOn(nil, ref) {
		t.Error("expected false for no completions")
	}
}

func TestGoalPercent(t *testing.T) {
	ms := func(done, total int) []models.GoalMilestone {
		out := make([]models.GoalMilestone, total)
		for i := 0; i < done; i++ {
			out[i].IsCompleted = true
		}
		return out
	}

	tests := []struct {
		name string
		in   []models.GoalMilestone
		want int
	}{
		{name: "no milestones", in: nil, want: 0},
		{name: "one of four", in: ms(1, 4), want: 25},
		{name: "two of three", in: ms(2, 3), want: 67},
		{name: "all", in: ms(3, 3), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoalPercent(tt.in); got != tt.want {
				t.Errorf("GoalPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLearningPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{name: "half", completed: 5, total: 10, want: 50},
		{name: "over total clamps", completed: 15, total: 10, want: 100},
		{name: "zero total", completed: 3, total: 0, want: 0},
		{name: "negative total", completed: 3, total: -1, want: 0},
		{name: "negative completed", completed: -4, total: 10, want: 0},
		{name: "rounds", completed: 1, total: 3, want: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := models.LearningItem{CompletedUnits: tt.completed, TotalUnits: tt.total}
			if got := LearningPercent(item); got != tt.want {
				t.Errorf("LearningPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletionRate(t *testing.T) {
	ref := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)
	var cs []models.HabitCompletion
	for d := 1; d <= 15; d++ {
		cs = append(cs, models.HabitCompletion{CompletedDate: time.Date(2024, 5, d*2, 0, 0, 0, 0, time.UTC).Format("2006-01-02")})
	}
	// outside the window
	cs = append(cs, models.HabitCompletion{CompletedDate: "2024-04-01"})

	if got := CompletionRate(cs, ref, 30); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
	if got := CompletionRate(nil, ref, 30); got != 0 {
		t.Errorf("expected 0 for empty, got %d", got)
	}
	if got := CompletionRate(cs, ref, 0); got != 0 {
		t.Errorf("expected 0 for zero window, got %d", got)
	}
}

func TestProjectHabit(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	h := models.HabitWithCompletions{
		Completions: []models.HabitCompletion{{CompletedDate: "2024-05-09"}, {CompletedDate: "2024-05-10"}},
	}

	got := ProjectHabit(h, today)
	if got.CurrentStreak != 2 {
		t.Errorf("expected streak 2, got %d", got.CurrentStreak)
	}
	if !got.IsCompletedToday {
		t.Error("expected completed today")
	}
}
