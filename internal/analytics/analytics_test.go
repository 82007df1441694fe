package analytics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestDailyCompletionRate_Scenario(t *testing.T) {
	habits := []models.Habit{
		{ID: "A"},
		{ID: "B"},
		{ID: "C", IsArchived: true},
	}
	completions := []models.HabitCompletion{
		{HabitID: "A", CompletedDate: "2024-01-01"},
		{HabitID: "A", CompletedDate: "2024-01-02"},
		{HabitID: "B", CompletedDate: "2024-01-01"},
		{HabitID: "C", CompletedDate: "2024-01-02"},
	}

	stats := DailyCompletionRate(habits, completions, date("2024-01-01"), date("2024-01-02"))
	if len(stats) != 2 {
		t.Fatalf("expected 2 records, got %d", len(stats))
	}
	if stats[0].Date != "2024-01-01" || stats[0].Rate != 100 {
		t.Errorf("day 1: expected 100%%, got %+v", stats[0])
	}
	if stats[1].Date != "2024-01-02" || stats[1].Rate != 50 {
		t.Errorf("day 2: expected 50%%, got %+v", stats[1])
	}
	if stats[0].TotalHabits != 2 {
		t.Errorf("expected 2 active habits, got %d", stats[0].TotalHabits)
	}
}

func TestDailyCompletionRate_Edges(t *testing.T) {
	t.Run("start after end", func(t *testing.T) {
		got := DailyCompletionRate([]models.Habit{{ID: "A"}}, nil, date("2024-01-05"), date("2024-01-01"))
		if len(got) != 0 {
			t.Errorf("expected no records, got %d", len(got))
		}
	})

	t.Run("no active habits", func(t *testing.T) {
		got := DailyCompletionRate([]models.Habit{{ID: "A", IsArchived: true}}, nil, date("2024-01-01"), date("2024-01-03"))
		if len(got) != 3 {
			t.Fatalf("expected 3 records, got %d", len(got))
		}
		for _, s := range got {
			if s.Rate != 0 {
				t.Errorf("expected 0 rate, got %v", s.Rate)
			}
		}
	})

	t.Run("single day inclusive", func(t *testing.T) {
		got := DailyCompletionRate([]models.Habit{{ID: "A"}}, nil, date("2024-01-01"), date("2024-01-01").Add(20*time.Hour))
		if len(got) != 1 {
			t.Errorf("expected 1 record, got %d", len(got))
		}
	})

	t.Run("duplicate completions count once", func(t *testing.T) {
		cs := []models.HabitCompletion{
			{HabitID: "A", CompletedDate: "2024-01-01"},
			{HabitID: "A", CompletedDate: "2024-01-01"},
		}
		got := DailyCompletionRate([]models.Habit{{ID: "A"}, {ID: "B"}}, cs, date("2024-01-01"), date("2024-01-01"))
		if got[0].Rate != 50 {
			t.Errorf("expected 50, got %v", got[0].Rate)
		}
	})
}

func TestDayOfWeekDistribution(t *testing.T) {
	// 2024-01-07 is a Sunday, 2024-01-08 a Monday
	cs := []models.HabitCompletion{
		{CompletedDate: "2024-01-07"},
		{CompletedDate: "2024-01-14"},
		{CompletedDate: "2024-01-08"},
		{CompletedDate: "2024-01-09"},
	}

	got := DayOfWeekDistribution(cs)
	if len(got) != 7 {
		t.Fatalf("expected 7 records, got %d", len(got))
	}
	if got[0].Day != "Sun" || got[0].Count != 2 || got[0].Percentage != 50 {
		t.Errorf("sunday: got %+v", got[0])
	}
	if got[1].Count != 1 || got[1].Percentage != 25 {
		t.Errorf("monday: got %+v", got[1])
	}

	empty := DayOfWeekDistribution(nil)
	for _, s := range empty {
		if s.Count != 0 || s.Percentage != 0 {
			t.Errorf("expected zeros, got %+v", s)
		}
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	in := Input{
		Completions: []models.HabitCompletion{
			{CompletedDate: "2024-03-01"},
			{CompletedDate: "2024-03-31"},
			{CompletedDate: "2024-02-29"},
		},
		Goals: []models.Goal{
			{Status: models.GoalStatusCompleted, CompletedAt: ptrTime(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))},
			{Status: models.GoalStatusCompleted, CompletedAt: ptrTime(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC))},
			{Status: models.GoalStatusActive},
		},
		Sessions: []models.LearningSession{
			{SessionDate: "2024-03-10", DurationMinutes: 30},
			{SessionDate: "2024-03-11", DurationMinutes: 45},
			{SessionDate: "2024-04-01", DurationMinutes: 60},
		},
		BucketItems: []models.BucketListItem{
			{IsCompleted: true, CompletedAt: ptrTime(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))},
			{IsCompleted: false},
		},
	}

	got := Summarize(in, now)
	want := MonthlySummary{HabitCompletions: 2, GoalsCompleted: 1, LearningMinutes: 75, BucketItemsAchieved: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestGoalTimeline(t *testing.T) {
	ms := []models.GoalMilestone{
		{Title: "second", GoalID: "g1", IsCompleted: true, CompletedAt: ptrTime(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))},
		{Title: "open", GoalID: "g1"},
		{Title: "first", GoalID: "g2", IsCompleted: true, CompletedAt: ptrTime(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))},
		{Title: "no timestamp", GoalID: "g2", IsCompleted: true},
	}

	got := GoalTimeline(ms)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Title != "first" || got[0].Label != "Jan 3" || got[0].GoalID != "g2" {
		t.Errorf("unexpected first entry: %+v", got[0])
	}
	if got[1].Title != "second" || got[1].Label != "Feb 5" {
		t.Errorf("unexpected second entry: %+v", got[1])
	}
}

func TestAverageCompletionTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		goals []models.Goal
		want  int
	}{
		{name: "none", want: 0},
		{
			name: "ten and twenty",
			goals: []models.Goal{
				{Status: models.GoalStatusCompleted, StartedAt: start, CompletedAt: ptrTime(start.AddDate(0, 0, 10))},
				{Status: models.GoalStatusCompleted, StartedAt: start, CompletedAt: ptrTime(start.AddDate(0, 0, 20))},
			},
			want: 15,
		},
		{
			name: "ignores non-completed",
			goals: []models.Goal{
				{Status: models.GoalStatusCompleted, StartedAt: start, CompletedAt: ptrTime(start.AddDate(0, 0, 4))},
				{Status: models.GoalStatusActive, StartedAt: start},
			},
			want: 4,
		},
		{
			name: "partial days truncate",
			goals: []models.Goal{
				{Status: models.GoalStatusCompleted, StartedAt: start, CompletedAt: ptrTime(start.Add(47 * time.Hour))},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageCompletionTime(tt.goals); got != tt.want {
				t.Errorf("AverageCompletionTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRangeBounds(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		rng  Range
		want string
	}{
		{RangeWeek, "2024-05-12"},
		{RangeMonth, "2024-05-01"},
		{RangeYear, "2024-01-01"},
		{RangeAll, "2023-05-16"},
	}

	for _, tt := range tests {
		t.Run(string(tt.rng), func(t *testing.T) {
			start, end := tt.rng.Bounds(now)
			if got := start.Format("2006-01-02"); got != tt.want {
				t.Errorf("start = %s, want %s", got, tt.want)
			}
			if !end.Equal(now) {
				t.Errorf("end = %v, want %v", end, now)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	if r, err := ParseRange(""); err != nil || r != RangeWeek {
		t.Errorf("expected week default, got %q, %v", r, err)
	}
	if _, err := ParseRange("decade"); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	in := FromCollections(
		[]models.HabitWithCompletions{
			{Habit: models.Habit{ID: "A"}, Completions: []models.HabitCompletion{{HabitID: "A", CompletedDate: "2024-01-01"}, {HabitID: "A", CompletedDate: "2024-01-02"}}},
			{Habit: models.Habit{ID: "B"}, Completions: []models.HabitCompletion{{HabitID: "B", CompletedDate: "2024-01-01"}}},
			{Habit: models.Habit{ID: "C", IsArchived: true}},
		},
		nil, nil, nil,
	)

	r, err := BuildReport(context.Background(), in, RangeMonth, now)
	if err != nil {
		t.Fatalf("failed to build report: %v", err)
	}
	if len(r.Daily) != 2 {
		t.Fatalf("expected 2 daily records, got %d", len(r.Daily))
	}
	if r.Daily[0].Rate != 100 || r.Daily[1].Rate != 50 {
		t.Errorf("unexpected rates: %+v", r.Daily)
	}
	if r.Monthly.HabitCompletions != 3 {
		t.Errorf("expected 3 completions this month, got %d", r.Monthly.HabitCompletions)
	}
	total := 0.0
	for _, s := range r.DayOfWeek {
		total += s.Percentage
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("expected percentages to sum to 100, got %v", total)
	}
}

func TestBuildReport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildReport(ctx, Input{}, RangeWeek, time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
