// Package progress derives per-entity fields (due/done flags, percentages,
// streaks) from raw entities and their event arrays.
package progress

import (
	"math"
	"time"

	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/streak"
	"github.com/julianstephens/lifeos/internal/utils"
)

// IsDueToday reports whether h is expected on ref's weekday. Times-per-week
// habits are always considered due.
func IsDueToday(h models.Habit, ref time.Time) bool {
	switch f := h.Frequency.(type) {
	case nil, models.Daily:
		return true
	case models.SpecificDays:
		return f.Includes(ref.Weekday())
	case models.TimesPerWeek:
		return true
	default:
		return true
	}
}

// IsCompletedOn reports whether completions hold a record for ref's date.
func IsCompletedOn(completions []models.HabitCompletion, ref time.Time) bool {
	day := utils.FormatDay(ref)
	for _, c := range completions {
		if c.CompletedDate == day {
			return true
		}
	}
	return false
}

// GoalPercent is round(100 * completed / total), 0 with no milestones.
func GoalPercent(milestones []models.GoalMilestone) int {
	if len(milestones) == 0 {
		return 0
	}
	done := 0
	for _, m := range milestones {
		if m.IsCompleted {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(milestones))))
}

// LearningPercent is round(100 * completed / total) clamped to [0, 100].
func LearningPercent(item models.LearningItem) int {
	if item.TotalUnits <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(item.CompletedUnits) / float64(item.TotalUnits)))
	return clamp(pct, 0, 100)
}

// CompletionRate is the share of the last windowDays (ending at ref) that
// have a completion, as a rounded percentage.
func CompletionRate(completions []models.HabitCompletion, ref time.Time, windowDays int) int {
	if windowDays <= 0 {
		return 0
	}
	end := utils.DayKey(ref)
	start := end.AddDate(0, 0, -(windowDays - 1))

	seen := make(map[time.Time]struct{}, len(completions))
	for _, c := range completions {
		d, err := utils.ParseDay(c.CompletedDate)
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		seen[d] = struct{}{}
	}
	return clamp(int(math.Round(100*float64(len(seen))/float64(windowDays))), 0, 100)
}

// ProjectHabit recomputes the derived fields of one habit.
func ProjectHabit(h models.HabitWithCompletions, today time.Time) models.HabitWithCompletions {
	h.CurrentStreak = streak.ForHabit(h.Completions, today)
	h.IsCompletedToday = IsCompletedOn(h.Completions, today)
	return h
}

// ProjectHabits applies ProjectHabit to every element of hs in place and
// returns hs.
func ProjectHabits(hs []models.HabitWithCompletions, today time.Time) []models.HabitWithCompletions {
	for i := range hs {
		hs[i] = ProjectHabit(hs[i], today)
	}
	return hs
}

func ProjectGoal(g models.GoalWithMilestones) models.GoalWithMilestones {
	g.ProgressPercent = GoalPercent(g.Milestones)
	return g
}

func ProjectLearning(i models.LearningItemWithSessions) models.LearningItemWithSessions {
	i.ProgressPercent = LearningPercent(i.LearningItem)
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
