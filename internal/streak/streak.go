// Package streak computes consecutive-day runs from habit completion dates.
package streak

import (
	"sort"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

type daySet map[time.Time]struct{}

func newDaySet(dates []time.Time) daySet {
	set := make(daySet, len(dates))
	for _, d := range dates {
		set[utils.DayKey(d)] = struct{}{}
	}
	return set
}

// Current returns the number of consecutive days ending today (or yesterday,
// if today is not done yet) that appear in dates. The walk is bounded by
// constants.StreakSafetyLimit.
func Current(dates []time.Time, today time.Time) int {
	return walk(newDaySet(dates), utils.DayKey(today))
}

// CurrentFromDays is Current over YYYY-MM-DD strings. Unparseable strings are
// ignored.
func CurrentFromDays(days []string, today time.Time) int {
	return walk(parseDays(days), utils.DayKey(today))
}

func walk(set daySet, today time.Time) int {
	if len(set) == 0 {
		return 0
	}

	streak := 0
	cursor := today
	for i := 0; i < constants.StreakSafetyLimit; i++ {
		if _, ok := set[cursor]; ok {
			streak++
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		if cursor.Equal(today) {
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		break
	}
	return streak
}

// Longest returns the longest run of consecutive days in dates.
func Longest(dates []time.Time) int {
	set := newDaySet(dates)
	if len(set) == 0 {
		return 0
	}

	keys := make([]time.Time, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	best, run := 1, 1
	for i := 1; i < len(keys); i++ {
		if keys[i].Equal(keys[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// Overall returns the current streak of days on which any habit was
// completed.
func Overall(habits []models.HabitWithCompletions, today time.Time) int {
	var days []string
	for _, h := range habits {
		for _, c := range h.Completions {
			days = append(days, c.CompletedDate)
		}
	}
	return CurrentFromDays(days, today)
}

// ForHabit returns the current streak for a single habit's completions.
func ForHabit(completions []models.HabitCompletion, today time.Time) int {
	days := make([]string, 0, len(completions))
	for _, c := range completions {
		days = append(days, c.CompletedDate)
	}
	return CurrentFromDays(days, today)
}

func parseDays(days []string) daySet {
	set := make(daySet, len(days))
	for _, s := range days {
		d, err := utils.ParseDay(s)
		if err != nil {
			continue
		}
		set[d] = struct{}{}
	}
	return set
}
