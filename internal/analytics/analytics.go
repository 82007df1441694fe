// Package analytics aggregates habit, goal, learning and bucket list
// collections into time-bucketed summaries. Every function is pure.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

// Input is the flattened set of collections the aggregates read from.
type Input struct {
	Habits      []models.Habit
	Completions []models.HabitCompletion
	Goals       []models.Goal
	Milestones  []models.GoalMilestone
	Sessions    []models.LearningSession
	BucketItems []models.BucketListItem
}

// FromCollections flattens nested cache collections into an Input.
func FromCollections(
	habits []models.HabitWithCompletions,
	goals []models.GoalWithMilestones,
	learning []models.LearningItemWithSessions,
	bucket []models.BucketListItem,
) Input {
	in := Input{BucketItems: bucket}
	for _, h := range habits {
		in.Habits = append(in.Habits, h.Habit)
		in.Completions = append(in.Completions, h.Completions...)
	}
	for _, g := range goals {
		in.Goals = append(in.Goals, g.Goal)
		in.Milestones = append(in.Milestones, g.Milestones...)
	}
	for _, l := range learning {
		in.Sessions = append(in.Sessions, l.Sessions...)
	}
	return in
}

type DailyStat struct {
	Date        string  `json:"date"`
	Completed   int     `json:"completions"`
	TotalHabits int     `json:"total_habits"`
	Rate        float64 `json:"rate"`
}

type DayOfWeekStat struct {
	Weekday    time.Weekday `json:"weekday"`
	Day        string       `json:"day"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

type MonthlySummary struct {
	HabitCompletions    int `json:"habit_completions"`
	GoalsCompleted      int `json:"goals_completed"`
	LearningMinutes     int `json:"learning_minutes"`
	BucketItemsAchieved int `json:"bucket_items_achieved"`
}

type TimelineEntry struct {
	CompletedAt time.Time `json:"completed_at"`
	Label       string    `json:"date"`
	Title       string    `json:"title"`
	GoalID      string    `json:"goal_id"`
}

// DailyCompletionRate returns one record per calendar day in [start, end].
// Rate is the share of non-archived habits with a completion that day,
// 0 to 100. Completions of archived or unknown habits do not count.
func DailyCompletionRate(habits []models.Habit, completions []models.HabitCompletion, start, end time.Time) []DailyStat {
	first, last := utils.DayKey(start), utils.DayKey(end)
	if first.After(last) {
		return []DailyStat{}
	}

	active := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		if !h.IsArchived {
			active[h.ID] = struct{}{}
		}
	}

	byDay := make(map[string]map[string]struct{})
	for _, c := range completions {
		if _, ok := active[c.HabitID]; !ok {
			continue
		}
		set, ok := byDay[c.CompletedDate]
		if !ok {
			set = make(map[string]struct{})
			byDay[c.CompletedDate] = set
		}
		set[c.HabitID] = struct{}{}
	}

	var stats []DailyStat
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := utils.FormatDay(d)
		done := len(byDay[key])
		stat := DailyStat{Date: key, Completed: done, TotalHabits: len(active)}
		if len(active) > 0 {
			stat.Rate = 100 * float64(done) / float64(len(active))
		}
		stats = append(stats, stat)
	}
	return stats
}

// DayOfWeekDistribution buckets the entire completion history by weekday,
// Sunday first.
func DayOfWeekDistribution(completions []models.HabitCompletion) []DayOfWeekStat {
	var counts [7]int
	total := 0
	for _, c := range completions {
		d, err := utils.ParseDay(c.CompletedDate)
		if err != nil {
			continue
		}
		counts[d.Weekday()]++
		total++
	}

	denom := total
	if denom == 0 {
		denom = 1
	}

	out := make([]DayOfWeekStat, 7)
	for i := range out {
		wd := time.Weekday(i)
		out[i] = DayOfWeekStat{
			Weekday:    wd,
			Day:        wd.String()[:3],
			Count:      counts[i],
			Percentage: 100 * float64(counts[i]) / float64(denom),
		}
	}
	return out
}

// Summarize rolls up the calendar month containing now, in now's location.
func Summarize(in Input, now time.Time) MonthlySummary {
	loc := now.Location()
	year, month, _ := now.Date()
	inMonth := func(t time.Time) bool {
		y, m, _ := t.In(loc).Date()
		return y == year && m == month
	}
	dayInMonth := func(s string) bool {
		d, err := utils.ParseDay(s)
		if err != nil {
			return false
		}
		y, m, _ := d.Date()
		return y == year && m == month
	}

	var s MonthlySummary
	for _, c := range in.Completions {
		if dayInMonth(c.CompletedDate) {
			s.HabitCompletions++
		}
	}
	for _, g := range in.Goals {
		if g.Status == models.GoalStatusCompleted && g.CompletedAt != nil && inMonth(*g.CompletedAt) {
			s.GoalsCompleted++
		}
	}
	for _, sess := range in.Sessions {
		if dayInMonth(sess.SessionDate) {
			s.LearningMinutes += sess.DurationMinutes
		}
	}
	for _, b := range in.BucketItems {
		if b.IsCompleted && b.CompletedAt != nil && inMonth(*b.CompletedAt) {
			s.BucketItemsAchieved++
		}
	}
	return s
}

// GoalTimeline lists completed milestones in ascending completion order.
func GoalTimeline(milestones []models.GoalMilestone) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(milestones))
	for _, m := range milestones {
		if !m.IsCompleted || m.CompletedAt == nil {
			continue
		}
		out = append(out, TimelineEntry{
			CompletedAt: *m.CompletedAt,
			Label:       m.CompletedAt.Format(constants.TimelineLabelFormat),
			Title:       m.Title,
			GoalID:      m.GoalID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

// AverageCompletionTime is the rounded mean, in whole days, between start
// and completion of completed goals. 0 when there are none.
func AverageCompletionTime(goals []models.Goal) int {
	total, n := 0, 0
	for _, g := range goals {
		if g.Status != models.GoalStatusCompleted || g.StartedAt.IsZero() || g.CompletedAt == nil {
			continue
		}
		total += int(g.CompletedAt.Sub(g.StartedAt).Hours() / 24)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}
