package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/lifeos/internal/constants"
)

// Range selects the window for the daily completion rate.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// ParseRange accepts week, month, year or all. Empty means week.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q (want week, month, year or all)", s)
	}
}

// Bounds returns [start, now] for the range. Weeks start on Sunday; "all"
// reaches back a fixed number of days.
func (r Range) Bounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch r {
	case RangeMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), now
	case RangeYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location()), now
	case RangeAll:
		return now.AddDate(0, 0, -constants.AllRangeDays), now
	default:
		return midnight.AddDate(0, 0, -int(now.Weekday())), now
	}
}

// Report bundles every aggregate for one range.
type Report struct {
	Range                 Range           `json:"range"`
	Start                 time.Time       `json:"start"`
	End                   time.Time       `json:"end"`
	Daily                 []DailyStat     `json:"daily"`
	DayOfWeek             []DayOfWeekStat `json:"day_of_week"`
	Monthly               MonthlySummary  `json:"monthly"`
	Timeline              []TimelineEntry `json:"timeline"`
	AverageCompletionDays int             `json:"average_completion_days"`
}

// BuildReport computes the aggregates concurrently. The inputs are only read,
// so the goroutines share them without locking.
func BuildReport(ctx context.Context, in Input, rng Range, now time.Time) (Report, error) {
	start, end := rng.Bounds(now)
	r := Report{Range: rng, Start: start, End: end}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Daily = DailyCompletionRate(in.Habits, in.Completions, start, end)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.DayOfWeek = DayOfWeekDistribution(in.Completions)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Monthly = Summarize(in, now)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Timeline = GoalTimeline(in.Milestones)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.AverageCompletionDays = AverageCompletionTime(in.Goals)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("failed to build report: %w", err)
	}
	return r, nil
}
