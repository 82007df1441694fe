package insights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/lifeos/internal/analytics"
	"github.com/julianstephens/lifeos/internal/cli"
)

type InsightsCmd struct {
	Range string `short:"r" enum:"week,month,year,all" default:"week" help:"Range: week, month, year or all."`
	JSON  bool   `name:"json" help:"Print the report as JSON."`
}

func (c *InsightsCmd) Run(ctx context.Context, app *cli.Context) error {
	rng, err := analytics.ParseRange(c.Range)
	if err != nil {
		return err
	}
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	report, err := app.Coordinator.Insights(ctx, rng)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		app.Println(string(data))
		return nil
	}

	render(app, report)
	return nil
}

func render(app *cli.Context, r analytics.Report) {
	app.Println(cli.TitleStyle.Render(fmt.Sprintf("Insights · %s (%s to %s)", r.Range,
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))))

	app.Println("\nDaily completion")
	for _, d := range tail(r.Daily, 14) {
		app.Printf("  %s %s %3.0f%%  %d/%d\n", d.Date, cli.ProgressBar(int(d.Rate), 20), d.Rate, d.Completed, d.TotalHabits)
	}
	if len(r.Daily) > 14 {
		app.Println(cli.MutedStyle.Render(fmt.Sprintf("  (%d earlier days not shown, use --json)", len(r.Daily)-14)))
	}

	app.Println("\nBy weekday")
	for _, d := range r.DayOfWeek {
		app.Printf("  %-3s %s %d\n", d.Day, cli.ProgressBar(int(d.Percentage), 20), d.Count)
	}

	m := r.Monthly
	app.Println("\nThis month")
	app.Printf("  habit completions  %d\n", m.HabitCompletions)
	app.Printf("  goals completed    %d\n", m.GoalsCompleted)
	app.Printf("  learning           %dh%02dm\n", m.LearningMinutes/60, m.LearningMinutes%60)
	app.Printf("  bucket list        %d\n", m.BucketItemsAchieved)

	if r.AverageCompletionDays > 0 {
		app.Printf("\nGoals take %d days on average\n", r.AverageCompletionDays)
	}

	if len(r.Timeline) > 0 {
		app.Println("\nRecent milestones")
		for _, e := range tail(r.Timeline, 10) {
			app.Printf("  %-7s %s\n", e.Label, e.Title)
		}
	}
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
