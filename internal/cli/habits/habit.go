package habits

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
	"github.com/julianstephens/lifeos/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with today's status and streaks."`
	Toggle  HabitToggleCmd  `cmd:"" help:"Mark a habit done or not done for a day."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and its history."`
}

func find(app *cli.Context, ref string) (models.HabitWithCompletions, error) {
	h, err := cli.Resolve(app.Coordinator.Habits().Read().Items, ref,
		func(h models.HabitWithCompletions) string { return h.ID },
		func(h models.HabitWithCompletions) string { return h.Name },
	)
	if err != nil {
		return h, fmt.Errorf("habit: %w", err)
	}
	return h, nil
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Optional description."`
	Days        string `help:"Weekdays the habit is due, e.g. mon,wed,fri."`
	Times       int    `help:"Times per week, on any days."`
	Category    string `help:"Category: health, productivity, learning, personal, finance or social."`
	Color       string `help:"Hex color." default:"${default_color}"`
	Target      int    `help:"Target duration in minutes."`
}

func (c *HabitAddCmd) Run(ctx context.Context, app *cli.Context) error {
	freq, err := cli.ParseFrequency(c.Days, c.Times)
	if err != nil {
		return err
	}
	in := models.CreateHabitInput{
		Name:      c.Name,
		Color:     c.Color,
		Frequency: freq,
		Category:  models.HabitCategory(c.Category),
	}
	if c.Description != "" {
		in.Description = &c.Description
	}
	if c.Target > 0 {
		in.TargetDurationMinutes = &c.Target
	}
	return app.Coordinator.CreateHabit(ctx, in)
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Due      bool `help:"Only habits due today."`
}

func (c *HabitListCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	today := app.Coordinator.Now()
	habits := app.Coordinator.Habits().Read().Items
	if c.Due {
		habits = app.Coordinator.DueToday()
	}

	summary := app.Coordinator.Summary()
	app.Println(cli.TitleStyle.Render(fmt.Sprintf("Habits for %s", utils.FormatDay(today))))
	app.Printf("Done %d/%d today · overall streak %d\n\n", summary.HabitsCompleted, summary.HabitsDue, summary.OverallStreak)

	shown := 0
	for _, h := range habits {
		if h.IsArchived && !c.Archived {
			continue
		}
		shown++

		mark := "[ ]"
		if h.IsCompletedToday {
			mark = cli.DoneStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s  %s", mark, h.Name, cli.MutedStyle.Render(cli.FormatFrequency(h.Frequency)))
		if !progress.IsDueToday(h.Habit, today) {
			line += cli.MutedStyle.Render(" · not due")
		}
		if h.IsArchived {
			line += cli.WarnStyle.Render(" [ARCHIVED]")
		}
		rate := progress.CompletionRate(h.Completions, today, constants.CompletionRateWindowDays)
		app.Printf("%s  streak %d · %d%% (30d)  %s\n", line, h.CurrentStreak, rate, cli.MutedStyle.Render(cli.ShortID(h.ID)))
	}

	if shown == 0 {
		app.Println("No habits found.")
	}
	return nil
}

type HabitToggleCmd struct {
	Habit    string `arg:"" help:"Habit name or id."`
	Date     string `help:"Date in YYYY-MM-DD format (default: today)."`
	Duration *int   `help:"Minutes spent."`
	Note     string `help:"Optional note for this entry."`
	Off      bool   `help:"Clear the completion instead of toggling."`
}

// Run flips the completion for the day. A duration or note always records
// the completion, replacing an existing one.
func (c *HabitToggleCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	h, err := find(app, c.Habit)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = utils.FormatDay(app.Coordinator.Now())
	}

	if c.Off {
		return app.Coordinator.ToggleHabit(ctx, h.ID, date, false)
	}
	if c.Duration != nil || c.Note != "" {
		fields := models.CompletionFields{DurationMinutes: c.Duration}
		if c.Note != "" {
			fields.Notes = &c.Note
		}
		return app.Coordinator.RecordCompletion(ctx, h.ID, date, fields)
	}

	_, done := h.CompletionFor(date)
	return app.Coordinator.ToggleHabit(ctx, h.ID, date, !done)
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or id."`
	Name        *string `help:"New name."`
	Description *string `help:"New description."`
	Days        string  `help:"Weekdays the habit is due, e.g. mon,wed,fri."`
	Times       int     `help:"Times per week, on any days."`
	Daily       bool    `help:"Make the habit daily."`
	Color       *string `help:"Hex color."`
	Target      *int    `help:"Target duration in minutes."`
}

func (c *HabitEditCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	h, err := find(app, c.Habit)
	if err != nil {
		return err
	}

	patch := models.UpdateHabitInput{
		Name:                  c.Name,
		Description:           c.Description,
		Color:                 c.Color,
		TargetDurationMinutes: c.Target,
	}
	if c.Daily || c.Days != "" || c.Times != 0 {
		if c.Daily && (c.Days != "" || c.Times != 0) {
			return fmt.Errorf("--daily cannot be combined with --days or --times")
		}
		freq, err := cli.ParseFrequency(c.Days, c.Times)
		if err != nil {
			return err
		}
		patch.Frequency = freq
	}
	return app.Coordinator.UpdateHabit(ctx, h.ID, patch)
}

type HabitArchiveCmd struct {
	Habit     string `arg:"" help:"Habit name or id."`
	Unarchive bool   `help:"Restore the habit instead."`
}

func (c *HabitArchiveCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	h, err := find(app, c.Habit)
	if err != nil {
		return err
	}
	return app.Coordinator.ArchiveHabit(ctx, h.ID, !c.Unarchive)
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	h, err := find(app, c.Habit)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q and all of its history?", h.Name), c.Yes)
	if err != nil || !ok {
		return err
	}
	return app.Coordinator.DeleteHabit(ctx, h.ID)
}
