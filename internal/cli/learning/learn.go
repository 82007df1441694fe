package learning

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/models"
)

type LearnCmd struct {
	Add    LearnAddCmd    `cmd:"" help:"Add a book, course, skill or project."`
	List   LearnListCmd   `cmd:"" help:"List learning items with progress."`
	Log    LearnLogCmd    `cmd:"" help:"Log a study session."`
	Delete LearnDeleteCmd `cmd:"" help:"Delete a learning item and its sessions."`
}

func find(app *cli.Context, ref string) (models.LearningItemWithSessions, error) {
	item, err := cli.Resolve(app.Coordinator.Learning().Read().Items, ref,
		func(i models.LearningItemWithSessions) string { return i.ID },
		func(i models.LearningItemWithSessions) string { return i.Title },
	)
	if err != nil {
		return item, fmt.Errorf("learning item: %w", err)
	}
	return item, nil
}

type LearnAddCmd struct {
	Title string `arg:"" help:"Title."`
	Type  string `help:"Type: skill, book, course, project or certification." default:"skill"`
	Units int    `help:"Total units, e.g. chapters or lessons."`
	Unit  string `help:"Unit name." default:"${default_unit}"`
	URL   string `name:"url" help:"Optional link."`
}

func (c *LearnAddCmd) Run(ctx context.Context, app *cli.Context) error {
	in := models.CreateLearningInput{
		Title:      c.Title,
		Type:       models.LearningType(c.Type),
		TotalUnits: c.Units,
		UnitName:   c.Unit,
	}
	if c.URL != "" {
		in.URL = &c.URL
	}
	return app.Coordinator.CreateLearningItem(ctx, in)
}

type LearnListCmd struct {
	Sessions int `help:"Recent sessions to show per item." default:"0"`
}

func (c *LearnListCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	items := app.Coordinator.Learning().Read().Items
	if len(items) == 0 {
		app.Println("No learning items found.")
		return nil
	}

	for _, i := range items {
		app.Printf("%s %s %d%%  %d/%d %s · %s  %s\n",
			cli.TitleStyle.Render(i.Title),
			cli.ProgressBar(i.ProgressPercent, 20),
			i.ProgressPercent,
			i.CompletedUnits, i.TotalUnits, i.UnitName,
			formatMinutes(i.TotalTimeMinutes),
			cli.MutedStyle.Render(fmt.Sprintf("[%s] %s", i.Status, cli.ShortID(i.ID))),
		)
		for n, s := range i.Sessions {
			if n >= c.Sessions {
				break
			}
			app.Printf("    %s  %s  +%d %s\n", s.SessionDate, formatMinutes(s.DurationMinutes), s.UnitsCompleted, i.UnitName)
		}
	}
	return nil
}

type LearnLogCmd struct {
	Item    string `arg:"" help:"Title or id."`
	Minutes int    `arg:"" help:"Minutes studied."`
	Units   int    `help:"Units completed in this session."`
	Date    string `help:"Date in YYYY-MM-DD format (default: today)."`
	Note    string `help:"Optional note."`
}

func (c *LearnLogCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	item, err := find(app, c.Item)
	if err != nil {
		return err
	}
	in := models.CreateSessionInput{
		DurationMinutes: c.Minutes,
		UnitsCompleted:  c.Units,
		SessionDate:     c.Date,
	}
	if c.Note != "" {
		in.Notes = &c.Note
	}
	return app.Coordinator.LogSession(ctx, item.ID, in)
}

type LearnDeleteCmd struct {
	Item string `arg:"" help:"Title or id."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *LearnDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	item, err := find(app, c.Item)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q and %d sessions?", item.Title, len(item.Sessions)), c.Yes)
	if err != nil || !ok {
		return err
	}
	return app.Coordinator.DeleteLearningItem(ctx, item.ID)
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
