package goals

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

type GoalCmd struct {
	Add    GoalAddCmd    `cmd:"" help:"Add a new goal."`
	List   GoalListCmd   `cmd:"" help:"List goals with milestone progress."`
	Status GoalStatusCmd `cmd:"" help:"Set a goal's status."`
	Delete GoalDeleteCmd `cmd:"" help:"Delete a goal and its milestones."`
}

type MilestoneCmd struct {
	Add    MilestoneAddCmd    `cmd:"" help:"Add a milestone to a goal."`
	Toggle MilestoneToggleCmd `cmd:"" help:"Mark a milestone done or not done."`
	Delete MilestoneDeleteCmd `cmd:"" help:"Delete a milestone."`
}

func find(app *cli.Context, ref string) (models.GoalWithMilestones, error) {
	g, err := cli.Resolve(app.Coordinator.Goals().Read().Items, ref,
		func(g models.GoalWithMilestones) string { return g.ID },
		func(g models.GoalWithMilestones) string { return g.Title },
	)
	if err != nil {
		return g, fmt.Errorf("goal: %w", err)
	}
	return g, nil
}

func findMilestone(g models.GoalWithMilestones, ref string) (models.GoalMilestone, error) {
	m, err := cli.Resolve(g.Milestones, ref,
		func(m models.GoalMilestone) string { return m.ID },
		func(m models.GoalMilestone) string { return m.Title },
	)
	if err != nil {
		return m, fmt.Errorf("milestone: %w", err)
	}
	return m, nil
}

type GoalAddCmd struct {
	Title       string `arg:"" help:"Goal title."`
	Description string `help:"Optional description."`
	Target      string `help:"Target date in YYYY-MM-DD format."`
	Category    string `help:"Category: career, health, finance, personal, learning or creative."`
}

func (c *GoalAddCmd) Run(ctx context.Context, app *cli.Context) error {
	in := models.CreateGoalInput{
		Title:    c.Title,
		Category: models.GoalCategory(c.Category),
	}
	if c.Description != "" {
		in.Description = &c.Description
	}
	if c.Target != "" {
		in.TargetDate = &c.Target
	}
	return app.Coordinator.CreateGoal(ctx, in)
}

type GoalListCmd struct {
	All bool `help:"Include completed, paused and abandoned goals."`
}

func (c *GoalListCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	shown := 0
	for _, g := range app.Coordinator.Goals().Read().Items {
		if !c.All && g.Status != models.GoalStatusActive {
			continue
		}
		shown++

		header := fmt.Sprintf("%s %s %d%%", cli.TitleStyle.Render(g.Title), cli.ProgressBar(g.ProgressPercent, 20), g.ProgressPercent)
		if g.Status != models.GoalStatusActive {
			header += cli.WarnStyle.Render(fmt.Sprintf(" [%s]", g.Status))
		}
		if g.TargetDate != nil {
			header += cli.MutedStyle.Render(" due " + *g.TargetDate)
		}
		app.Printf("%s  %s\n", header, cli.MutedStyle.Render(cli.ShortID(g.ID)))

		for _, m := range g.Milestones {
			mark := "[ ]"
			if m.IsCompleted {
				mark = cli.DoneStyle.Render("[x]")
			}
			app.Printf("    %s %s\n", mark, m.Title)
		}
		if g.CompletedAt != nil {
			app.Printf("    completed %s\n", utils.FormatDay(*g.CompletedAt))
		}
		for _, p := range app.Coordinator.ProjectsForGoal(g.ID) {
			app.Printf("    project %s %s\n", p.Name, cli.MutedStyle.Render(string(p.Status)))
		}
	}

	if shown == 0 {
		app.Println("No goals found.")
	}
	return nil
}

type GoalStatusCmd struct {
	Goal   string `arg:"" help:"Goal title or id."`
	Status string `arg:"" enum:"active,completed,paused,abandoned" help:"New status: active, completed, paused or abandoned."`
}

func (c *GoalStatusCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	g, err := find(app, c.Goal)
	if err != nil {
		return err
	}
	return app.Coordinator.SetGoalStatus(ctx, g.ID, models.GoalStatus(c.Status))
}

type GoalDeleteCmd struct {
	Goal string `arg:"" help:"Goal title or id."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *GoalDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	g, err := find(app, c.Goal)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q and its %d milestones?", g.Title, len(g.Milestones)), c.Yes)
	if err != nil || !ok {
		return err
	}
	return app.Coordinator.DeleteGoal(ctx, g.ID)
}

type MilestoneAddCmd struct {
	Goal        string `arg:"" help:"Goal title or id."`
	Title       string `arg:"" help:"Milestone title."`
	Description string `help:"Optional description."`
}

func (c *MilestoneAddCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	g, err := find(app, c.Goal)
	if err != nil {
		return err
	}
	in := models.CreateMilestoneInput{Title: c.Title}
	if c.Description != "" {
		in.Description = &c.Description
	}
	return app.Coordinator.AddMilestone(ctx, g.ID, in)
}

type MilestoneToggleCmd struct {
	Goal      string `arg:"" help:"Goal title or id."`
	Milestone string `arg:"" help:"Milestone title or id."`
}

func (c *MilestoneToggleCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	g, err := find(app, c.Goal)
	if err != nil {
		return err
	}
	m, err := findMilestone(g, c.Milestone)
	if err != nil {
		return err
	}
	return app.Coordinator.ToggleMilestone(ctx, m.ID, !m.IsCompleted)
}

type MilestoneDeleteCmd struct {
	Goal      string `arg:"" help:"Goal title or id."`
	Milestone string `arg:"" help:"Milestone title or id."`
}

func (c *MilestoneDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	g, err := find(app, c.Goal)
	if err != nil {
		return err
	}
	m, err := findMilestone(g, c.Milestone)
	if err != nil {
		return err
	}
	return app.Coordinator.DeleteMilestone(ctx, m.ID)
}
