package projects

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

type ProjectCmd struct {
	Add    ProjectAddCmd    `cmd:"" help:"Add a side project."`
	List   ProjectListCmd   `cmd:"" help:"List projects."`
	Status ProjectStatusCmd `cmd:"" help:"Set a project's status."`
	Link   ProjectLinkCmd   `cmd:"" help:"Link a project to a goal, or unlink it."`
	Delete ProjectDeleteCmd `cmd:"" help:"Delete a project."`
}

func find(app *cli.Context, ref string) (models.Project, error) {
	p, err := cli.Resolve(app.Coordinator.Projects().Read().Items, ref,
		func(p models.Project) string { return p.ID },
		func(p models.Project) string { return p.Name },
	)
	if err != nil {
		return p, fmt.Errorf("project: %w", err)
	}
	return p, nil
}

func findGoalID(app *cli.Context, ref string) (string, error) {
	g, err := cli.Resolve(app.Coordinator.Goals().Read().Items, ref,
		func(g models.GoalWithMilestones) string { return g.ID },
		func(g models.GoalWithMilestones) string { return g.Title },
	)
	if err != nil {
		return "", fmt.Errorf("goal: %w", err)
	}
	return g.ID, nil
}

type ProjectAddCmd struct {
	Name        string `arg:"" help:"Project name."`
	Description string `help:"Optional description."`
	Status      string `help:"Status: idea, planned, active, paused, completed or abandoned (default idea)."`
	Goal        string `help:"Goal title or id this project works toward."`
	URL         string `name:"url" help:"Project or demo link."`
	Repo        string `help:"Repository URL."`
}

func (c *ProjectAddCmd) Run(ctx context.Context, app *cli.Context) error {
	in := models.CreateProjectInput{
		Name:   c.Name,
		Status: models.ProjectStatus(c.Status),
	}
	if c.Description != "" {
		in.Description = &c.Description
	}
	if c.URL != "" {
		in.URL = &c.URL
	}
	if c.Repo != "" {
		in.RepositoryURL = &c.Repo
	}
	if c.Goal != "" {
		if err := app.Coordinator.Load(ctx); err != nil {
			return err
		}
		id, err := findGoalID(app, c.Goal)
		if err != nil {
			return err
		}
		in.GoalID = &id
	}
	return app.Coordinator.CreateProject(ctx, in)
}

type ProjectListCmd struct {
	Status string `help:"Only projects with this status."`
}

func (c *ProjectListCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	goals := make(map[string]string)
	for _, g := range app.Coordinator.Goals().Read().Items {
		goals[g.ID] = g.Title
	}

	shown := 0
	for _, p := range app.Coordinator.Projects().Read().Items {
		if c.Status != "" && string(p.Status) != c.Status {
			continue
		}
		shown++

		line := fmt.Sprintf("%-30s %s", p.Name, cli.WarnStyle.Render(string(p.Status)))
		if p.GoalID != nil {
			line += cli.MutedStyle.Render(" → " + goals[*p.GoalID])
		}
		switch {
		case p.CompletedAt != nil:
			line += cli.MutedStyle.Render(" done " + utils.FormatDay(*p.CompletedAt))
		case p.StartedAt != nil:
			line += cli.MutedStyle.Render(" since " + utils.FormatDay(*p.StartedAt))
		}
		app.Printf("%s  %s\n", line, cli.MutedStyle.Render(cli.ShortID(p.ID)))
	}

	if shown == 0 {
		app.Println("No projects found.")
	}
	return nil
}

type ProjectStatusCmd struct {
	Project string `arg:"" help:"Project name or id."`
	Status  string `arg:"" enum:"idea,planned,active,paused,completed,abandoned" help:"New status: idea, planned, active, paused, completed or abandoned."`
}

func (c *ProjectStatusCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	p, err := find(app, c.Project)
	if err != nil {
		return err
	}
	return app.Coordinator.SetProjectStatus(ctx, p.ID, models.ProjectStatus(c.Status))
}

type ProjectLinkCmd struct {
	Project string `arg:"" help:"Project name or id."`
	Goal    string `arg:"" optional:"" help:"Goal title or id. Omit to unlink."`
}

func (c *ProjectLinkCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	p, err := find(app, c.Project)
	if err != nil {
		return err
	}
	goalID := ""
	if c.Goal != "" {
		if goalID, err = findGoalID(app, c.Goal); err != nil {
			return err
		}
	}
	return app.Coordinator.LinkProject(ctx, p.ID, goalID)
}

type ProjectDeleteCmd struct {
	Project string `arg:"" help:"Project name or id."`
	Yes     bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ProjectDeleteCmd) Run(ctx context.Context, app *cli.Context) error {
	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}
	p, err := find(app, c.Project)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q?", p.Name), c.Yes)
	if err != nil || !ok {
		return err
	}
	return app.Coordinator.DeleteProject(ctx, p.ID)
}
