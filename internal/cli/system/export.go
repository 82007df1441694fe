package system

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

const exportFormatVersion = "1.0"

// Export is the full-account snapshot. Child records are listed flat next
// to their parents, the way the tables hold them.
type Export struct {
	Version    string     `json:"version"`
	ExportedAt time.Time  `json:"exported_at"`
	User       ExportUser `json:"user"`
	Data       ExportData `json:"data"`
}

type ExportUser struct {
	ID string `json:"id"`
}

type ExportData struct {
	Habits      []models.Habit           `json:"habits"`
	Completions []models.HabitCompletion `json:"completions"`
	Goals       []models.Goal            `json:"goals"`
	Milestones  []models.GoalMilestone   `json:"milestones"`
	Learning    []models.LearningItem    `json:"learning"`
	Sessions    []models.LearningSession `json:"sessions"`
	Bucket      []models.BucketListItem  `json:"bucket"`
	Projects    []models.Project         `json:"projects"`
	Wishlist    []models.WishlistItem    `json:"wishlist"`
}

type ExportCmd struct {
	Output string `short:"o" help:"File to write, or - for stdout (default: lifeos-export-<date>.json in the current directory)."`
}

func (c *ExportCmd) Run(ctx context.Context, app *cli.Context) error {
	now := time.Now()
	if app.Coordinator != nil {
		now = app.Coordinator.Now()
	}
	exp, err := collectExport(ctx, app, now)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if c.Output == "-" {
		app.Println(string(b))
		return nil
	}
	path := c.Output
	if path == "" {
		path = fmt.Sprintf("%s-export-%s.json", constants.AppName, utils.FormatDay(now))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	app.Printf("✓ Export written: %s\n", path)
	return nil
}

// collectExport reads every collection straight from storage, concurrently.
func collectExport(ctx context.Context, app *cli.Context, now time.Time) (Export, error) {
	exp := Export{
		Version:    exportFormatVersion,
		ExportedAt: now,
		User:       ExportUser{ID: app.Config.UserID},
		Data: ExportData{
			Habits:      []models.Habit{},
			Completions: []models.HabitCompletion{},
			Goals:       []models.Goal{},
			Milestones:  []models.GoalMilestone{},
			Learning:    []models.LearningItem{},
			Sessions:    []models.LearningSession{},
		},
	}
	d := &exp.Data

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		habits, err := app.Store.ListHabits(ctx)
		if err != nil {
			return fmt.Errorf("failed to export habits: %w", err)
		}
		for _, h := range habits {
			d.Habits = append(d.Habits, h.Habit)
			d.Completions = append(d.Completions, h.Completions...)
		}
		return nil
	})
	g.Go(func() error {
		goals, err := app.Store.ListGoals(ctx)
		if err != nil {
			return fmt.Errorf("failed to export goals: %w", err)
		}
		for _, gl := range goals {
			d.Goals = append(d.Goals, gl.Goal)
			d.Milestones = append(d.Milestones, gl.Milestones...)
		}
		return nil
	})
	g.Go(func() error {
		items, err := app.Store.ListLearningItems(ctx)
		if err != nil {
			return fmt.Errorf("failed to export learning items: %w", err)
		}
		for _, i := range items {
			d.Learning = append(d.Learning, i.LearningItem)
			d.Sessions = append(d.Sessions, i.Sessions...)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Bucket, err = app.Store.ListBucketItems(ctx); err != nil {
			return fmt.Errorf("failed to export bucket list: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Projects, err = app.Store.ListProjects(ctx); err != nil {
			return fmt.Errorf("failed to export projects: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if d.Wishlist, err = app.Store.ListWishlistItems(ctx); err != nil {
			return fmt.Errorf("failed to export wishlist: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Export{}, err
	}
	return exp, nil
}
