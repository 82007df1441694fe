package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cli"
)

type DebugCmd struct {
	Path DebugPathCmd `cmd:"" help:"Show where data is stored."`
	Dump DebugDumpCmd `cmd:"" help:"Dump one collection as JSON, straight from storage."`
}

type DebugPathCmd struct{}

func (c *DebugPathCmd) Run(app *cli.Context) error {
	return writeJSON(app, map[string]string{
		"backend": app.Config.Backend,
		"store":   app.Store.Describe(),
		"config":  app.Config.Dir,
	})
}

type DebugDumpCmd struct {
	Collection string `arg:"" enum:"habits,goals,learning,bucket,wishlist,projects" help:"One of: habits, goals, learning, bucket, wishlist, projects."`
}

func (c *DebugDumpCmd) Run(ctx context.Context, app *cli.Context) error {
	var (
		data any
		err  error
	)
	switch c.Collection {
	case "habits":
		data, err = app.Store.ListHabits(ctx)
	case "goals":
		data, err = app.Store.ListGoals(ctx)
	case "learning":
		data, err = app.Store.ListLearningItems(ctx)
	case "bucket":
		data, err = app.Store.ListBucketItems(ctx)
	case "wishlist":
		data, err = app.Store.ListWishlistItems(ctx)
	case "projects":
		data, err = app.Store.ListProjects(ctx)
	default:
		return fmt.Errorf("unknown collection %q", c.Collection)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", c.Collection, err)
	}
	return writeJSON(app, data)
}

func writeJSON(app *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	app.Println(string(b))
	return nil
}
