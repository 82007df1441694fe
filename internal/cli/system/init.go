package system

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/lifeos/internal/backup"
	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initialization. A backup is taken first."`
}

func (c *InitCmd) Run(ctx context.Context, app *cli.Context) error {
	if c.Force {
		if app.Config.Backend != constants.BackendSQLite {
			return errors.New("--force only applies to the sqlite backend")
		}
		dbPath := app.Store.Describe()
		if _, err := os.Stat(dbPath); err == nil {
			snap, err := backup.NewManager(dbPath).Create(ctx)
			if err != nil {
				return fmt.Errorf("refusing to delete database without a backup: %w", err)
			}
			app.Printf("Saved a backup as: %s\n", snap.Name())
			// close first so the file is not locked
			if err := app.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			app.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := app.Store.Init(); err != nil {
		return err
	}
	app.Printf("Initialized %s storage at: %s\n", app.Config.Backend, app.Store.Describe())
	return nil
}

// migrator is implemented by the SQL backends.
type migrator interface {
	Migrate(logFn func(string)) (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *cli.Context) error {
	m, ok := app.Store.(migrator)
	if !ok {
		return fmt.Errorf("the %s backend manages its own schema", app.Config.Backend)
	}

	n, err := m.Migrate(func(msg string) { app.Println("  " + msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if n == 0 {
		app.Println("Database is up to date.")
		return nil
	}
	app.Printf("Applied %d migration(s).\n", n)
	return nil
}
