package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/lifeos/internal/backup"
	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" default:"1" help:"Snapshot the SQLite database."`
	List    BackupListCmd    `cmd:"" help:"List snapshots, newest first."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with a snapshot."`
}

func manager(app *cli.Context) (*backup.Manager, error) {
	if app.Config.Backend != constants.BackendSQLite {
		return nil, fmt.Errorf("backups are only available for the sqlite backend, %s manages its own", app.Config.Backend)
	}
	return backup.NewManager(app.Store.Describe()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx context.Context, app *cli.Context) error {
	mgr, err := manager(app)
	if err != nil {
		return err
	}
	snap, err := mgr.Create(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	app.Printf("✓ Backup created: %s\n", snap.Name())
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(app *cli.Context) error {
	mgr, err := manager(app)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(snaps) == 0 {
		app.Println("No backups found.")
		app.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	app.Printf("%s\n\n", cli.TitleStyle.Render(fmt.Sprintf("Backups (%d, keeping the newest %d)", len(snaps), backup.DefaultKeep)))
	for _, s := range snaps {
		app.Printf("  %s  %s  %s\n",
			s.TakenAt.Local().Format("2006-01-02 15:04:05"),
			s.Name(),
			cli.MutedStyle.Render(fmt.Sprintf("(%.1f KB)", float64(s.Size)/1024)))
	}
	app.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	Name string `arg:"" help:"Snapshot file name or path (see 'backup list')."`
	Yes  bool   `short:"y" help:"Skip confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx context.Context, app *cli.Context) error {
	mgr, err := manager(app)
	if err != nil {
		return err
	}
	snap, err := mgr.Find(c.Name)
	if err != nil {
		return err
	}

	ok, err := cli.Confirm(fmt.Sprintf("Replace the current database with %s?", snap.Name()), c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		app.Println("Restore cancelled.")
		return nil
	}

	// release the file before it is swapped out
	if err := app.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(ctx, snap)
	if previous != nil {
		app.Printf("Saved current database as: %s\n", previous.Name())
	}
	if err != nil {
		return err
	}
	if err := app.Store.Load(); err != nil {
		return errors.Join(errors.New("restored snapshot could not be loaded"), err)
	}
	app.Printf("✓ Restored %s\n", snap.Name())
	return nil
}
