package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/lifeos/internal/backup"
	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/validation"
)

// schemaReporter is implemented by the SQL backends.
type schemaReporter interface {
	SchemaStatus() (current, latest int, err error)
}

type DoctorCmd struct{}

type checkResult int

const (
	checkOK checkResult = iota
	checkWarn
	checkFail
	checkSkip
)

type check struct {
	name string
	// a failed fatal check skips every later check that needs the store
	fatal     bool
	needsData bool
	run       func(ctx context.Context, app *cli.Context) (checkResult, error)
}

func (c *DoctorCmd) Run(ctx context.Context, app *cli.Context) error {
	app.Println("Running diagnostics...")
	app.Println()

	checks := []check{
		{name: "Storage reachable", fatal: true, run: checkReachable},
		{name: "Schema version", fatal: true, needsData: true, run: checkSchema},
		{name: "Backups present", run: checkBackups},
		{name: "Data validation", needsData: true, run: checkData},
		{name: "Clock/timezone", run: checkClock},
	}

	failed, blocked := false, false
	for _, ch := range checks {
		res, err := checkSkip, error(nil)
		if !blocked || !ch.needsData {
			res, err = ch.run(ctx, app)
		}
		switch res {
		case checkOK:
			app.Printf("%s %s: OK\n", cli.DoneStyle.Render("✓"), ch.name)
		case checkWarn:
			app.Printf("%s %s: WARNING\n   %v\n", cli.WarnStyle.Render("⚠"), ch.name, err)
		case checkFail:
			app.Printf("%s %s: FAIL\n   Error: %v\n", cli.WarnStyle.Render("✗"), ch.name, err)
			failed = true
			blocked = blocked || ch.fatal
		case checkSkip:
			app.Printf("%s %s: SKIPPED\n", cli.MutedStyle.Render("⊘"), ch.name)
		}
	}

	app.Println()
	if failed {
		app.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	app.Println("All diagnostics passed!")
	return nil
}

func checkReachable(ctx context.Context, app *cli.Context) (checkResult, error) {
	if err := app.Store.Load(); err != nil {
		return checkFail, fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := app.Store.ListHabits(ctx); err != nil {
		return checkFail, fmt.Errorf("failed to query %s: %w", app.Store.Describe(), err)
	}
	return checkOK, nil
}

func checkSchema(_ context.Context, app *cli.Context) (checkResult, error) {
	r, ok := app.Store.(schemaReporter)
	if !ok {
		return checkSkip, nil
	}
	current, latest, err := r.SchemaStatus()
	switch {
	case err != nil:
		return checkFail, err
	case current > latest:
		return checkFail, fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return checkFail, fmt.Errorf("migrations incomplete: at version %d of %d, run '%s migrate'", current, latest, constants.AppName)
	}
	return checkOK, nil
}

func checkBackups(_ context.Context, app *cli.Context) (checkResult, error) {
	if app.Config.Backend != constants.BackendSQLite {
		return checkSkip, nil
	}
	snaps, err := backup.NewManager(app.Store.Describe()).List()
	if err != nil {
		return checkWarn, fmt.Errorf("failed to list backups: %w", err)
	}
	if len(snaps) == 0 {
		return checkWarn, fmt.Errorf("no backups found, consider creating one with '%s backup create'", constants.AppName)
	}
	return checkOK, nil
}

// checkData looks for records the write path would have rejected.
func checkData(ctx context.Context, app *cli.Context) (checkResult, error) {
	habits, err := app.Store.ListHabits(ctx)
	if err != nil {
		return checkFail, err
	}
	if err := validateHabits(habits); err != nil {
		return checkFail, err
	}

	goals, err := app.Store.ListGoals(ctx)
	if err != nil {
		return checkFail, err
	}
	goalIDs := make(map[string]bool, len(goals))
	for _, g := range goals {
		goalIDs[g.ID] = true
		for _, m := range g.Milestones {
			if m.GoalID != g.ID {
				return checkFail, fmt.Errorf("milestone %s is attached to goal %s but listed under %s", m.ID, m.GoalID, g.ID)
			}
		}
	}

	projects, err := app.Store.ListProjects(ctx)
	if err != nil {
		return checkFail, err
	}
	for _, p := range projects {
		if p.GoalID != nil && !goalIDs[*p.GoalID] {
			return checkFail, fmt.Errorf("project %q links to missing goal %s", p.Name, *p.GoalID)
		}
	}
	return checkOK, nil
}

func validateHabits(habits []models.HabitWithCompletions) error {
	v := validation.New()
	seen := make(map[string]bool, len(habits))
	for _, h := range habits {
		if seen[h.ID] {
			return fmt.Errorf("duplicate habit ID found: %s", h.ID)
		}
		seen[h.ID] = true

		if err := v.Frequency(h.Frequency); err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}
		days := make(map[string]bool, len(h.Completions))
		for _, c := range h.Completions {
			if err := v.Date("completed_date", c.CompletedDate); err != nil {
				return fmt.Errorf("habit %q: %w", h.Name, err)
			}
			if days[c.CompletedDate] {
				return fmt.Errorf("habit %q has two completions on %s", h.Name, c.CompletedDate)
			}
			days[c.CompletedDate] = true
		}
	}
	return nil
}

func checkClock(_ context.Context, app *cli.Context) (checkResult, error) {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return checkFail, fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := app.Config.Location(); err != nil {
		return checkFail, err
	}
	return checkOK, nil
}
