package goals

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/coordinator"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/storage/sqlite"
	"github.com/julianstephens/lifeos/internal/storage/sqlstore"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func setupTestApp(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	clock := func() time.Time { return fixedNow }

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "lifeos.db"), sqlstore.WithClock(clock))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	coord := coordinator.New(store,
		coordinator.WithClock(clock),
		coordinator.WithLocation(time.UTC),
		coordinator.WithBackgroundRefresh(false),
	)
	t.Cleanup(func() {
		coord.Close()
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	return &cli.Context{
		Config:      config.Config{Backend: constants.BackendSQLite},
		Store:       store,
		Coordinator: coord,
		Out:         &out,
	}, &out
}

func TestGoalLifecycle(t *testing.T) {
	app, out := setupTestApp(t)
	ctx := t.Context()

	if err := (&GoalAddCmd{Title: "Run a marathon", Target: "2024-10-01", Category: "health"}).Run(ctx, app); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	for _, m := range []string{"10k", "Half"} {
		if err := (&MilestoneAddCmd{Goal: "run a marathon", Title: m}).Run(ctx, app); err != nil {
			t.Fatalf("milestone add failed: %v", err)
		}
	}
	if err := (&MilestoneToggleCmd{Goal: "Run a marathon", Milestone: "10k"}).Run(ctx, app); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	out.Reset()
	if err := (&GoalListCmd{}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Run a marathon", "50%", "due 2024-10-01", "[x] 10k", "[ ] Half"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if err := (&MilestoneDeleteCmd{Goal: "Run a marathon", Milestone: "Half"}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	g := app.Coordinator.Goals().Read().Items[0]
	if len(g.Milestones) != 1 || g.ProgressPercent != 100 {
		t.Errorf("after delete: %d milestones, %d%%", len(g.Milestones), g.ProgressPercent)
	}

	if err := (&GoalStatusCmd{Goal: "Run a marathon", Status: "completed"}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	if g := app.Coordinator.Goals().Read().Items[0]; g.Status != models.GoalStatusCompleted || g.CompletedAt == nil {
		t.Errorf("status = %s, completed_at = %v", g.Status, g.CompletedAt)
	}

	out.Reset()
	if err := (&GoalListCmd{}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No goals found.") {
		t.Errorf("completed goal should be hidden:\n%s", out.String())
	}
	out.Reset()
	if err := (&GoalListCmd{All: true}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[completed]") {
		t.Errorf("--all should show the completed goal:\n%s", out.String())
	}

	if err := (&GoalDeleteCmd{Goal: "Run a marathon", Yes: true}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	if n := len(app.Coordinator.Goals().Read().Items); n != 0 {
		t.Errorf("%d goals left after delete", n)
	}
}

func TestGoalErrors(t *testing.T) {
	app, _ := setupTestApp(t)
	ctx := t.Context()

	if err := (&GoalAddCmd{Title: "Ship it", Target: "next week"}).Run(ctx, app); err == nil {
		t.Error("expected error for a malformed target date")
	}
	if err := (&MilestoneAddCmd{Goal: "missing", Title: "x"}).Run(ctx, app); err == nil {
		t.Error("expected error for an unknown goal")
	}
	if err := (&GoalAddCmd{Title: "Ship it"}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	if err := (&MilestoneToggleCmd{Goal: "Ship it", Milestone: "nope"}).Run(ctx, app); err == nil {
		t.Error("expected error for an unknown milestone")
	}
}
