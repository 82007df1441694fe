package learning

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

func TestLearnLogAndList(t *testing.T) {
	app, out := setupTestApp(t)
	ctx := t.Context()

	if err := (&LearnAddCmd{Title: "The Go Programming Language", Type: "book", Units: 10, Unit: "chapters"}).Run(ctx, app); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := (&LearnLogCmd{Item: "the go programming language", Minutes: 90, Units: 3, Note: "interfaces"}).Run(ctx, app); err != nil {
		t.Fatalf("log failed: %v", err)
	}

	item := app.Coordinator.Learning().Read().Items[0]
	if item.CompletedUnits != 3 || item.TotalTimeMinutes != 90 || item.ProgressPercent != 30 {
		t.Errorf("item = units %d, minutes %d, %d%%", item.CompletedUnits, item.TotalTimeMinutes, item.ProgressPercent)
	}
	if len(item.Sessions) != 1 || item.Sessions[0].SessionDate != "2024-03-15" {
		t.Errorf("sessions = %+v", item.Sessions)
	}

	out.Reset()
	if err := (&LearnListCmd{Sessions: 5}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"The Go Programming Language", "30%", "3/10 chapters", "1h30m", "2024-03-15"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if err := (&LearnLogCmd{Item: "The Go Programming Language", Minutes: 2000}).Run(ctx, app); err == nil {
		t.Error("expected error for a session longer than a day")
	}

	if err := (&LearnDeleteCmd{Item: "The Go Programming Language", Yes: true}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&LearnListCmd{}).Run(ctx, app); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No learning items found.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{0: "0m", 45: "45m", 60: "1h00m", 135: "2h15m"}
	for in, want := range tests {
		if got := formatMinutes(in); got != want {
			t.Errorf("formatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}
