package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/metrics"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/revalidate"
	"github.com/julianstephens/lifeos/internal/utils"
)

type WatchCmd struct {
	Every    time.Duration `help:"Revalidation interval (default from config)."`
	Rollover string        `help:"Daily refresh time in HH:MM so today's flags roll over." default:"00:00"`
	Metrics  string        `help:"Serve Prometheus metrics on this address, e.g. :9090."`
}

// Run keeps the caches fresh in the foreground and prints the dashboard
// headline whenever the habit collection changes.
func (c *WatchCmd) Run(ctx context.Context, app *cli.Context) error {
	interval := c.Every
	if interval == 0 {
		interval = app.Config.RevalidateInterval
	}
	addr := c.Metrics
	if addr == "" {
		addr = app.Config.MetricsAddr
	}
	loc, err := app.Config.Location()
	if err != nil {
		return err
	}

	if err := app.Coordinator.Load(ctx); err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		last string
	)
	printSummary := func() {
		s := app.Coordinator.Summary()
		line := fmt.Sprintf("%s  habits %d/%d · streak %d · goals %d · learning %d · projects %d",
			utils.FormatDay(app.Coordinator.Now()), s.HabitsCompleted, s.HabitsDue, s.OverallStreak, s.ActiveGoals,
			s.ActiveLearning, s.ActiveProjects)
		mu.Lock()
		defer mu.Unlock()
		if line == last {
			return
		}
		last = line
		app.Printf("%s %s\n", cli.MutedStyle.Render(app.Coordinator.Now().Format("15:04:05")), line)
	}
	printSummary()

	cancel := app.Coordinator.Habits().Subscribe(func(s cache.Snapshot[models.HabitWithCompletions]) {
		if s.State == cache.Ready {
			printSummary()
		}
	})
	defer cancel()

	sched := revalidate.New(app.Coordinator, loc, constants.DefaultHTTPTimeout)
	if _, err := sched.Every(interval); err != nil {
		return err
	}
	if _, err := sched.Daily(c.Rollover); err != nil {
		return err
	}

	var srv *http.Server
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", "addr", addr, "error", err)
			}
		}()
		app.Printf("Serving metrics on %s/metrics\n", addr)
	}

	app.Printf("Watching %s every %s, press Ctrl+C to stop\n", app.Store.Describe(), interval)
	sched.Start(ctx)
	<-ctx.Done()
	sched.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
	}
	return nil
}
