// Package revalidate refreshes the cache stores on a schedule so long
// running sessions pick up changes made elsewhere.
package revalidate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/metrics"
)

// Refresher reloads every collection from the provider.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	target  Refresher
	timeout time.Duration

	mu  sync.Mutex
	ctx context.Context
}

// New creates a scheduler whose runs are each bounded by timeout.
func New(target Refresher, loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		target:  target,
		timeout: timeout,
		ctx:     context.Background(),
	}
}

// Every schedules a refresh every interval, rounded down to whole seconds.
func (s *Scheduler) Every(interval time.Duration) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), s.job)
}

// Daily schedules a refresh at HH:MM local time. Scheduling one at 00:00
// rolls due-today and completed-today flags over to the new day.
func (s *Scheduler) Daily(timeStr string) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, s.job)
}

// Start runs scheduled jobs until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) job() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	_ = s.RunOnce(ctx)
}

// RunOnce performs a single refresh and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.target.Refresh(ctx); err != nil {
		metrics.TrackRevalidation("error")
		logger.Warn("Revalidation failed", "error", err)
		return err
	}
	metrics.TrackRevalidation("ok")
	logger.Debug("Revalidated", "took", time.Since(start))
	return nil
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
