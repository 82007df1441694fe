// Package coordinator drives user actions end to end: validate the input,
// apply the change to the cache immediately, write it through the storage
// provider, then reconcile with the server's answer or roll back.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/lifeos/internal/analytics"
	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/metrics"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/progress"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/utils"
	"github.com/julianstephens/lifeos/internal/validation"
)

// Collection names, used as store names and metric labels.
const (
	CollectionHabits   = "habits"
	CollectionGoals    = "goals"
	CollectionLearning = "learning"
	CollectionBucket   = "bucket_list"
	CollectionWishlist = "wishlist"
	CollectionProjects = "projects"
)

type Coordinator struct {
	provider   storage.Provider
	validator  *validation.Validator
	notifier   notifier.Notifier
	clock      func() time.Time
	loc        *time.Location
	userID     string
	revalidate bool

	habits   *cache.Store[models.HabitWithCompletions]
	goals    *cache.Store[models.GoalWithMilestones]
	learning *cache.Store[models.LearningItemWithSessions]
	bucket   *cache.Store[models.BucketListItem]
	wishlist *cache.Store[models.WishlistItem]
	projects *cache.Store[models.Project]

	bg       sync.WaitGroup
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

type Option func(*Coordinator)

func WithNotifier(n notifier.Notifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.clock = now }
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(c *Coordinator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithUserID sets the owner stamped on optimistic records.
func WithUserID(id string) Option {
	return func(c *Coordinator) { c.userID = id }
}

// WithBackgroundRefresh controls whether every settled mutation schedules a
// refresh of its collection. It is on by default.
func WithBackgroundRefresh(enabled bool) Option {
	return func(c *Coordinator) { c.revalidate = enabled }
}

// New creates a coordinator over p. Stores start Empty; call Load.
func New(p storage.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:   p,
		validator:  validation.New(),
		notifier:   notifier.Nop{},
		clock:      time.Now,
		loc:        time.Local,
		userID:     constants.DefaultUserID,
		revalidate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bgCtx, c.bgCancel = context.WithCancel(context.Background())

	c.habits = cache.New(CollectionHabits, func(ctx context.Context) ([]models.HabitWithCompletions, error) {
		items, err := p.ListHabits(ctx)
		if err != nil {
			return nil, err
		}
		return progress.ProjectHabits(items, c.today()), nil
	})
	c.goals = cache.New(CollectionGoals, p.ListGoals)
	c.learning = cache.New(CollectionLearning, p.ListLearningItems)
	c.bucket = cache.New(CollectionBucket, p.ListBucketItems)
	c.wishlist = cache.New(CollectionWishlist, p.ListWishlistItems)
	c.projects = cache.New(CollectionProjects, p.ListProjects)
	return c
}

func (c *Coordinator) Habits() *cache.Store[models.HabitWithCompletions]       { return c.habits }
func (c *Coordinator) Goals() *cache.Store[models.GoalWithMilestones]          { return c.goals }
func (c *Coordinator) Learning() *cache.Store[models.LearningItemWithSessions] { return c.learning }
func (c *Coordinator) Bucket() *cache.Store[models.BucketListItem]             { return c.bucket }
func (c *Coordinator) Wishlist() *cache.Store[models.WishlistItem]             { return c.wishlist }
func (c *Coordinator) Projects() *cache.Store[models.Project]                  { return c.projects }

// Load fetches every collection concurrently. It is also the refresh entry
// point used by scheduled revalidation.
func (c *Coordinator) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, refresh := range []func(context.Context) error{
		c.habits.Refresh,
		c.goals.Refresh,
		c.learning.Refresh,
		c.bucket.Refresh,
		c.wishlist.Refresh,
		c.projects.Refresh,
	} {
		g.Go(func() error {
			if err := refresh(ctx); err != nil && !errors.Is(err, cache.ErrSuperseded) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Refresh is Load under the name scheduled revalidation expects.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// Wait blocks until every background refresh has finished.
func (c *Coordinator) Wait() {
	c.bg.Wait()
}

// Close cancels outstanding background refreshes and waits for them.
func (c *Coordinator) Close() {
	c.bgCancel()
	c.bg.Wait()
}

// Now returns the current time in the configured timezone.
func (c *Coordinator) Now() time.Time {
	return c.clock().In(c.loc)
}

func (c *Coordinator) today() time.Time {
	return c.Now()
}

func (c *Coordinator) todayKey() string {
	return utils.FormatDay(c.today())
}

func tempID() string {
	return constants.TempIDPrefix + uuid.NewString()
}

type refresher interface {
	Name() string
	Refresh(ctx context.Context) error
}

func (c *Coordinator) refreshInBackground(s refresher) {
	if !c.revalidate {
		return
	}
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		err := s.Refresh(c.bgCtx)
		switch {
		case err == nil:
		case errors.Is(err, cache.ErrSuperseded), errors.Is(err, context.Canceled):
			logger.Debug("Background refresh skipped", "store", s.Name(), "error", err)
		default:
			logger.Warn("Background refresh failed", "store", s.Name(), "error", err)
		}
	}()
}

func (c *Coordinator) notify(ctx context.Context, level notifier.Level, text string) {
	if err := c.notifier.Notify(ctx, level, text); err != nil {
		logger.Debug("Notification not delivered", "error", err)
	}
}

// action describes one coordinated mutation for logging and metrics.
type action struct {
	collection string
	name       string
	success    string
	failure    string
}

// invalid records a rejected input. Nothing has touched the cache yet.
func (c *Coordinator) invalid(a action, err error) error {
	metrics.TrackMutation(a.collection, a.name, "invalid")
	logger.Debug("Rejected invalid input", "collection", a.collection, "action", a.name, "error", err)
	return fmt.Errorf("%s: %w", a.failure, err)
}

// run applies m to store and settles it: on success a background refresh
// heals any remaining drift; on failure the layer is already rolled back,
// the user is notified and the collection is refetched.
func run[T any](ctx context.Context, c *Coordinator, store *cache.Store[T], a action, m cache.Mutation[T]) error {
	m.Name = a.name
	if err := store.Mutate(ctx, m); err != nil {
		metrics.TrackMutation(a.collection, a.name, "failure")
		logger.Error("Mutation failed", "collection", a.collection, "action", a.name, "error", err)
		c.notify(ctx, notifier.LevelError, fmt.Sprintf("Could not %s: %v", a.failure, err))
		c.refreshInBackground(store)
		return fmt.Errorf("failed to %s: %w", a.failure, err)
	}

	metrics.TrackMutation(a.collection, a.name, "success")
	logger.Debug("Mutation confirmed", "collection", a.collection, "action", a.name)
	c.refreshInBackground(store)
	if a.success != "" {
		c.notify(ctx, notifier.LevelInfo, a.success)
	}
	return nil
}

// Insights builds the analytics report from the current cache contents.
func (c *Coordinator) Insights(ctx context.Context, rng analytics.Range) (analytics.Report, error) {
	in := analytics.FromCollections(
		c.habits.Read().Items,
		c.goals.Read().Items,
		c.learning.Read().Items,
		c.bucket.Read().Items,
	)
	return analytics.BuildReport(ctx, in, rng, c.Now())
}

// Helpers over immutable slices. Each returns a new slice and leaves the
// argument's elements untouched.

func replaceWhere[T any](items []T, match func(T) bool, fn func(T) T) []T {
	out := slices.Clone(items)
	for i := range out {
		if match(out[i]) {
			out[i] = fn(out[i])
		}
	}
	return out
}

func removeWhere[T any](items []T, match func(T) bool) []T {
	return slices.DeleteFunc(slices.Clone(items), match)
}

// upsertWhere replaces the first match with v, or appends v.
func upsertWhere[T any](items []T, match func(T) bool, v T) []T {
	out := slices.Clone(items)
	if i := slices.IndexFunc(out, match); i >= 0 {
		out[i] = v
		return out
	}
	return append(out, v)
}
