package storage

import (
	"context"

	"github.com/julianstephens/lifeos/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	HabitProvider
	GoalProvider
	LearningProvider
	BucketProvider
	WishlistProvider
	ProjectProvider

	// Utils
	// Describe returns a non-sensitive identifier for the backing store.
	Describe() string
}

type HabitProvider interface {
	// ListHabits returns every habit of the user, archived ones included, so
	// they can be listed and restored. Callers filter on IsArchived for due
	// lists, streaks and summaries. The remote API only serves active habits.
	ListHabits(ctx context.Context) ([]models.HabitWithCompletions, error)
	GetHabit(ctx context.Context, id string) (models.HabitWithCompletions, error)
	CreateHabit(ctx context.Context, in models.CreateHabitInput) (models.Habit, error)
	UpdateHabit(ctx context.Context, id string, patch models.UpdateHabitInput) (models.Habit, error)
	// DeleteHabit removes the habit and all of its completions.
	DeleteHabit(ctx context.Context, id string) error

	// UpsertCompletion records habitID as done on date. Repeating the call
	// for the same (habitID, date) replaces the record rather than adding one.
	UpsertCompletion(ctx context.Context, habitID, date string, fields models.CompletionFields) (models.HabitCompletion, error)
	// DeleteCompletion removes the record for (habitID, date). Deleting a
	// missing record is not an error.
	DeleteCompletion(ctx context.Context, habitID, date string) error
}

type GoalProvider interface {
	ListGoals(ctx context.Context) ([]models.GoalWithMilestones, error)
	GetGoal(ctx context.Context, id string) (models.GoalWithMilestones, error)
	CreateGoal(ctx context.Context, in models.CreateGoalInput) (models.Goal, error)
	// UpdateGoal keeps completed_at consistent with the resulting status.
	UpdateGoal(ctx context.Context, id string, patch models.UpdateGoalInput) (models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	CreateMilestone(ctx context.Context, goalID string, in models.CreateMilestoneInput) (models.GoalMilestone, error)
	UpdateMilestone(ctx context.Context, id string, patch models.UpdateMilestoneInput) (models.GoalMilestone, error)
	DeleteMilestone(ctx context.Context, id string) error
}

type LearningProvider interface {
	ListLearningItems(ctx context.Context) ([]models.LearningItemWithSessions, error)
	GetLearningItem(ctx context.Context, id string) (models.LearningItemWithSessions, error)
	CreateLearningItem(ctx context.Context, in models.CreateLearningInput) (models.LearningItem, error)
	UpdateLearningItem(ctx context.Context, id string, patch models.UpdateLearningInput) (models.LearningItem, error)
	DeleteLearningItem(ctx context.Context, id string) error

	// LogSession appends a session and increments the parent item's running
	// totals as one write, returning both.
	LogSession(ctx context.Context, itemID string, in models.CreateSessionInput) (models.LogSessionResult, error)
}

type BucketProvider interface {
	ListBucketItems(ctx context.Context) ([]models.BucketListItem, error)
	GetBucketItem(ctx context.Context, id string) (models.BucketListItem, error)
	CreateBucketItem(ctx context.Context, in models.CreateBucketItemInput) (models.BucketListItem, error)
	UpdateBucketItem(ctx context.Context, id string, patch models.UpdateBucketItemInput) (models.BucketListItem, error)
	DeleteBucketItem(ctx context.Context, id string) error
}

type WishlistProvider interface {
	ListWishlistItems(ctx context.Context) ([]models.WishlistItem, error)
	GetWishlistItem(ctx context.Context, id string) (models.WishlistItem, error)
	CreateWishlistItem(ctx context.Context, in models.CreateWishlistInput) (models.WishlistItem, error)
	UpdateWishlistItem(ctx context.Context, id string, patch models.UpdateWishlistInput) (models.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, id string) error
}

type ProjectProvider interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
	// CreateProject and UpdateProject reject a goal_id that names no goal.
	CreateProject(ctx context.Context, in models.CreateProjectInput) (models.Project, error)
	UpdateProject(ctx context.Context, id string, patch models.UpdateProjectInput) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}
