package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/julianstephens/lifeos/internal/models"
)

const (
	habitsPath     = "/api/habits"
	goalsPath      = "/api/goals"
	milestonesPath = "/api/milestones"
	learningPath   = "/api/learning"
	bucketPath     = "/api/bucket-list"
	wishlistPath   = "/api/wishlist"
	projectsPath   = "/api/projects"
)

// projectPatch sends an unlinked goal as null; the API writes the body
// through to the row, where an empty string would break the goal reference.
type projectPatch struct {
	models.UpdateProjectInput
	GoalID any `json:"goal_id,omitempty"`
}

type completionRequest struct {
	Date string `json:"date"`
	models.CompletionFields
}

// ListHabits returns what the API serves, which excludes archived habits.
func (c *Client) ListHabits(ctx context.Context) ([]models.HabitWithCompletions, error) {
	out := []models.HabitWithCompletions{}
	err := c.do(ctx, "list_habits", http.MethodGet, habitsPath, nil, nil, &out)
	return out, err
}

func (c *Client) GetHabit(ctx context.Context, id string) (models.HabitWithCompletions, error) {
	var out models.HabitWithCompletions
	err := c.do(ctx, "get_habit", http.MethodGet, pathID(habitsPath, id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateHabit(ctx context.Context, in models.CreateHabitInput) (models.Habit, error) {
	var out models.Habit
	err := c.do(ctx, "create_habit", http.MethodPost, habitsPath, nil, in, &out)
	return out, err
}

func (c *Client) UpdateHabit(ctx context.Context, id string, patch models.UpdateHabitInput) (models.Habit, error) {
	var out models.Habit
	err := c.do(ctx, "update_habit", http.MethodPatch, pathID(habitsPath, id), nil, patch, &out)
	return out, err
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, "delete_habit", http.MethodDelete, pathID(habitsPath, id), nil, nil, nil)
}

func (c *Client) UpsertCompletion(ctx context.Context, habitID, date string, fields models.CompletionFields) (models.HabitCompletion, error) {
	var out models.HabitCompletion
	body := completionRequest{Date: date, CompletionFields: fields}
	err := c.do(ctx, "upsert_completion", http.MethodPost, pathID(habitsPath, habitID, "complete"), nil, body, &out)
	return out, err
}

func (c *Client) DeleteCompletion(ctx context.Context, habitID, date string) error {
	q := url.Values{"date": {date}}
	return c.do(ctx, "delete_completion", http.MethodDelete, pathID(habitsPath, habitID, "complete"), q, nil, nil)
}

func (c *Client) ListGoals(ctx context.Context) ([]models.GoalWithMilestones, error) {
	out := []models.GoalWithMilestones{}
	err := c.do(ctx, "list_goals", http.MethodGet, goalsPath, nil, nil, &out)
	return out, err
}

func (c *Client) GetGoal(ctx context.Context, id string) (models.GoalWithMilestones, error) {
	var out models.GoalWithMilestones
	err := c.do(ctx, "get_goal", http.MethodGet, pathID(goalsPath, id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateGoal(ctx context.Context, in models.CreateGoalInput) (models.Goal, error) {
	var out models.Goal
	err := c.do(ctx, "create_goal", http.MethodPost, goalsPath, nil, in, &out)
	return out, err
}

func (c *Client) UpdateGoal(ctx context.Context, id string, patch models.UpdateGoalInput) (models.Goal, error) {
	var out models.Goal
	err := c.do(ctx, "update_goal", http.MethodPatch, pathID(goalsPath, id), nil, patch, &out)
	return out, err
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, "delete_goal", http.MethodDelete, pathID(goalsPath, id), nil, nil, nil)
}

func (c *Client) CreateMilestone(ctx context.Context, goalID string, in models.CreateMilestoneInput) (models.GoalMilestone, error) {
	var out models.GoalMilestone
	err := c.do(ctx, "create_milestone", http.MethodPost, pathID(goalsPath, goalID, "milestones"), nil, in, &out)
	return out, err
}

func (c *Client) UpdateMilestone(ctx context.Context, id string, patch models.UpdateMilestoneInput) (models.GoalMilestone, error) {
	var out models.GoalMilestone
	err := c.do(ctx, "update_milestone", http.MethodPatch, pathID(milestonesPath, id), nil, patch, &out)
	return out, err
}

func (c *Client) DeleteMilestone(ctx context.Context, id string) error {
	return c.do(ctx, "delete_milestone", http.MethodDelete, pathID(milestonesPath, id), nil, nil, nil)
}

func (c *Client) ListLearningItems(ctx context.Context) ([]models.LearningItemWithSessions, error) {
	out := []models.LearningItemWithSessions{}
	err := c.do(ctx, "list_learning", http.MethodGet, learningPath, nil, nil, &out)
	return out, err
}

func (c *Client) GetLearningItem(ctx context.Context, id string) (models.LearningItemWithSessions, error) {
	var out models.LearningItemWithSessions
	err := c.do(ctx, "get_learning", http.MethodGet, pathID(learningPath, id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateLearningItem(ctx context.Context, in models.CreateLearningInput) (models.LearningItem, error) {
	var out models.LearningItem
	err := c.do(ctx, "create_learning", http.MethodPost, learningPath, nil, in, &out)
	return out, err
}

func (c *Client) UpdateLearningItem(ctx context.Context, id string, patch models.UpdateLearningInput) (models.LearningItem, error) {
	var out models.LearningItem
	err := c.do(ctx, "update_learning", http.MethodPatch, pathID(learningPath, id), nil, patch, &out)
	return out, err
}

func (c *Client) DeleteLearningItem(ctx context.Context, id string) error {
	return c.do(ctx, "delete_learning", http.MethodDelete, pathID(learningPath, id), nil, nil, nil)
}

// LogSession posts one session. The API answers with the created session
// only; it bumps the item's totals itself, so Item stays nil and callers
// derive the totals or re-fetch.
func (c *Client) LogSession(ctx context.Context, itemID string, in models.CreateSessionInput) (models.LogSessionResult, error) {
	var session models.LearningSession
	if err := c.do(ctx, "log_session", http.MethodPost, pathID(learningPath, itemID, "sessions"), nil, in, &session); err != nil {
		return models.LogSessionResult{}, err
	}
	if session.ID == "" {
		return models.LogSessionResult{}, fmt.Errorf("log session: response for item %s carried no session", itemID)
	}
	return models.LogSessionResult{Session: session}, nil
}

func (c *Client) ListBucketItems(ctx context.Context) ([]models.BucketListItem, error) {
	out := []models.BucketListItem{}
	err := c.do(ctx, "list_bucket", http.MethodGet, bucketPath, nil, nil, &out)
	return out, err
}

func (c *Client) GetBucketItem(ctx context.Context, id string) (models.BucketListItem, error) {
	var out models.BucketListItem
	err := c.do(ctx, "get_bucket", http.MethodGet, pathID(bucketPath, id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateBucketItem(ctx context.Context, in models.CreateBucketItemInput) (models.BucketListItem, error) {
	var out models.BucketListItem
	err := c.do(ctx, "create_bucket", http.MethodPost, bucketPath, nil, in, &out)
	return out, err
}

func (c *Client) UpdateBucketItem(ctx context.Context, id string, patch models.UpdateBucketItemInput) (models.BucketListItem, error) {
	var out models.BucketListItem
	err := c.do(ctx, "update_bucket", http.MethodPatch, pathID(bucketPath, id), nil, patch, &out)
	return out, err
}

func (c *Client) DeleteBucketItem(ctx context.Context, id string) error {
	return c.do(ctx, "delete_bucket", http.MethodDelete, pathID(bucketPath, id), nil, nil, nil)
}

func (c *Client) ListWishlistItems(ctx context.Context) ([]models.WishlistItem, error) {
	out := []models.WishlistItem{}
	err := c.do(ctx, "list_wishlist", http.MethodGet, wishlistPath, nil, nil, &out)
	return out, err
}

func (c *Client) GetWishlistItem(ctx context.Context, id string) (models.WishlistItem, error) {
	var out models.WishlistItem
	err := c.do(ctx, "get_wishlist", http.MethodGet, pathID(wishlistPath, id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateWishlistItem(ctx context.Context, in models.CreateWishlistInput) (models.WishlistItem, error) {
	var out models.WishlistItem
	err := c.do(ctx, "create_wishlist", http.MethodPost, wishlistPath, nil, in, &out)
	return out, err
}

func (c *Client) UpdateWishlistItem(ctx context.Context, id string, patch models.UpdateWishlistInput) (models.WishlistItem, error) {
	var out models.WishlistItem
	err := c.do(ctx, "update_wishlist", http.MethodPatch, pathID(wishlistPath, id), nil, patch, &out)
	return out, err
}

func (c *Client) DeleteWishlistItem(ctx context.Context, id string) error {
	return c.do(ctx, "delete_wishlist", http.MethodDelete, pathID(wishlistPath, id), nil, nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	out := []models.Project{}
	err := c.do(ctx, "list_projects", http.MethodGet, projectsPath, nil, nil, &out)
	return out, err
}

func (c *Client) GetProject(ctx context.Context, id string) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, "get_project", http.MethodGet, pathID(projectsPath, id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, in models.CreateProjectInput) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, "create_project", http.MethodPost, projectsPath, nil, in, &out)
	return out, err
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch models.UpdateProjectInput) (models.Project, error) {
	body := projectPatch{UpdateProjectInput: patch}
	if patch.GoalID != nil {
		if *patch.GoalID == "" {
			body.GoalID = json.RawMessage("null")
		} else {
			body.GoalID = *patch.GoalID
		}
	}
	var out models.Project
	err := c.do(ctx, "update_project", http.MethodPatch, pathID(projectsPath, id), nil, body, &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, "delete_project", http.MethodDelete, pathID(projectsPath, id), nil, nil, nil)
}
