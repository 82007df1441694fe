package coordinator

import (
	"context"
	"fmt"
	"slices"

	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
)

type goalList = []models.GoalWithMilestones

func byGoalID(id string) func(models.GoalWithMilestones) bool {
	return func(g models.GoalWithMilestones) bool { return g.ID == id }
}

func hasMilestone(id string) func(models.GoalWithMilestones) bool {
	return func(g models.GoalWithMilestones) bool {
		return slices.ContainsFunc(g.Milestones, func(m models.GoalMilestone) bool { return m.ID == id })
	}
}

func (c *Coordinator) CreateGoal(ctx context.Context, in models.CreateGoalInput) error {
	a := action{collection: CollectionGoals, name: "create", failure: "create goal"}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Created goal %q", in.Title)

	placeholder := progress.ProjectGoal(models.GoalWithMilestones{
		Goal: models.NewGoal(tempID(), c.userID, in, c.Now()),
	})

	return run(ctx, c, c.goals, a, cache.Mutation[models.GoalWithMilestones]{
		Optimistic: func(cur goalList) goalList { return append(cur, placeholder) },
		Commit: func(ctx context.Context) (cache.Reconcile[models.GoalWithMilestones], error) {
			created, err := c.provider.CreateGoal(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed goalList) goalList {
				return upsertWhere(confirmed, byGoalID(created.ID), progress.ProjectGoal(models.GoalWithMilestones{Goal: created}))
			}, nil
		},
	})
}

// UpdateGoal applies patch. Moving into completed stamps completed_at and
// moving out of it clears the stamp, both locally and on the server.
func (c *Coordinator) UpdateGoal(ctx context.Context, id string, patch models.UpdateGoalInput) error {
	a := action{collection: CollectionGoals, name: "update", failure: "update goal", success: "Updated goal"}
	if patch.Status != nil {
		a.name = "status"
		a.success = fmt.Sprintf("Goal marked %s", *patch.Status)
	}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}

	now := c.Now()
	return run(ctx, c, c.goals, a, cache.Mutation[models.GoalWithMilestones]{
		Optimistic: func(cur goalList) goalList {
			return replaceWhere(cur, byGoalID(id), func(g models.GoalWithMilestones) models.GoalWithMilestones {
				g.Goal = models.ApplyGoalPatch(g.Goal, patch, now)
				return g
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.GoalWithMilestones], error) {
			updated, err := c.provider.UpdateGoal(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return func(confirmed goalList) goalList {
				return replaceWhere(confirmed, byGoalID(id), func(g models.GoalWithMilestones) models.GoalWithMilestones {
					g.Goal = updated
					return g
				})
			}, nil
		},
	})
}

// SetGoalStatus is UpdateGoal restricted to the status field.
func (c *Coordinator) SetGoalStatus(ctx context.Context, id string, status models.GoalStatus) error {
	return c.UpdateGoal(ctx, id, models.UpdateGoalInput{Status: &status})
}

// DeleteGoal removes the goal with its milestones.
func (c *Coordinator) DeleteGoal(ctx context.Context, id string) error {
	a := action{collection: CollectionGoals, name: "delete", failure: "delete goal", success: "Deleted goal"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur goalList) goalList { return removeWhere(cur, byGoalID(id)) }
	err := run(ctx, c, c.goals, a, cache.Mutation[models.GoalWithMilestones]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.GoalWithMilestones], error) {
			if err := c.provider.DeleteGoal(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
	if err != nil {
		return err
	}
	c.unlinkGoal(ctx, id)
	return nil
}

// AddMilestone appends a milestone to goalID and recomputes the goal's
// progress.
func (c *Coordinator) AddMilestone(ctx context.Context, goalID string, in models.CreateMilestoneInput) error {
	a := action{collection: CollectionGoals, name: "add_milestone", failure: "add milestone"}
	if err := c.validator.ID("goal_id", goalID); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Added milestone %q", in.Title)

	id, now := tempID(), c.Now()
	return run(ctx, c, c.goals, a, cache.Mutation[models.GoalWithMilestones]{
		Optimistic: func(cur goalList) goalList {
			return replaceWhere(cur, byGoalID(goalID), func(g models.GoalWithMilestones) models.GoalWithMilestones {
				m := models.NewMilestone(id, goalID, in, len(g.Milestones), now)
				g.Milestones = append(slices.Clone(g.Milestones), m)
				return progress.ProjectGoal(g)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.GoalWithMilestones], error) {
			created, err := c.provider.CreateMilestone(ctx, goalID, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed goalList) goalList {
				return replaceWhere(confirmed, byGoalID(goalID), func(g models.GoalWithMilestones) models.GoalWithMilestones {
					g.Milestones = upsertWhere(g.Milestones, func(m models.GoalMilestone) bool { return m.ID == created.ID }, created)
					return progress.ProjectGoal(g)
				})
			}, nil
		},
	})
}

// ToggleMilestone marks a milestone done or not done.
func (c *Coordinator) ToggleMilestone(ctx context.Context, id string, completed bool) error {
	a := action{collection: CollectionGoals, name: "toggle_milestone", failure: "update milestone", success: "Milestone reopened"}
	if completed {
		a.success = "Milestone completed"
	}
	return c.patchMilestone(ctx, a, id, models.UpdateMilestoneInput{IsCompleted: &completed})
}

func (c *Coordinator) UpdateMilestone(ctx context.Context, id string, patch models.UpdateMilestoneInput) error {
	a := action{collection: CollectionGoals, name: "update_milestone", failure: "update milestone", success: "Updated milestone"}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}
	return c.patchMilestone(ctx, a, id, patch)
}

func (c *Coordinator) patchMilestone(ctx context.Context, a action, id string, patch models.UpdateMilestoneInput) error {
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	now := c.Now()
	set := func(fn func(models.GoalMilestone) models.GoalMilestone) func(goalList) goalList {
		return func(cur goalList) goalList {
			return replaceWhere(cur, hasMilestone(id), func(g models.GoalWithMilestones) models.GoalWithMilestones {
				g.Milestones = replaceWhere(g.Milestones, func(m models.GoalMilestone) bool { return m.ID == id }, fn)
				return progress.ProjectGoal(g)
			})
		}
	}

	return run(ctx, c, c.goals, a, cache.Mutation[models.GoalWithMilestones]{
		Optimistic: set(func(m models.GoalMilestone) models.GoalMilestone {
			return models.ApplyMilestonePatch(m, patch, now)
		}),
		Commit: func(ctx context.Context) (cache.Reconcile[models.GoalWithMilestones], error) {
			updated, err := c.provider.UpdateMilestone(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return set(func(models.GoalMilestone) models.GoalMilestone { return updated }), nil
		},
	})
}

func (c *Coordinator) DeleteMilestone(ctx context.Context, id string) error {
	a := action{collection: CollectionGoals, name: "delete_milestone", failure: "delete milestone", success: "Deleted milestone"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur goalList) goalList {
		return replaceWhere(cur, hasMilestone(id), func(g models.GoalWithMilestones) models.GoalWithMilestones {
			g.Milestones = removeWhere(g.Milestones, func(m models.GoalMilestone) bool { return m.ID == id })
			return progress.ProjectGoal(g)
		})
	}
	return run(ctx, c, c.goals, a, cache.Mutation[models.GoalWithMilestones]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.GoalWithMilestones], error) {
			if err := c.provider.DeleteMilestone(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}
