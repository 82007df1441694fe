package coordinator

import (
	"context"
	"fmt"
	"slices"

	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
)

type learningList = []models.LearningItemWithSessions

func byLearningID(id string) func(models.LearningItemWithSessions) bool {
	return func(i models.LearningItemWithSessions) bool { return i.ID == id }
}

func (c *Coordinator) CreateLearningItem(ctx context.Context, in models.CreateLearningInput) error {
	a := action{collection: CollectionLearning, name: "create", failure: "create learning item"}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Created learning item %q", in.Title)

	placeholder := progress.ProjectLearning(models.LearningItemWithSessions{
		LearningItem: models.NewLearningItem(tempID(), c.userID, in, c.Now()),
	})

	return run(ctx, c, c.learning, a, cache.Mutation[models.LearningItemWithSessions]{
		Optimistic: func(cur learningList) learningList { return append(cur, placeholder) },
		Commit: func(ctx context.Context) (cache.Reconcile[models.LearningItemWithSessions], error) {
			created, err := c.provider.CreateLearningItem(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed learningList) learningList {
				item := progress.ProjectLearning(models.LearningItemWithSessions{LearningItem: created})
				return upsertWhere(confirmed, byLearningID(created.ID), item)
			}, nil
		},
	})
}

func (c *Coordinator) UpdateLearningItem(ctx context.Context, id string, patch models.UpdateLearningInput) error {
	a := action{collection: CollectionLearning, name: "update", failure: "update learning item", success: "Updated learning item"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}

	now := c.Now()
	return run(ctx, c, c.learning, a, cache.Mutation[models.LearningItemWithSessions]{
		Optimistic: func(cur learningList) learningList {
			return replaceWhere(cur, byLearningID(id), func(i models.LearningItemWithSessions) models.LearningItemWithSessions {
				i.LearningItem = models.ApplyLearningPatch(i.LearningItem, patch, now)
				return progress.ProjectLearning(i)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.LearningItemWithSessions], error) {
			updated, err := c.provider.UpdateLearningItem(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return func(confirmed learningList) learningList {
				return replaceWhere(confirmed, byLearningID(id), func(i models.LearningItemWithSessions) models.LearningItemWithSessions {
					i.LearningItem = updated
					return progress.ProjectLearning(i)
				})
			}, nil
		},
	})
}

func (c *Coordinator) DeleteLearningItem(ctx context.Context, id string) error {
	a := action{collection: CollectionLearning, name: "delete", failure: "delete learning item", success: "Deleted learning item"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur learningList) learningList { return removeWhere(cur, byLearningID(id)) }
	return run(ctx, c, c.learning, a, cache.Mutation[models.LearningItemWithSessions]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.LearningItemWithSessions], error) {
			if err := c.provider.DeleteLearningItem(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}

// LogSession records a study session. The session is shown first and the
// item's running totals are incremented immediately; the provider writes
// both in one step and its answer replaces the local guess.
func (c *Coordinator) LogSession(ctx context.Context, itemID string, in models.CreateSessionInput) error {
	a := action{collection: CollectionLearning, name: "log_session", failure: "log session"}
	if err := c.validator.ID("learning_item_id", itemID); err != nil {
		return c.invalid(a, err)
	}
	if in.SessionDate == "" {
		in.SessionDate = c.todayKey()
	}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Logged %d minutes", in.DurationMinutes)

	now := c.Now()
	session := models.NewSession(tempID(), itemID, in, in.SessionDate, now)

	return run(ctx, c, c.learning, a, cache.Mutation[models.LearningItemWithSessions]{
		Optimistic: func(cur learningList) learningList {
			return replaceWhere(cur, byLearningID(itemID), func(i models.LearningItemWithSessions) models.LearningItemWithSessions {
				i.LearningItem = models.ApplySession(i.LearningItem, session, now)
				i.Sessions = append([]models.LearningSession{session}, i.Sessions...)
				return progress.ProjectLearning(i)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.LearningItemWithSessions], error) {
			res, err := c.provider.LogSession(ctx, itemID, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed learningList) learningList {
				return replaceWhere(confirmed, byLearningID(itemID), func(i models.LearningItemWithSessions) models.LearningItemWithSessions {
					if res.Item != nil {
						i.LearningItem = *res.Item
					} else {
						// totals were bumped server side; the background refresh
						// replaces this estimate
						i.LearningItem = models.ApplySession(i.LearningItem, res.Session, now)
					}
					sessions := removeWhere(i.Sessions, func(s models.LearningSession) bool { return s.ID == res.Session.ID })
					i.Sessions = slices.Insert(sessions, 0, res.Session)
					return progress.ProjectLearning(i)
				})
			}, nil
		},
	})
}
