package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
)

type habitList = []models.HabitWithCompletions

func byHabitID(id string) func(models.HabitWithCompletions) bool {
	return func(h models.HabitWithCompletions) bool { return h.ID == id }
}

// ToggleHabit marks habitID done (completed) or not done on date. An empty
// date means today in the configured timezone. Repeating a toggle converges
// to the same state.
func (c *Coordinator) ToggleHabit(ctx context.Context, habitID, date string, completed bool) error {
	if completed {
		return c.RecordCompletion(ctx, habitID, date, models.CompletionFields{})
	}
	return c.clearCompletion(ctx, habitID, date)
}

// RecordCompletion upserts the completion for (habitID, date) with the given
// duration and notes.
func (c *Coordinator) RecordCompletion(ctx context.Context, habitID, date string, fields models.CompletionFields) error {
	a := action{collection: CollectionHabits, name: "complete", failure: "mark habit done"}
	if date == "" {
		date = c.todayKey()
	}
	if err := c.validator.ID("habit_id", habitID); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Date("date", date); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Struct(fields); err != nil {
		return c.invalid(a, err)
	}

	now, today := c.Now(), c.today()
	temp := models.HabitCompletion{
		ID:              tempID(),
		HabitID:         habitID,
		CompletedDate:   date,
		DurationMinutes: fields.DurationMinutes,
		Notes:           fields.Notes,
		CreatedAt:       now,
	}
	hasFields := fields.DurationMinutes != nil || fields.Notes != nil

	return run(ctx, c, c.habits, a, cache.Mutation[models.HabitWithCompletions]{
		Optimistic: func(cur habitList) habitList {
			return replaceWhere(cur, byHabitID(habitID), func(h models.HabitWithCompletions) models.HabitWithCompletions {
				existing, ok := h.CompletionFor(date)
				if ok && !hasFields {
					return h
				}
				rec := temp
				if ok {
					rec.ID = existing.ID
					rec.CreatedAt = existing.CreatedAt
				}
				return withCompletion(h, rec, today)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.HabitWithCompletions], error) {
			saved, err := c.provider.UpsertCompletion(ctx, habitID, date, fields)
			if err != nil {
				return nil, err
			}
			return func(confirmed habitList) habitList {
				return replaceWhere(confirmed, byHabitID(habitID), func(h models.HabitWithCompletions) models.HabitWithCompletions {
					return withCompletion(h, saved, today)
				})
			}, nil
		},
	})
}

func (c *Coordinator) clearCompletion(ctx context.Context, habitID, date string) error {
	a := action{collection: CollectionHabits, name: "uncomplete", failure: "mark habit not done"}
	if date == "" {
		date = c.todayKey()
	}
	if err := c.validator.ID("habit_id", habitID); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Date("date", date); err != nil {
		return c.invalid(a, err)
	}

	today := c.today()
	drop := func(cur habitList) habitList {
		return replaceWhere(cur, byHabitID(habitID), func(h models.HabitWithCompletions) models.HabitWithCompletions {
			return withoutCompletion(h, date, today)
		})
	}

	return run(ctx, c, c.habits, a, cache.Mutation[models.HabitWithCompletions]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.HabitWithCompletions], error) {
			if err := c.provider.DeleteCompletion(ctx, habitID, date); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}

// withCompletion stores rec as the only completion for its date and
// recomputes the habit's derived fields.
func withCompletion(h models.HabitWithCompletions, rec models.HabitCompletion, today time.Time) models.HabitWithCompletions {
	comps := make([]models.HabitCompletion, 0, len(h.Completions)+1)
	for _, existing := range h.Completions {
		if existing.CompletedDate != rec.CompletedDate {
			comps = append(comps, existing)
		}
	}
	h.Completions = append(comps, rec)
	return progress.ProjectHabit(h, today)
}

func withoutCompletion(h models.HabitWithCompletions, date string, today time.Time) models.HabitWithCompletions {
	comps := make([]models.HabitCompletion, 0, len(h.Completions))
	for _, existing := range h.Completions {
		if existing.CompletedDate != date {
			comps = append(comps, existing)
		}
	}
	h.Completions = comps
	return progress.ProjectHabit(h, today)
}

func (c *Coordinator) CreateHabit(ctx context.Context, in models.CreateHabitInput) error {
	a := action{collection: CollectionHabits, name: "create", failure: "create habit"}
	if err := c.validator.CreateHabit(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Created habit %q", in.Name)

	now, today := c.Now(), c.today()
	id := tempID()
	placeholder := progress.ProjectHabit(models.HabitWithCompletions{
		Habit: models.NewHabit(id, c.userID, in, now),
	}, today)

	return run(ctx, c, c.habits, a, cache.Mutation[models.HabitWithCompletions]{
		Optimistic: func(cur habitList) habitList {
			return append(cur, placeholder)
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.HabitWithCompletions], error) {
			created, err := c.provider.CreateHabit(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed habitList) habitList {
				h := progress.ProjectHabit(models.HabitWithCompletions{Habit: created}, today)
				return upsertWhere(confirmed, byHabitID(created.ID), h)
			}, nil
		},
	})
}

func (c *Coordinator) UpdateHabit(ctx context.Context, id string, patch models.UpdateHabitInput) error {
	a := action{collection: CollectionHabits, name: "update", failure: "update habit", success: "Updated habit"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.UpdateHabit(patch); err != nil {
		return c.invalid(a, err)
	}
	return c.patchHabit(ctx, a, id, patch)
}

// ArchiveHabit hides (archived) or restores a habit without deleting its
// history.
func (c *Coordinator) ArchiveHabit(ctx context.Context, id string, archived bool) error {
	a := action{collection: CollectionHabits, name: "archive", failure: "archive habit", success: "Archived habit"}
	if !archived {
		a.name, a.failure, a.success = "unarchive", "restore habit", "Restored habit"
	}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}
	return c.patchHabit(ctx, a, id, models.UpdateHabitInput{IsArchived: &archived})
}

func (c *Coordinator) patchHabit(ctx context.Context, a action, id string, patch models.UpdateHabitInput) error {
	now, today := c.Now(), c.today()
	return run(ctx, c, c.habits, a, cache.Mutation[models.HabitWithCompletions]{
		Optimistic: func(cur habitList) habitList {
			return replaceWhere(cur, byHabitID(id), func(h models.HabitWithCompletions) models.HabitWithCompletions {
				h.Habit = models.ApplyHabitPatch(h.Habit, patch, now)
				return progress.ProjectHabit(h, today)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.HabitWithCompletions], error) {
			updated, err := c.provider.UpdateHabit(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return func(confirmed habitList) habitList {
				return replaceWhere(confirmed, byHabitID(id), func(h models.HabitWithCompletions) models.HabitWithCompletions {
					h.Habit = updated
					return progress.ProjectHabit(h, today)
				})
			}, nil
		},
	})
}

// DeleteHabit removes the habit and its completion history.
func (c *Coordinator) DeleteHabit(ctx context.Context, id string) error {
	a := action{collection: CollectionHabits, name: "delete", failure: "delete habit", success: "Deleted habit"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur habitList) habitList { return removeWhere(cur, byHabitID(id)) }
	return run(ctx, c, c.habits, a, cache.Mutation[models.HabitWithCompletions]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.HabitWithCompletions], error) {
			if err := c.provider.DeleteHabit(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}

// DueToday returns the non-archived habits due today with their derived
// fields recomputed for the current day.
func (c *Coordinator) DueToday() []models.HabitWithCompletions {
	today := c.today()
	var due []models.HabitWithCompletions
	for _, h := range c.habits.Read().Items {
		if h.IsArchived || !progress.IsDueToday(h.Habit, today) {
			continue
		}
		due = append(due, progress.ProjectHabit(h, today))
	}
	return due
}
