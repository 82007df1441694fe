package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
	"github.com/julianstephens/lifeos/internal/utils"
)

const habitColumns = `id, user_id, name, description, icon, color, frequency_type, frequency_value,
       category, target_duration_minutes, is_archived, order_index, created_at, updated_at`

const completionColumns = `id, habit_id, completed_date, duration_minutes, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var description, freqValue sql.NullString
	var freqType, category, createdAt, updatedAt string
	var target sql.NullInt64

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &description, &h.Icon, &h.Color, &freqType, &freqValue,
		&category, &target, &h.IsArchived, &h.OrderIndex, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}

	var raw json.RawMessage
	if freqValue.Valid {
		raw = json.RawMessage(freqValue.String)
	}
	h.Frequency, err = models.DecodeFrequency(models.FrequencyType(freqType), raw)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to decode frequency for habit %s: %w", h.ID, err)
	}

	h.Description = stringPtr(description)
	h.Category = models.HabitCategory(category)
	h.TargetDurationMinutes = intPtr(target)
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func scanCompletion(row rowScanner) (models.HabitCompletion, error) {
	var c models.HabitCompletion
	var duration sql.NullInt64
	var notes sql.NullString
	var createdAt string

	if err := row.Scan(&c.ID, &c.HabitID, &c.CompletedDate, &duration, &notes, &createdAt); err != nil {
		return models.HabitCompletion{}, err
	}
	c.DurationMinutes = intPtr(duration)
	c.Notes = stringPtr(notes)

	var err error
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.HabitCompletion{}, err
	}
	return c, nil
}

func encodeFrequencyColumns(f models.Frequency) (string, sql.NullString, error) {
	ft, fv, err := models.EncodeFrequency(f)
	if err != nil {
		return "", sql.NullString{}, err
	}
	if len(fv) == 0 || string(fv) == "null" {
		return string(ft), sql.NullString{}, nil
	}
	return string(ft), sql.NullString{String: string(fv), Valid: true}, nil
}

func (s *Store) ListHabits(ctx context.Context) ([]models.HabitWithCompletions, error) {
	defer s.track("list_habits")()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+habitColumns+`
FROM habits WHERE user_id = ? ORDER BY order_index, created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := []models.HabitWithCompletions{}
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, models.HabitWithCompletions{Habit: h, Completions: []models.HabitCompletion{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := db.QueryContext(ctx, s.rebind(`
SELECT c.id, c.habit_id, c.completed_date, c.duration_minutes, c.notes, c.created_at
FROM habit_completions c JOIN habits h ON h.id = c.habit_id
WHERE h.user_id = ? ORDER BY c.completed_date`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		c, err := scanCompletion(crows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[c.HabitID]; ok {
			habits[i].Completions = append(habits[i].Completions, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	return progress.ProjectHabits(habits, s.now()), nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.HabitWithCompletions, error) {
	defer s.track("get_habit")()
	db, err := s.conn()
	if err != nil {
		return models.HabitWithCompletions{}, err
	}

	h, err := s.getHabit(ctx, db, id)
	if err != nil {
		return models.HabitWithCompletions{}, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+completionColumns+`
FROM habit_completions WHERE habit_id = ? ORDER BY completed_date`), id)
	if err != nil {
		return models.HabitWithCompletions{}, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	out := models.HabitWithCompletions{Habit: h, Completions: []models.HabitCompletion{}}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return models.HabitWithCompletions{}, err
		}
		out.Completions = append(out.Completions, c)
	}
	if err := rows.Err(); err != nil {
		return models.HabitWithCompletions{}, err
	}
	return progress.ProjectHabit(out, s.now()), nil
}

func (s *Store) getHabit(ctx context.Context, q querier, id string) (models.Habit, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT `+habitColumns+`
FROM habits WHERE id = ? AND user_id = ?`), id, s.userID)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit", id)
	}
	return h, nil
}

func (s *Store) CreateHabit(ctx context.Context, in models.CreateHabitInput) (models.Habit, error) {
	defer s.track("create_habit")()

	var h models.Habit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		order, err := s.nextOrder(ctx, tx, "habits", "user_id", s.userID)
		if err != nil {
			return err
		}
		h = models.NewHabit(s.newID(), s.userID, in, s.now())
		h.OrderIndex = order
		return s.writeHabit(ctx, tx, h, true)
	})
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	return h, nil
}

func (s *Store) writeHabit(ctx context.Context, q querier, h models.Habit, insert bool) error {
	ft, fv, err := encodeFrequencyColumns(h.Frequency)
	if err != nil {
		return err
	}

	if insert {
		_, err = q.ExecContext(ctx, s.rebind(`
INSERT INTO habits (`+habitColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			h.ID, h.UserID, h.Name, nullString(h.Description), h.Icon, h.Color, ft, fv,
			string(h.Category), nullInt(h.TargetDurationMinutes), h.IsArchived, h.OrderIndex,
			formatTime(h.CreatedAt), formatTime(h.UpdatedAt))
		return err
	}

	return s.execOne(ctx, q, "habit", h.ID, `
UPDATE habits SET name = ?, description = ?, icon = ?, color = ?, frequency_type = ?, frequency_value = ?,
       category = ?, target_duration_minutes = ?, is_archived = ?, order_index = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
		h.Name, nullString(h.Description), h.Icon, h.Color, ft, fv,
		string(h.Category), nullInt(h.TargetDurationMinutes), h.IsArchived, h.OrderIndex,
		formatTime(h.UpdatedAt), h.ID, s.userID)
}

func (s *Store) UpdateHabit(ctx context.Context, id string, patch models.UpdateHabitInput) (models.Habit, error) {
	defer s.track("update_habit")()

	var h models.Habit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getHabit(ctx, tx, id)
		if err != nil {
			return err
		}
		h = models.ApplyHabitPatch(current, patch, s.now())
		return s.writeHabit(ctx, tx, h, false)
	})
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	defer s.track("delete_habit")()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getHabit(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM habit_completions WHERE habit_id = ?"), id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, "habit", id, "DELETE FROM habits WHERE id = ? AND user_id = ?", id, s.userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

func (s *Store) UpsertCompletion(ctx context.Context, habitID, date string, fields models.CompletionFields) (models.HabitCompletion, error) {
	defer s.track("upsert_completion")()

	if _, err := utils.ParseDay(date); err != nil {
		return models.HabitCompletion{}, err
	}

	var c models.HabitCompletion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getHabit(ctx, tx, habitID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.rebind(`
INSERT INTO habit_completions (`+completionColumns+`)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (habit_id, completed_date) DO UPDATE SET
    duration_minutes = excluded.duration_minutes,
    notes = excluded.notes`),
			s.newID(), habitID, date, nullInt(fields.DurationMinutes), nullString(fields.Notes), formatTime(s.now()))
		if err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, s.rebind(`
SELECT `+completionColumns+`
FROM habit_completions WHERE habit_id = ? AND completed_date = ?`), habitID, date)
		c, err = scanCompletion(row)
		return err
	})
	if err != nil {
		return models.HabitCompletion{}, fmt.Errorf("failed to record completion: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteCompletion(ctx context.Context, habitID, date string) error {
	defer s.track("delete_completion")()
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, s.rebind(`
DELETE FROM habit_completions
WHERE habit_id = ? AND completed_date = ?
  AND habit_id IN (SELECT id FROM habits WHERE user_id = ?)`), habitID, date, s.userID)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}
