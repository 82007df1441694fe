package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
	"github.com/julianstephens/lifeos/internal/utils"
)

const learningColumns = `id, user_id, title, description, type, total_units, completed_units, unit_name,
       status, url, color, icon, total_time_minutes, started_at, completed_at, order_index, created_at, updated_at`

const sessionColumns = `id, learning_item_id, session_date, duration_minutes, units_completed, notes, created_at`

func scanLearningItem(row rowScanner) (models.LearningItem, error) {
	var it models.LearningItem
	var description, url, startedAt, completedAt sql.NullString
	var typ, status, createdAt, updatedAt string

	err := row.Scan(&it.ID, &it.UserID, &it.Title, &description, &typ, &it.TotalUnits, &it.CompletedUnits, &it.UnitName,
		&status, &url, &it.Color, &it.Icon, &it.TotalTimeMinutes, &startedAt, &completedAt, &it.OrderIndex,
		&createdAt, &updatedAt)
	if err != nil {
		return models.LearningItem{}, err
	}

	it.Description = stringPtr(description)
	it.URL = stringPtr(url)
	it.Type = models.LearningType(typ)
	it.Status = models.LearningStatus(status)
	if it.StartedAt, err = parseTimePtr("started_at", startedAt); err != nil {
		return models.LearningItem{}, err
	}
	if it.CompletedAt, err = parseTimePtr("completed_at", completedAt); err != nil {
		return models.LearningItem{}, err
	}
	if it.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.LearningItem{}, err
	}
	if it.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.LearningItem{}, err
	}
	return it, nil
}

func scanSession(row rowScanner) (models.LearningSession, error) {
	var ls models.LearningSession
	var notes sql.NullString
	var createdAt string

	err := row.Scan(&ls.ID, &ls.LearningItemID, &ls.SessionDate, &ls.DurationMinutes, &ls.UnitsCompleted, &notes, &createdAt)
	if err != nil {
		return models.LearningSession{}, err
	}
	ls.Notes = stringPtr(notes)
	if ls.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.LearningSession{}, err
	}
	return ls, nil
}

func (s *Store) ListLearningItems(ctx context.Context) ([]models.LearningItemWithSessions, error) {
	defer s.track("list_learning")()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+learningColumns+`
FROM learning_items WHERE user_id = ? ORDER BY order_index, created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list learning items: %w", err)
	}
	defer rows.Close()

	items := []models.LearningItemWithSessions{}
	index := make(map[string]int)
	for rows.Next() {
		it, err := scanLearningItem(rows)
		if err != nil {
			return nil, err
		}
		index[it.ID] = len(items)
		items = append(items, models.LearningItemWithSessions{LearningItem: it, Sessions: []models.LearningSession{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := db.QueryContext(ctx, s.rebind(`
SELECT ls.id, ls.learning_item_id, ls.session_date, ls.duration_minutes, ls.units_completed, ls.notes, ls.created_at
FROM learning_sessions ls JOIN learning_items li ON li.id = ls.learning_item_id
WHERE li.user_id = ? ORDER BY ls.session_date DESC, ls.created_at DESC`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		ls, err := scanSession(srows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[ls.LearningItemID]; ok {
			items[i].Sessions = append(items[i].Sessions, ls)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		items[i] = progress.ProjectLearning(items[i])
	}
	return items, nil
}

func (s *Store) GetLearningItem(ctx context.Context, id string) (models.LearningItemWithSessions, error) {
	defer s.track("get_learning")()
	db, err := s.conn()
	if err != nil {
		return models.LearningItemWithSessions{}, err
	}

	it, err := s.getLearningItem(ctx, db, id)
	if err != nil {
		return models.LearningItemWithSessions{}, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+sessionColumns+`
FROM learning_sessions WHERE learning_item_id = ? ORDER BY session_date DESC, created_at DESC`), id)
	if err != nil {
		return models.LearningItemWithSessions{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	out := models.LearningItemWithSessions{LearningItem: it, Sessions: []models.LearningSession{}}
	for rows.Next() {
		ls, err := scanSession(rows)
		if err != nil {
			return models.LearningItemWithSessions{}, err
		}
		out.Sessions = append(out.Sessions, ls)
	}
	if err := rows.Err(); err != nil {
		return models.LearningItemWithSessions{}, err
	}
	return progress.ProjectLearning(out), nil
}

func (s *Store) getLearningItem(ctx context.Context, q querier, id string) (models.LearningItem, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT `+learningColumns+`
FROM learning_items WHERE id = ? AND user_id = ?`), id, s.userID)
	it, err := scanLearningItem(row)
	if err != nil {
		return models.LearningItem{}, notFound(err, "learning item", id)
	}
	return it, nil
}

func (s *Store) writeLearningItem(ctx context.Context, q querier, it models.LearningItem) error {
	return s.execOne(ctx, q, "learning item", it.ID, `
UPDATE learning_items SET title = ?, description = ?, type = ?, total_units = ?, completed_units = ?,
       unit_name = ?, status = ?, url = ?, color = ?, icon = ?, total_time_minutes = ?,
       started_at = ?, completed_at = ?, order_index = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
		it.Title, nullString(it.Description), string(it.Type), it.TotalUnits, it.CompletedUnits,
		it.UnitName, string(it.Status), nullString(it.URL), it.Color, it.Icon, it.TotalTimeMinutes,
		formatTimePtr(it.StartedAt), formatTimePtr(it.CompletedAt), it.OrderIndex, formatTime(it.UpdatedAt),
		it.ID, s.userID)
}

func (s *Store) CreateLearningItem(ctx context.Context, in models.CreateLearningInput) (models.LearningItem, error) {
	defer s.track("create_learning")()

	var it models.LearningItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		order, err := s.nextOrder(ctx, tx, "learning_items", "user_id", s.userID)
		if err != nil {
			return err
		}
		it = models.NewLearningItem(s.newID(), s.userID, in, s.now())
		it.OrderIndex = order
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO learning_items (`+learningColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			it.ID, it.UserID, it.Title, nullString(it.Description), string(it.Type), it.TotalUnits, it.CompletedUnits,
			it.UnitName, string(it.Status), nullString(it.URL), it.Color, it.Icon, it.TotalTimeMinutes,
			formatTimePtr(it.StartedAt), formatTimePtr(it.CompletedAt), it.OrderIndex,
			formatTime(it.CreatedAt), formatTime(it.UpdatedAt))
		return err
	})
	if err != nil {
		return models.LearningItem{}, fmt.Errorf("failed to create learning item: %w", err)
	}
	return it, nil
}

func (s *Store) UpdateLearningItem(ctx context.Context, id string, patch models.UpdateLearningInput) (models.LearningItem, error) {
	defer s.track("update_learning")()

	var it models.LearningItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getLearningItem(ctx, tx, id)
		if err != nil {
			return err
		}
		it = models.ApplyLearningPatch(current, patch, s.now())
		return s.writeLearningItem(ctx, tx, it)
	})
	if err != nil {
		return models.LearningItem{}, fmt.Errorf("failed to update learning item: %w", err)
	}
	return it, nil
}

func (s *Store) DeleteLearningItem(ctx context.Context, id string) error {
	defer s.track("delete_learning")()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getLearningItem(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM learning_sessions WHERE learning_item_id = ?"), id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, "learning item", id, "DELETE FROM learning_items WHERE id = ? AND user_id = ?", id, s.userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete learning item: %w", err)
	}
	return nil
}

// LogSession inserts the session and bumps the item's totals in one
// transaction so neither write is visible without the other.
func (s *Store) LogSession(ctx context.Context, itemID string, in models.CreateSessionInput) (models.LogSessionResult, error) {
	defer s.track("log_session")()

	now := s.now()
	if in.SessionDate != "" {
		if _, err := utils.ParseDay(in.SessionDate); err != nil {
			return models.LogSessionResult{}, err
		}
	}

	var res models.LogSessionResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getLearningItem(ctx, tx, itemID)
		if err != nil {
			return err
		}

		ls := models.NewSession(s.newID(), itemID, in, utils.FormatDay(now), now)
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO learning_sessions (`+sessionColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)`),
			ls.ID, ls.LearningItemID, ls.SessionDate, ls.DurationMinutes, ls.UnitsCompleted,
			nullString(ls.Notes), formatTime(ls.CreatedAt))
		if err != nil {
			return err
		}

		it := models.ApplySession(current, ls, now)
		if err := s.writeLearningItem(ctx, tx, it); err != nil {
			return err
		}
		res = models.LogSessionResult{Session: ls, Item: &it}
		return nil
	})
	if err != nil {
		return models.LogSessionResult{}, fmt.Errorf("failed to log session: %w", err)
	}
	return res, nil
}
