package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
)

const goalColumns = `id, user_id, title, description, target_date, started_at, completed_at,
       status, color, icon, category, order_index, created_at, updated_at`

const milestoneColumns = `id, goal_id, title, description, is_completed, completed_at, order_index, created_at`

func scanGoal(row rowScanner) (models.Goal, error) {
	var g models.Goal
	var description, targetDate, completedAt sql.NullString
	var status, category, startedAt, createdAt, updatedAt string

	err := row.Scan(&g.ID, &g.UserID, &g.Title, &description, &targetDate, &startedAt, &completedAt,
		&status, &g.Color, &g.Icon, &category, &g.OrderIndex, &createdAt, &updatedAt)
	if err != nil {
		return models.Goal{}, err
	}

	g.Description = stringPtr(description)
	g.TargetDate = stringPtr(targetDate)
	g.Status = models.GoalStatus(status)
	g.Category = models.GoalCategory(category)
	if g.StartedAt, err = parseTime("started_at", startedAt); err != nil {
		return models.Goal{}, err
	}
	if g.CompletedAt, err = parseTimePtr("completed_at", completedAt); err != nil {
		return models.Goal{}, err
	}
	if g.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Goal{}, err
	}
	if g.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

func scanMilestone(row rowScanner) (models.GoalMilestone, error) {
	var m models.GoalMilestone
	var description, completedAt sql.NullString
	var createdAt string

	err := row.Scan(&m.ID, &m.GoalID, &m.Title, &description, &m.IsCompleted, &completedAt, &m.OrderIndex, &createdAt)
	if err != nil {
		return models.GoalMilestone{}, err
	}
	m.Description = stringPtr(description)
	if m.CompletedAt, err = parseTimePtr("completed_at", completedAt); err != nil {
		return models.GoalMilestone{}, err
	}
	if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.GoalMilestone{}, err
	}
	return m, nil
}

func (s *Store) ListGoals(ctx context.Context) ([]models.GoalWithMilestones, error) {
	defer s.track("list_goals")()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+goalColumns+`
FROM goals WHERE user_id = ? ORDER BY order_index, created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.GoalWithMilestones{}
	index := make(map[string]int)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		index[g.ID] = len(goals)
		goals = append(goals, models.GoalWithMilestones{Goal: g, Milestones: []models.GoalMilestone{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := db.QueryContext(ctx, s.rebind(`
SELECT m.id, m.goal_id, m.title, m.description, m.is_completed, m.completed_at, m.order_index, m.created_at
FROM goal_milestones m JOIN goals g ON g.id = m.goal_id
WHERE g.user_id = ? ORDER BY m.order_index, m.created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		m, err := scanMilestone(mrows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[m.GoalID]; ok {
			goals[i].Milestones = append(goals[i].Milestones, m)
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		goals[i] = progress.ProjectGoal(goals[i])
	}
	return goals, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (models.GoalWithMilestones, error) {
	defer s.track("get_goal")()
	db, err := s.conn()
	if err != nil {
		return models.GoalWithMilestones{}, err
	}

	g, err := s.getGoal(ctx, db, id)
	if err != nil {
		return models.GoalWithMilestones{}, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+milestoneColumns+`
FROM goal_milestones WHERE goal_id = ? ORDER BY order_index, created_at`), id)
	if err != nil {
		return models.GoalWithMilestones{}, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	out := models.GoalWithMilestones{Goal: g, Milestones: []models.GoalMilestone{}}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return models.GoalWithMilestones{}, err
		}
		out.Milestones = append(out.Milestones, m)
	}
	if err := rows.Err(); err != nil {
		return models.GoalWithMilestones{}, err
	}
	return progress.ProjectGoal(out), nil
}

func (s *Store) getGoal(ctx context.Context, q querier, id string) (models.Goal, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT `+goalColumns+`
FROM goals WHERE id = ? AND user_id = ?`), id, s.userID)
	g, err := scanGoal(row)
	if err != nil {
		return models.Goal{}, notFound(err, "goal", id)
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, in models.CreateGoalInput) (models.Goal, error) {
	defer s.track("create_goal")()

	var g models.Goal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		order, err := s.nextOrder(ctx, tx, "goals", "user_id", s.userID)
		if err != nil {
			return err
		}
		g = models.NewGoal(s.newID(), s.userID, in, s.now())
		g.OrderIndex = order
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO goals (`+goalColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			g.ID, g.UserID, g.Title, nullString(g.Description), nullString(g.TargetDate),
			formatTime(g.StartedAt), formatTimePtr(g.CompletedAt), string(g.Status), g.Color, g.Icon,
			string(g.Category), g.OrderIndex, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
		return err
	})
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, id string, patch models.UpdateGoalInput) (models.Goal, error) {
	defer s.track("update_goal")()

	var g models.Goal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getGoal(ctx, tx, id)
		if err != nil {
			return err
		}
		g = models.ApplyGoalPatch(current, patch, s.now())
		return s.execOne(ctx, tx, "goal", id, `
UPDATE goals SET title = ?, description = ?, target_date = ?, completed_at = ?, status = ?,
       color = ?, icon = ?, category = ?, order_index = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
			g.Title, nullString(g.Description), nullString(g.TargetDate), formatTimePtr(g.CompletedAt),
			string(g.Status), g.Color, g.Icon, string(g.Category), g.OrderIndex, formatTime(g.UpdatedAt),
			id, s.userID)
	})
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to update goal: %w", err)
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	defer s.track("delete_goal")()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getGoal(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM goal_milestones WHERE goal_id = ?"), id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, "goal", id, "DELETE FROM goals WHERE id = ? AND user_id = ?", id, s.userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (s *Store) CreateMilestone(ctx context.Context, goalID string, in models.CreateMilestoneInput) (models.GoalMilestone, error) {
	defer s.track("create_milestone")()

	var m models.GoalMilestone
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getGoal(ctx, tx, goalID); err != nil {
			return err
		}
		order, err := s.nextOrder(ctx, tx, "goal_milestones", "goal_id", goalID)
		if err != nil {
			return err
		}
		m = models.NewMilestone(s.newID(), goalID, in, order, s.now())
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO goal_milestones (`+milestoneColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			m.ID, m.GoalID, m.Title, nullString(m.Description), m.IsCompleted,
			formatTimePtr(m.CompletedAt), m.OrderIndex, formatTime(m.CreatedAt))
		return err
	})
	if err != nil {
		return models.GoalMilestone{}, fmt.Errorf("failed to create milestone: %w", err)
	}
	return m, nil
}

func (s *Store) getMilestone(ctx context.Context, q querier, id string) (models.GoalMilestone, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT m.id, m.goal_id, m.title, m.description, m.is_completed, m.completed_at, m.order_index, m.created_at
FROM goal_milestones m JOIN goals g ON g.id = m.goal_id
WHERE m.id = ? AND g.user_id = ?`), id, s.userID)
	m, err := scanMilestone(row)
	if err != nil {
		return models.GoalMilestone{}, notFound(err, "milestone", id)
	}
	return m, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, id string, patch models.UpdateMilestoneInput) (models.GoalMilestone, error) {
	defer s.track("update_milestone")()

	var m models.GoalMilestone
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getMilestone(ctx, tx, id)
		if err != nil {
			return err
		}
		m = models.ApplyMilestonePatch(current, patch, s.now())
		return s.execOne(ctx, tx, "milestone", id, `
UPDATE goal_milestones SET title = ?, description = ?, is_completed = ?, completed_at = ?
WHERE id = ?`,
			m.Title, nullString(m.Description), m.IsCompleted, formatTimePtr(m.CompletedAt), id)
	})
	if err != nil {
		return models.GoalMilestone{}, fmt.Errorf("failed to update milestone: %w", err)
	}
	return m, nil
}

func (s *Store) DeleteMilestone(ctx context.Context, id string) error {
	defer s.track("delete_milestone")()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getMilestone(ctx, tx, id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, "milestone", id, "DELETE FROM goal_milestones WHERE id = ?", id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	return nil
}
