package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/storage"
)

const projectColumns = `id, user_id, name, description, status, goal_id, color, icon, url, repository_url,
       started_at, completed_at, order_index, created_at, updated_at`

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	var description, goalID, url, repoURL, startedAt, completedAt sql.NullString
	var status, createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &description, &status, &goalID, &p.Color, &p.Icon, &url, &repoURL,
		&startedAt, &completedAt, &p.OrderIndex, &createdAt, &updatedAt)
	if err != nil {
		return models.Project{}, err
	}

	p.Description = stringPtr(description)
	p.GoalID = stringPtr(goalID)
	p.URL = stringPtr(url)
	p.RepositoryURL = stringPtr(repoURL)
	p.Status = models.ProjectStatus(status)
	if p.StartedAt, err = parseTimePtr("started_at", startedAt); err != nil {
		return models.Project{}, err
	}
	if p.CompletedAt, err = parseTimePtr("completed_at", completedAt); err != nil {
		return models.Project{}, err
	}
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Project{}, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	defer s.track("list_projects")()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(`
SELECT `+projectColumns+`
FROM projects WHERE user_id = ? ORDER BY order_index, created_at`), s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	items := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	defer s.track("get_project")()
	db, err := s.conn()
	if err != nil {
		return models.Project{}, err
	}
	return s.getProject(ctx, db, id)
}

func (s *Store) getProject(ctx context.Context, q querier, id string) (models.Project, error) {
	row := q.QueryRowContext(ctx, s.rebind(`
SELECT `+projectColumns+`
FROM projects WHERE id = ? AND user_id = ?`), id, s.userID)
	p, err := scanProject(row)
	if err != nil {
		return models.Project{}, notFound(err, "project", id)
	}
	return p, nil
}

// checkGoal makes a dangling goal reference a not-found error rather than a
// constraint failure.
func (s *Store) checkGoal(ctx context.Context, q querier, goalID *string) error {
	if goalID == nil {
		return nil
	}
	var n int
	err := q.QueryRowContext(ctx, s.rebind("SELECT count(*) FROM goals WHERE id = ? AND user_id = ?"), *goalID, s.userID).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.NotFound("goal", *goalID)
	}
	return nil
}

func (s *Store) CreateProject(ctx context.Context, in models.CreateProjectInput) (models.Project, error) {
	defer s.track("create_project")()

	var p models.Project
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkGoal(ctx, tx, in.GoalID); err != nil {
			return err
		}
		order, err := s.nextOrder(ctx, tx, "projects", "user_id", s.userID)
		if err != nil {
			return err
		}
		p = models.NewProject(s.newID(), s.userID, in, s.now())
		p.OrderIndex = order
		_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO projects (`+projectColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, p.UserID, p.Name, nullString(p.Description), string(p.Status), nullString(p.GoalID), p.Color, p.Icon,
			nullString(p.URL), nullString(p.RepositoryURL), formatTimePtr(p.StartedAt), formatTimePtr(p.CompletedAt),
			p.OrderIndex, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
		return err
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, patch models.UpdateProjectInput) (models.Project, error) {
	defer s.track("update_project")()

	var p models.Project
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getProject(ctx, tx, id)
		if err != nil {
			return err
		}
		p = models.ApplyProjectPatch(current, patch, s.now())
		if err := s.checkGoal(ctx, tx, p.GoalID); err != nil {
			return err
		}
		return s.execOne(ctx, tx, "project", id, `
UPDATE projects SET name = ?, description = ?, status = ?, goal_id = ?, color = ?, icon = ?, url = ?,
       repository_url = ?, started_at = ?, completed_at = ?, order_index = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
			p.Name, nullString(p.Description), string(p.Status), nullString(p.GoalID), p.Color, p.Icon, nullString(p.URL),
			nullString(p.RepositoryURL), formatTimePtr(p.StartedAt), formatTimePtr(p.CompletedAt), p.OrderIndex,
			formatTime(p.UpdatedAt), id, s.userID)
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	defer s.track("delete_project")()
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := s.execOne(ctx, db, "project", id, "DELETE FROM projects WHERE id = ? AND user_id = ?", id, s.userID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
