package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scrumboard/internal/apperr"
	"scrumboard/internal/models"
)

// ListScrums retrieves all scrums ordered by id.
func (s *Store) ListScrums(ctx context.Context) ([]models.Scrum, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM scrums ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list scrums: %w", err)
	}
	defer rows.Close()

	scrums := []models.Scrum{}
	for rows.Next() {
		var sc models.Scrum
		if err := rows.Scan(&sc.ID, &sc.Name); err != nil {
			return nil, fmt.Errorf("scan scrum: %w", err)
		}
		scrums = append(scrums, sc)
	}
	return scrums, rows.Err()
}

// GetScrum fetches a single scrum by id.
func (s *Store) GetScrum(ctx context.Context, id int64) (models.Scrum, error) {
	var sc models.Scrum
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM scrums WHERE id = ?`, id).Scan(&sc.ID, &sc.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Scrum{}, notFound("scrum", id)
	}
	if err != nil {
		return models.Scrum{}, fmt.Errorf("get scrum: %w", err)
	}
	return sc, nil
}

// CreateScrum persists a new scrum.
func (s *Store) CreateScrum(ctx context.Context, name string) (models.Scrum, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		ve := apperr.NewValidationError()
		ve.Set("name", "scrum name must not be empty")
		return models.Scrum{}, ve
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO scrums(name) VALUES(?)`, name)
	if err != nil {
		return models.Scrum{}, fmt.Errorf("insert scrum: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Scrum{}, fmt.Errorf("scrum id: %w", err)
	}
	return s.GetScrum(ctx, id)
}

// DeleteScrum removes a scrum that no task references.
func (s *Store) DeleteScrum(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var refs int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE scrum_id = ?`, id).Scan(&refs); err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("delete scrum %d: %w", id, ErrScrumHasTasks)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM scrums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scrum: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound("scrum", id)
	}
	return tx.Commit()
}
