package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"scrumboard/internal/apperr"
	"scrumboard/internal/models"
)

// TaskFilter restricts ListTasks. Nil fields match all.
type TaskFilter struct {
	ScrumID    *int64
	AssignedTo *models.UserID
}

// TaskPatch holds the fields a partial update replaces.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.Status
	ScrumID     *int64
	AssignedTo  *models.UserID
	History     []models.HistoryEntry
}

// AnyHistoryLen disables the history length precondition of PatchTask.
const AnyHistoryLen = -1

const taskColumns = `id, scrum_id, title, description, status, assigned_to, history`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t       models.Task
		history string
	)
	if err := row.Scan(&t.ID, &t.ScrumID, &t.Title, &t.Description, &t.Status, &t.AssignedTo, &history); err != nil {
		return models.Task{}, err
	}
	if err := json.Unmarshal([]byte(history), &t.History); err != nil {
		return models.Task{}, fmt.Errorf("decode history of task %d: %w", t.ID, err)
	}
	return t, nil
}

// ListTasks returns tasks matching the filter ordered by id.
func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	var (
		where []string
		args  []any
	)
	if f.ScrumID != nil {
		where = append(where, "scrum_id = ?")
		args = append(args, *f.ScrumID)
	}
	if f.AssignedTo != nil {
		where = append(where, "assigned_to = ?")
		args = append(args, int64(*f.AssignedTo))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return getTask(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTask(ctx context.Context, q querier, id int64) (models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, notFound("task", id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func validateTask(t models.Task) error {
	ve := apperr.NewValidationError()
	if strings.TrimSpace(t.Title) == "" {
		ve.Set("title", "task title must not be empty")
	}
	if strings.TrimSpace(string(t.Status)) == "" {
		ve.Set("status", "task status must not be empty")
	}
	if t.ScrumID <= 0 {
		ve.Set("scrumId", "scrumId is required")
	}
	if t.AssignedTo <= 0 {
		ve.Set("assignedTo", "assignedTo is required")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// CreateTask inserts a new task. A task sent without history gets the
// creation entry dated today.
func (s *Store) CreateTask(ctx context.Context, t models.Task, today models.Date) (models.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if err := validateTask(t); err != nil {
		return models.Task{}, err
	}
	if len(t.History) == 0 {
		t.History = []models.HistoryEntry{{Status: t.Status, Date: today}}
	}

	history, err := json.Marshal(t.History)
	if err != nil {
		return models.Task{}, fmt.Errorf("encode history: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(scrum_id, title, description, status, assigned_to, history) VALUES(?, ?, ?, ?, ?, ?)`,
		t.ScrumID, t.Title, t.Description, string(t.Status), int64(t.AssignedTo), string(history))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// PatchTask replaces the fields set in p. When expectedHistoryLen is not
// AnyHistoryLen the update only applies if the stored history still has
// that many entries; otherwise apperr.ErrConflict is returned.
func (s *Store) PatchTask(ctx context.Context, id int64, p TaskPatch, expectedHistoryLen int) (models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getTask(ctx, tx, id)
	if err != nil {
		return models.Task{}, err
	}
	if expectedHistoryLen != AnyHistoryLen && len(current.History) != expectedHistoryLen {
		return models.Task{}, fmt.Errorf("task %d has %d history entries, expected %d: %w",
			id, len(current.History), expectedHistoryLen, apperr.ErrConflict)
	}

	next := current
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.ScrumID != nil {
		next.ScrumID = *p.ScrumID
	}
	if p.AssignedTo != nil {
		next.AssignedTo = *p.AssignedTo
	}
	if p.History != nil {
		if len(p.History) == 0 {
			ve := apperr.NewValidationError()
			ve.Set("history", "history must keep at least one entry")
			return models.Task{}, ve
		}
		next.History = p.History
	}
	if err := validateTask(next); err != nil {
		return models.Task{}, err
	}

	history, err := json.Marshal(next.History)
	if err != nil {
		return models.Task{}, fmt.Errorf("encode history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE tasks SET scrum_id = ?, title = ?, description = ?, status = ?, assigned_to = ?, history = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		next.ScrumID, next.Title, next.Description, string(next.Status), int64(next.AssignedTo), string(history), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}

	updated, err := getTask(ctx, tx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}
