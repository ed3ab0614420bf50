package board

import (
	"context"
	"errors"
	"sync"

	"scrumboard/internal/apperr"
	"scrumboard/internal/client"
	"scrumboard/internal/models"
)

// memStore is an in-memory stand-in for the three store collections.
type memStore struct {
	mu     sync.Mutex
	users  []models.User
	scrums []models.Scrum
	tasks  []models.Task
	nextID int64

	failTaskCreate error
	failDelete     error
	ignoreFilters  bool
	taskQueries    []client.TaskQuery
	userQueries    []client.UserQuery
	patchCalls     int
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memUsers struct{ *memStore }
type memScrums struct{ *memStore }
type memTasks struct{ *memStore }

func (m memUsers) List(_ context.Context, q client.UserQuery) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userQueries = append(m.userQueries, q)
	var out []models.User
	for _, u := range m.users {
		if q.Email != "" && u.Email != q.Email {
			continue
		}
		if q.Password != "" && u.Password != q.Password {
			continue
		}
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if q.ExcludeRole != "" && u.Role == q.ExcludeRole {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = models.UserID(m.id())
	m.users = append(m.users, u)
	return u, nil
}

func (m memScrums) List(context.Context) ([]models.Scrum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Scrum(nil), m.scrums...), nil
}

func (m memScrums) Get(_ context.Context, id int64) (models.Scrum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.scrums {
		if sc.ID == id {
			return sc, nil
		}
	}
	return models.Scrum{}, apperr.ErrNotFound
}

func (m memScrums) Create(_ context.Context, sc models.Scrum) (models.Scrum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc.ID = m.id()
	m.scrums = append(m.scrums, sc)
	return sc, nil
}

func (m memScrums) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	for i, sc := range m.scrums {
		if sc.ID == id {
			m.scrums = append(m.scrums[:i], m.scrums[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m memTasks) List(_ context.Context, q client.TaskQuery) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskQueries = append(m.taskQueries, q)
	var out []models.Task
	for _, t := range m.tasks {
		if !m.ignoreFilters {
			if q.ScrumID != nil && t.ScrumID != *q.ScrumID {
				continue
			}
			if q.AssignedTo != nil && t.AssignedTo != *q.AssignedTo {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (m memTasks) Get(_ context.Context, id int64) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, apperr.ErrNotFound
}

func (m memTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTaskCreate != nil {
		return models.Task{}, m.failTaskCreate
	}
	t.ID = m.id()
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m memTasks) Patch(_ context.Context, t models.Task, expected int) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patchCalls++
	for i, cur := range m.tasks {
		if cur.ID != t.ID {
			continue
		}
		if expected >= 0 && len(cur.History) != expected {
			return models.Task{}, apperr.ErrConflict
		}
		// The store normalises titles; callers must show what it returns.
		t.Title = "[stored] " + t.Title
		m.tasks[i] = t
		return t, nil
	}
	return models.Task{}, errors.New("missing task")
}
