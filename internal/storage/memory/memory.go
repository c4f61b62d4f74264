// Package memory keeps users and tasks in process memory. It backs local
// runs with STORAGE_DRIVER=memory and the tests of the upper layers.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/storage"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	tasks   map[string]models.Task
}

func New() *Store {
	return &Store{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		tasks:   make(map[string]models.Task),
	}
}

func (s *Store) Users() storage.UserRepository {
	return userRepository{s: s}
}

func (s *Store) Tasks() storage.TaskRepository {
	return taskRepository{s: s}
}

type userRepository struct {
	s *Store
}

func (r userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.byEmail[user.Email]; exists {
		return storage.ErrDuplicate
	}
	if _, exists := r.s.users[user.ID]; exists {
		return storage.ErrDuplicate
	}
	r.s.users[user.ID] = *user
	r.s.byEmail[user.Email] = user.ID
	return nil
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &user, nil
}

type taskRepository struct {
	s *Store
}

func (r taskRepository) ForOwner(userID string) storage.ScopedTasks {
	return scopedTasks{s: r.s, owner: userID}
}

type scopedTasks struct {
	s     *Store
	owner string
}

// owned looks up a task visible to the scope. Callers hold the lock.
func (t scopedTasks) owned(id string) (models.Task, bool) {
	task, ok := t.s.tasks[id]
	if !ok || task.UserID != t.owner {
		return models.Task{}, false
	}
	return task, true
}

func (t scopedTasks) Create(_ context.Context, task *models.Task) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, exists := t.s.tasks[task.ID]; exists {
		return storage.ErrDuplicate
	}
	task.UserID = t.owner
	t.s.tasks[task.ID] = *task
	return nil
}

func (t scopedTasks) List(_ context.Context, filter storage.TaskFilter) ([]*models.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, task := range t.s.tasks {
		if task.UserID != t.owner {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		task := task
		tasks = append(tasks, &task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (t scopedTasks) Get(_ context.Context, id string) (*models.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	task, ok := t.owned(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &task, nil
}

func (t scopedTasks) Update(_ context.Context, id string, patch storage.TaskPatch) (*models.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	task, ok := t.owned(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	patch.Apply(&task)
	t.s.tasks[id] = task
	return &task, nil
}

func (t scopedTasks) Delete(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.owned(id); !ok {
		return storage.ErrNotFound
	}
	delete(t.s.tasks, id)
	return nil
}
