// Package workspace keeps the client's copy of the task list in step with
// the server and reports every outcome through a notifier.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/adanyl0v/task-manager/internal/client/api"
	"github.com/adanyl0v/task-manager/internal/client/notify"
	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/view"
)

var (
	ErrTaskNotFound = errors.New("no task matches that id")
	ErrAmbiguousID  = errors.New("id prefix matches more than one task")
)

// TaskAPI is implemented by *api.Client.
type TaskAPI interface {
	ListTasks(ctx context.Context, status string) ([]*models.Task, error)
	CreateTask(ctx context.Context, input api.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch api.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// SessionObserver is implemented by *session.Manager.
type SessionObserver interface {
	Observe(err error) bool
}

type Workspace struct {
	mu       sync.Mutex
	api      TaskAPI
	session  SessionObserver
	notifier notify.Notifier
	tasks    []*models.Task
	now      func() time.Time
}

func New(taskAPI TaskAPI, session SessionObserver, notifier notify.Notifier) *Workspace {
	return &Workspace{
		api:      taskAPI,
		session:  session,
		notifier: notifier,
		now:      time.Now,
	}
}

// fail ends the session on a rejected token before telling the user.
func (w *Workspace) fail(action string, err error) error {
	w.session.Observe(err)
	w.notifier.Notify(notify.Failure(action, err))
	return err
}

// Refresh replaces the local copy with every task the server holds.
func (w *Workspace) Refresh(ctx context.Context) error {
	tasks, err := w.api.ListTasks(ctx, "")
	if err != nil {
		return w.fail("fetch tasks", err)
	}

	w.mu.Lock()
	w.tasks = tasks
	w.mu.Unlock()
	return nil
}

func (w *Workspace) Add(ctx context.Context, input api.TaskInput) (*models.Task, error) {
	task, err := w.api.CreateTask(ctx, input)
	if err != nil {
		return nil, w.fail("create task", err)
	}

	w.mu.Lock()
	w.tasks = slices.Insert(w.tasks, 0, task)
	w.mu.Unlock()

	w.notifier.Notify(notify.Success("Task created successfully!"))
	return task, nil
}

func (w *Workspace) Edit(ctx context.Context, id string, patch api.TaskPatch) (*models.Task, error) {
	task, err := w.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, w.fail("update task", err)
	}
	w.replace(task)

	w.notifier.Notify(notify.Success("Task updated successfully!"))
	return task, nil
}

// Toggle flips the completion flag of a task in the local copy.
func (w *Workspace) Toggle(ctx context.Context, id string) (*models.Task, error) {
	w.mu.Lock()
	idx := w.indexOf(id)
	var completed bool
	if idx >= 0 {
		completed = !w.tasks[idx].Completed
	}
	w.mu.Unlock()
	if idx < 0 {
		return nil, ErrTaskNotFound
	}

	task, err := w.api.UpdateTask(ctx, id, api.TaskPatch{Completed: &completed})
	if err != nil {
		return nil, w.fail("update task", err)
	}
	w.replace(task)

	if task.Completed {
		w.notifier.Notify(notify.Success("Task marked as completed! 🎉"))
	} else {
		w.notifier.Notify(notify.Success("Task marked as pending"))
	}
	return task, nil
}

func (w *Workspace) Remove(ctx context.Context, id string) error {
	err := w.api.DeleteTask(ctx, id)
	if err != nil {
		return w.fail("delete task", err)
	}

	w.mu.Lock()
	w.tasks = slices.DeleteFunc(w.tasks, func(t *models.Task) bool { return t.ID == id })
	w.mu.Unlock()

	w.notifier.Notify(notify.Success("Task deleted successfully"))
	return nil
}

// Resolve expands a full id or a unique id prefix to the task's id.
func (w *Workspace) Resolve(idOrPrefix string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", ErrTaskNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var match string
	for _, task := range w.tasks {
		if task.ID == idOrPrefix {
			return task.ID, nil
		}
		if strings.HasPrefix(task.ID, idOrPrefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousID, idOrPrefix)
			}
			match = task.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, idOrPrefix)
	}
	return match, nil
}

// Tasks returns a copy of the local task list in server order.
func (w *Workspace) Tasks() []*models.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.tasks)
}

func (w *Workspace) View(q view.Query) []*models.Task {
	return view.Apply(w.Tasks(), q)
}

func (w *Workspace) Stats() view.Stats {
	return view.Summarize(w.Tasks(), w.now())
}

func (w *Workspace) replace(task *models.Task) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx := w.indexOf(task.ID); idx >= 0 {
		w.tasks[idx] = task
	}
}

// indexOf must be called with mu held.
func (w *Workspace) indexOf(id string) int {
	return slices.IndexFunc(w.tasks, func(t *models.Task) bool { return t.ID == id })
}
