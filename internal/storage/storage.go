// Package storage declares the persistence contracts used by the services.
//
// Every task read or write goes through a ScopedTasks value obtained from
// TaskRepository.ForOwner. The scope carries the ownership predicate, so a
// task owned by somebody else behaves exactly like a missing one.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/task-manager/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	// Create inserts the user. It returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type TaskRepository interface {
	ForOwner(userID string) ScopedTasks
}

// ScopedTasks is a view of the task collection restricted to one owner.
type ScopedTasks interface {
	// Create stores the task with its owner forced to the scope owner.
	Create(ctx context.Context, task *models.Task) error

	// List returns the owner's tasks, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)

	Get(ctx context.Context, id string) (*models.Task, error)

	// Update applies the non-nil fields of patch and returns the result.
	Update(ctx context.Context, id string, patch TaskPatch) (*models.Task, error)

	Delete(ctx context.Context, id string) error
}

type TaskFilter struct {
	// Completed restricts the result to tasks with the given flag when set.
	Completed *bool
}

type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *models.Priority
	DueDate     *models.Date
	DueTime     *string
	Completed   *bool
	UpdatedAt   time.Time
}

func (p TaskPatch) Apply(task *models.Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.DueDate != nil {
		task.DueDate = *p.DueDate
	}
	if p.DueTime != nil {
		task.DueTime = *p.DueTime
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if !p.UpdatedAt.IsZero() {
		task.UpdatedAt = p.UpdatedAt
	}
}
