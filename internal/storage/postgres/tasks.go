package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/storage"
)

const taskColumns = `id,
       user_id,
       title,
       description,
       priority,
       due_date,
       due_time,
       completed,
       created_at,
       updated_at`

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ForOwner(userID string) storage.ScopedTasks {
	return &scopedTasks{db: r.db, owner: userID}
}

// scopedTasks binds every statement to the owner: user_id is always the
// first query argument.
type scopedTasks struct {
	db    DBTX
	owner string
}

func (t *scopedTasks) Create(ctx context.Context, task *models.Task) error {
	task.UserID = t.owner

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   id,
                   title,
                   description,
                   priority,
                   due_date,
                   due_time,
                   completed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := t.db.Exec(
		ctx,
		insertTaskQuery,
		t.owner,
		task.ID,
		task.Title,
		task.Description,
		string(task.Priority),
		task.DueDate.Time,
		task.DueTime,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (t *scopedTasks) List(ctx context.Context, filter storage.TaskFilter) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id = $1 AND
      ($2::boolean IS NULL OR completed = $2)
ORDER BY created_at DESC, id DESC
`
	rows, err := t.db.Query(
		ctx,
		selectTasksQuery,
		t.owner,
		filter.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tasks, nil
}

func (t *scopedTasks) Get(ctx context.Context, id string) (*models.Task, error) {
	const selectTaskQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id = $1 AND id = $2
`
	task, err := scanTask(t.db.QueryRow(ctx, selectTaskQuery, t.owner, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return task, nil
}

func (t *scopedTasks) Update(ctx context.Context, id string, patch storage.TaskPatch) (*models.Task, error) {
	var priority *string
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}
	var dueDate *time.Time
	if patch.DueDate != nil {
		d := patch.DueDate.Time
		dueDate = &d
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE($3, title),
    description = COALESCE($4, description),
    priority = COALESCE($5, priority),
    due_date = COALESCE($6, due_date),
    due_time = COALESCE($7, due_time),
    completed = COALESCE($8, completed),
    updated_at = $9
WHERE user_id = $1 AND id = $2
RETURNING ` + taskColumns + `
`
	task, err := scanTask(t.db.QueryRow(
		ctx,
		updateTaskQuery,
		t.owner,
		id,
		patch.Title,
		patch.Description,
		priority,
		dueDate,
		patch.DueTime,
		patch.Completed,
		patch.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (t *scopedTasks) Delete(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE user_id = $1 AND id = $2
`
	tag, err := t.db.Exec(ctx, deleteTaskQuery, t.owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task     models.Task
		priority string
		dueDate  time.Time
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&priority,
		&dueDate,
		&task.DueTime,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Priority = models.Priority(priority)
	task.DueDate = models.DateOf(dueDate)
	return &task, nil
}
