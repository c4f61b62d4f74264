package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskRepository
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskRepository,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID, status string) ([]*models.Task, error) {
	var filter storage.TaskFilter
	switch status {
	case models.StatusPending:
		completed := false
		filter.Completed = &completed
	case models.StatusCompleted:
		completed := true
		filter.Completed = &completed
	}

	tasks, err := s.tasks.ForOwner(userID).List(ctx, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select tasks by user id")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Str("status", status).
		Msg("selected tasks by user id")

	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.ForOwner(userID).Get(ctx, taskID)
	if err != nil {
		return nil, s.ownedTaskError(err, userID, taskID, "failed to select task")
	}
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	params.Title = strings.TrimSpace(params.Title)
	err := validateParams(params)
	if err != nil {
		return nil, err
	}
	if params.DueDate.IsZero() {
		return nil, newValidationError("please provide dueDate")
	}
	if params.Priority == "" {
		params.Priority = models.PriorityMedium
	}

	now := time.Now()
	task := &models.Task{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		DueTime:     params.DueTime,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	err = s.tasks.ForOwner(params.UserID).Create(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		params.Title = &title
	}

	// An empty dueTime clears it, so only a non-empty one must parse.
	checked := params
	if checked.DueTime != nil && *checked.DueTime == "" {
		checked.DueTime = nil
	}
	err := validateParams(checked)
	if err != nil {
		return nil, err
	}
	if params.DueDate != nil && params.DueDate.IsZero() {
		return nil, newValidationError("dueDate must not be empty")
	}

	task, err := s.tasks.ForOwner(params.UserID).Update(ctx, params.ID, storage.TaskPatch{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		DueTime:     params.DueTime,
		Completed:   params.Completed,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return nil, s.ownedTaskError(err, params.UserID, params.ID, "failed to update task")
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	err := s.tasks.ForOwner(userID).Delete(ctx, taskID)
	if err != nil {
		return s.ownedTaskError(err, userID, taskID, "failed to delete task")
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ownedTaskError(err error, userID, taskID, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Error().
		Err(err).
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg(msg)
	return err
}
