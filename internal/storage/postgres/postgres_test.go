package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/storage"
)

var taskRowColumns = []string{
	"id", "user_id", "title", "description", "priority",
	"due_date", "due_time", "completed", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()
	user := &models.User{ID: "u1", Name: "Ana", Email: "ana@x.com", Password: "hash", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "Ana", "ana@x.com", "hash", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), user))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "Ana", "ana@x.com", "hash", now, now).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	err := repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("ana@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password", "created_at", "updated_at"}).
			AddRow("u1", "Ana", "ana@x.com", "hash", now, now))
	user, err := repo.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.Password)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password", "created_at", "updated_at"}))
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScopedTasks_CreateForcesOwner(t *testing.T) {
	mock := newMock(t)
	scope := NewTaskRepository(mock).ForOwner("alice")
	now := time.Now()
	task := &models.Task{
		ID:        "t1",
		UserID:    "mallory",
		Title:     "Read Ch.3",
		Priority:  models.PriorityMedium,
		DueDate:   models.NewDate(2025, time.January, 10),
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs("alice", "t1", "Read Ch.3", "", "medium", task.DueDate.Time, "", false, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, scope.Create(context.Background(), task))
	assert.Equal(t, "alice", task.UserID)
}

func TestScopedTasks_List(t *testing.T) {
	mock := newMock(t)
	scope := NewTaskRepository(mock).ForOwner("alice")
	now := time.Now()
	due := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("alice", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow("t2", "alice", "second", "", "high", due, "09:30", false, now, now).
			AddRow("t1", "alice", "first", "notes", "low", due, "", true, now.Add(-time.Hour), now))

	pending := false
	tasks, err := scope.List(context.Background(), storage.TaskFilter{Completed: &pending})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "2025-01-10", tasks[0].DueDate.String())
	assert.Equal(t, "09:30", tasks[0].DueTime)
	assert.True(t, tasks[1].Completed)
}

func TestScopedTasks_GetNotOwned(t *testing.T) {
	mock := newMock(t)
	scope := NewTaskRepository(mock).ForOwner("bob")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND id = $2")).
		WithArgs("bob", "t1").
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	_, err := scope.Get(context.Background(), "t1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScopedTasks_Update(t *testing.T) {
	mock := newMock(t)
	scope := NewTaskRepository(mock).ForOwner("alice")
	now := time.Now()
	due := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	completed := true
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs("alice", "t1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), now).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow("t1", "alice", "first", "", "medium", due, "", true, now.Add(-time.Hour), now))

	task, err := scope.Update(context.Background(), "t1", storage.TaskPatch{Completed: &completed, UpdatedAt: now})
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "alice", task.UserID)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs("alice", "t9", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), now).
		WillReturnRows(pgxmock.NewRows(taskRowColumns))
	_, err = scope.Update(context.Background(), "t9", storage.TaskPatch{Completed: &completed, UpdatedAt: now})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScopedTasks_Delete(t *testing.T) {
	mock := newMock(t)
	scope := NewTaskRepository(mock).ForOwner("alice")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs("alice", "t1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, scope.Delete(context.Background(), "t1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs("alice", "t1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, scope.Delete(context.Background(), "t1"), storage.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs("alice", "t2").
		WillReturnError(errors.New("connection reset"))
	err := scope.Delete(context.Background(), "t2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}
