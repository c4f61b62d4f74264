package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/task-manager/internal/auth"
	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/storage/memory"
)

type fixture struct {
	auth  AuthService
	tasks TaskService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	logger := zerolog.Nop()
	return fixture{
		auth: NewAuthService(
			logger,
			store.Users(),
			auth.NewBcryptHasher(bcrypt.MinCost),
			auth.NewTokenIssuer("test", []byte("test-key"), time.Hour),
		),
		tasks: NewTaskService(logger, store.Tasks()),
	}
}

func (f fixture) signup(t *testing.T, name, email string) *models.User {
	t.Helper()
	res, err := f.auth.Signup(context.Background(), SignupParams{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res.User
}

func (f fixture) create(t *testing.T, userID, title string) *models.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), CreateTaskParams{
		UserID:  userID,
		Title:   title,
		DueDate: models.NewDate(2025, time.January, 10),
	})
	require.NoError(t, err)
	return task
}

func TestSignup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Signup(ctx, SignupParams{Name: "Ana", Email: " Ana@X.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana@x.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.Password)

	_, err = f.auth.Signup(ctx, SignupParams{Name: "Ana 2", Email: "ana@x.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name    string
		params  SignupParams
		message string
	}{
		{name: "missing name", params: SignupParams{Email: "a@x.com", Password: "secret1"}, message: "please provide name"},
		{name: "missing email", params: SignupParams{Name: "A", Password: "secret1"}, message: "please provide email"},
		{name: "bad email", params: SignupParams{Name: "A", Email: "nope", Password: "secret1"}, message: "email must be a valid email address"},
		{name: "short password", params: SignupParams{Name: "A", Email: "a@x.com", Password: "12345"}, message: "password must be at least 6 characters"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Signup(context.Background(), tc.params)
			require.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tc.message)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "Ana", "ana@x.com")

	res, err := f.auth.Login(ctx, LoginParams{Email: "ANA@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)

	_, wrongPassword := f.auth.Login(ctx, LoginParams{Email: "ana@x.com", Password: "wrong-one"})
	_, unknownUser := f.auth.Login(ctx, LoginParams{Email: "bob@x.com", Password: "secret1"})
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())

	_, err = f.auth.Login(ctx, LoginParams{Email: "ana@x.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Signup(ctx, SignupParams{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)

	_, err = f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = f.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, _, err := auth.NewTokenIssuer("test", []byte("test-key"), time.Hour).Issue("ghost")
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestCreateTask_Defaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.signup(t, "Ana", "ana@x.com")

	task := f.create(t, user.ID, "Read Ch.3")
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, user.ID, task.UserID)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	due := models.NewDate(2025, time.January, 10)

	tests := []struct {
		name   string
		params CreateTaskParams
	}{
		{name: "missing title", params: CreateTaskParams{UserID: "u1", DueDate: due}},
		{name: "blank title", params: CreateTaskParams{UserID: "u1", Title: "   ", DueDate: due}},
		{name: "missing due date", params: CreateTaskParams{UserID: "u1", Title: "x"}},
		{name: "bad priority", params: CreateTaskParams{UserID: "u1", Title: "x", DueDate: due, Priority: "urgent"}},
		{name: "bad due time", params: CreateTaskParams{UserID: "u1", Title: "x", DueDate: due, DueTime: "25:99"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tasks.CreateTask(ctx, tc.params)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateTask_OwnerIsImmutable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signup(t, "Ana", "ana@x.com")
	task := f.create(t, ana.ID, "Read Ch.3")

	title := "Read Ch.4"
	high := models.PriorityHigh
	done := true
	updated, err := f.tasks.UpdateTask(ctx, UpdateTaskParams{
		ID:        task.ID,
		UserID:    ana.ID,
		Title:     &title,
		Priority:  &high,
		Completed: &done,
	})
	require.NoError(t, err)
	assert.Equal(t, "Read Ch.4", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)
	assert.Equal(t, ana.ID, updated.UserID)
	assert.Equal(t, task.ID, updated.ID)
	assert.True(t, task.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, task.DueDate, updated.DueDate)

	empty := ""
	_, err = f.tasks.UpdateTask(ctx, UpdateTaskParams{ID: task.ID, UserID: ana.ID, Title: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTasks_CrossUserIsolation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signup(t, "Ana", "ana@x.com")
	bob := f.signup(t, "Bob", "bob@x.com")
	anaTask := f.create(t, ana.ID, "ana's task")
	f.create(t, bob.ID, "bob's task")

	list, err := f.tasks.ListTasks(ctx, bob.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bob.ID, list[0].UserID)

	_, err = f.tasks.GetTask(ctx, bob.ID, anaTask.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	title := "hijacked"
	_, err = f.tasks.UpdateTask(ctx, UpdateTaskParams{ID: anaTask.ID, UserID: bob.ID, Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = f.tasks.DeleteTask(ctx, bob.ID, anaTask.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	got, err := f.tasks.GetTask(ctx, ana.ID, anaTask.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana's task", got.Title)
}

func TestListTasks_StatusFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signup(t, "Ana", "ana@x.com")
	first := f.create(t, ana.ID, "first")
	second := f.create(t, ana.ID, "second")

	done := true
	_, err := f.tasks.UpdateTask(ctx, UpdateTaskParams{ID: first.ID, UserID: ana.ID, Completed: &done})
	require.NoError(t, err)

	pending, err := f.tasks.ListTasks(ctx, ana.ID, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	completed, err := f.tasks.ListTasks(ctx, ana.ID, models.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)

	all, err := f.tasks.ListTasks(ctx, ana.ID, "whatever")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signup(t, "Ana", "ana@x.com")
	task := f.create(t, ana.ID, "temporary")

	require.NoError(t, f.tasks.DeleteTask(ctx, ana.ID, task.ID))

	_, err := f.tasks.GetTask(ctx, ana.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

type countingHasher struct {
	auth.PasswordHasher
	compares int
}

func (h *countingHasher) Compare(password, hash string) (bool, error) {
	h.compares++
	return h.PasswordHasher.Compare(password, hash)
}

func TestLogin_UnknownEmailStillComparesHash(t *testing.T) {
	t.Parallel()
	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
	svc := NewAuthService(
		zerolog.Nop(),
		memory.New().Users(),
		hasher,
		auth.NewTokenIssuer("test", []byte("test-key"), time.Hour),
	)

	for range 2 {
		_, err := svc.Login(context.Background(), LoginParams{Email: "ghost@x.com", Password: "secret1"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, 2, hasher.compares)
}

func TestUpdateTask_ClearDueTime(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "Ana", "ana@x.com")

	task, err := f.tasks.CreateTask(ctx, CreateTaskParams{
		UserID:  user.ID,
		Title:   "standup",
		DueDate: models.NewDate(2030, 1, 1),
		DueTime: "09:30",
	})
	require.NoError(t, err)
	require.Equal(t, "09:30", task.DueTime)

	empty := ""
	updated, err := f.tasks.UpdateTask(ctx, UpdateTaskParams{ID: task.ID, UserID: user.ID, DueTime: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.DueTime)

	bad := "9 o'clock"
	_, err = f.tasks.UpdateTask(ctx, UpdateTaskParams{ID: task.ID, UserID: user.ID, DueTime: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}
