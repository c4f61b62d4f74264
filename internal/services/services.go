package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/task-manager/internal/models"
)

const minPasswordLength = 6

type AuthService interface {
	// Signup registers a user and issues a token for them.
	//
	// It returns a validation error if the name, email or password is
	// missing or malformed and ErrUserAlreadyExists if the email is taken.
	Signup(ctx context.Context, params SignupParams) (*AuthResult, error)

	// Login checks the credentials and issues a fresh token.
	//
	// Both an unknown email and a wrong password produce
	// ErrInvalidCredentials.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// Authenticate resolves a token to its user. It returns ErrMissingToken
	// or ErrInvalidToken when the token cannot be trusted.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type TaskService interface {
	// ListTasks returns the user's tasks, newest first. The status may be
	// models.StatusPending or models.StatusCompleted; anything else means all.
	ListTasks(ctx context.Context, userID, status string) ([]*models.Task, error)

	// GetTask returns ErrTaskNotFound unless the task exists and belongs
	// to the user.
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask applies the fields present in params. The id, owner and
	// creation time of a task never change.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	DeleteTask(ctx context.Context, userID, taskID string) error
}

// TokenIssuer is implemented by auth.TokenIssuer.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Parse(token string) (*jwt.RegisteredClaims, error)
}

type SignupParams struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=255"`
}

type LoginParams struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type CreateTaskParams struct {
	UserID      string          `json:"-"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     models.Date     `json:"-"`
	DueTime     string          `json:"dueTime" validate:"omitempty,datetime=15:04"`
}

type UpdateTaskParams struct {
	ID          string           `json:"-"`
	UserID      string           `json:"-"`
	Title       *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Priority    *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *models.Date     `json:"-"`
	DueTime     *string          `json:"dueTime" validate:"omitempty,datetime=15:04"`
	Completed   *bool            `json:"completed"`
}
