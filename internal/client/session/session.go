// Package session tracks whether the terminal client is logged in.
//
// A Manager moves between three states. It starts in StateAuthLoading,
// settles on StateAuthenticated or StateUnauthenticated once the stored
// session has been read, and drops back to StateUnauthenticated on logout
// or when the server rejects the token.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager/internal/client/api"
	"github.com/adanyl0v/task-manager/internal/models"
)

type State int

const (
	StateAuthLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Authenticator is implemented by *api.Client.
type Authenticator interface {
	Signup(ctx context.Context, name, email, password string) (*api.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
}

type Manager struct {
	mu      sync.RWMutex
	store   Store
	auth    Authenticator
	logger  zerolog.Logger
	state   State
	current *models.Session
	now     func() time.Time
}

func NewManager(store Store, auth Authenticator, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		logger: logger,
		state:  StateAuthLoading,
		now:    time.Now,
	}
}

// Start loads the stored session. A stored token is trusted until the
// first protected call rejects it.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthLoading

	s, err := m.store.Get()
	if err != nil {
		m.state = StateUnauthenticated
		m.current = nil
		if errors.Is(err, ErrNoSession) {
			m.logger.Debug().Msg("no stored session")
			return nil
		}
		m.logger.Warn().
			Err(err).
			Msg("failed to load stored session")
		return err
	}

	m.current = s
	m.state = StateAuthenticated
	m.logger.Debug().
		Str("user_id", s.User.ID).
		Msg("restored session")
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(res)
}

func (m *Manager) Signup(ctx context.Context, name, email, password string) (*models.Session, error) {
	res, err := m.auth.Signup(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(res)
}

func (m *Manager) establish(res *api.AuthResponse) (*models.Session, error) {
	s := &models.Session{
		Token:     res.Token,
		User:      res.User,
		CreatedAt: m.now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Set(s)
	if err != nil {
		m.logger.Error().
			Err(err).
			Msg("failed to persist session")
		return nil, err
	}
	m.current = s
	m.state = StateAuthenticated
	m.logger.Info().
		Str("user_id", s.User.ID).
		Msg("logged in")
	return s, nil
}

func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear("logged out")
}

// Observe inspects the outcome of a protected call. A rejected token ends
// the session and Observe reports true.
func (m *Manager) Observe(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if clearErr := m.clear("session rejected by server"); clearErr != nil {
		m.logger.Error().
			Err(clearErr).
			Msg("failed to clear rejected session")
	}
	return true
}

func (m *Manager) clear(reason string) error {
	m.current = nil
	m.state = StateUnauthenticated

	err := m.store.Clear()
	if err != nil {
		return err
	}
	m.logger.Info().Msg(reason)
	return nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) User() (models.UserSummary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.UserSummary{}, false
	}
	return m.current.User, true
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}
