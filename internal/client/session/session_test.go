package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/task-manager/internal/client/api"
	"github.com/adanyl0v/task-manager/internal/models"
)

type fakeAuth struct {
	res *api.AuthResponse
	err error
}

func (f *fakeAuth) Signup(context.Context, string, string, string) (*api.AuthResponse, error) {
	return f.res, f.err
}

func (f *fakeAuth) Login(context.Context, string, string) (*api.AuthResponse, error) {
	return f.res, f.err
}

var ana = models.UserSummary{ID: "u1", Name: "Ana", Email: "ana@x.com"}

func TestManager_StartWithoutSession(t *testing.T) {
	m := NewManager(NewMemoryStore(), &fakeAuth{}, zerolog.Nop())
	assert.Equal(t, StateAuthLoading, m.State())

	require.NoError(t, m.Start())
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.Token())
}

func TestManager_StartRestoresStoredSession(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(&models.Session{Token: "tok", User: ana}))

	m := NewManager(store, &fakeAuth{err: errors.New("must not be called")}, zerolog.Nop())
	require.NoError(t, m.Start())

	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "tok", m.Token())
	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, ana, user)
}

func TestManager_LoginAndLogout(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, &fakeAuth{res: &api.AuthResponse{Token: "tok", User: ana}}, zerolog.Nop())
	require.NoError(t, m.Start())

	s, err := m.Login(context.Background(), "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, StateAuthenticated, m.State())

	stored, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, ana, stored.User)

	require.NoError(t, m.Logout())
	assert.Equal(t, StateUnauthenticated, m.State())
	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_FailedLoginKeepsState(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(&models.Session{Token: "old", User: ana}))

	rejected := &api.Error{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	m := NewManager(store, &fakeAuth{err: rejected}, zerolog.Nop())
	require.NoError(t, m.Start())

	_, err := m.Login(context.Background(), "ana@x.com", "nope")
	assert.Same(t, rejected, err)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "old", m.Token())

	conflict := &api.Error{Status: http.StatusConflict, Message: "user with this email already exists"}
	m.auth = &fakeAuth{err: conflict}
	_, err = m.Signup(context.Background(), "Ana", "ana@x.com", "secret1")
	assert.Same(t, conflict, err)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestManager_Observe(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(&models.Session{Token: "tok", User: ana}))
	m := NewManager(store, &fakeAuth{}, zerolog.Nop())
	require.NoError(t, m.Start())

	assert.False(t, m.Observe(nil))
	assert.False(t, m.Observe(&api.Error{Status: http.StatusNotFound, Message: "task not found"}))
	assert.False(t, m.Observe(errors.New("connection refused")))
	assert.Equal(t, StateAuthenticated, m.State())

	assert.True(t, m.Observe(&api.Error{Status: http.StatusUnauthorized, Message: "not authorized, token failed"}))
	assert.Equal(t, StateUnauthenticated, m.State())
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := NewFileStore(path)

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, store.Clear())

	want := &models.Session{
		Token:     "tok",
		User:      ana,
		CreatedAt: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Set(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.User, got.User)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.Clear())
	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	m := NewManager(NewFileStore(path), &fakeAuth{}, zerolog.Nop())
	assert.Error(t, m.Start())
	assert.Equal(t, StateUnauthenticated, m.State())
}
