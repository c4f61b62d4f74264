package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/adanyl0v/task-manager/internal/models"
)

var ErrNoSession = errors.New("no session")

// Store persists the session between client runs.
type Store interface {
	// Get returns ErrNoSession when nothing is stored.
	Get() (*models.Session, error)
	Set(s *models.Session) error
	Clear() error
}

// DefaultSessionPath returns ~/.config/taskctl/session.yaml or the
// platform equivalent.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "taskctl", "session.yaml"), nil
}

// FileStore keeps the session in a YAML file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get() (*models.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s models.Session
	err = yaml.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", f.path, err)
	}
	if !s.Valid() {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (f *FileStore) Set(s *models.Session) error {
	err := os.MkdirAll(filepath.Dir(f.path), 0o700)
	if err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	err = os.WriteFile(f.path, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

type MemoryStore struct {
	mu      sync.Mutex
	session *models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryStore) Set(s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.session = &c
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
