// Package notify surfaces the outcome of user actions.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/task-manager/internal/client/api"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

const SessionExpiredMessage = "Session expired. Please login again."

type Notification struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

func Success(message string) Notification {
	return Notification{Level: LevelSuccess, Message: message}
}

// Failure classifies err for the user. Rejected tokens ask for a new login,
// validation and conflict errors repeat the server's message, and everything
// else suggests trying the action again.
func Failure(action string, err error) Notification {
	return Notification{Level: LevelError, Message: Message(action, err)}
}

// AuthFailure is Failure for login and signup, where a 401 means bad
// credentials rather than an expired session.
func AuthFailure(action string, err error) Notification {
	if api.IsUnauthorized(err) || api.IsClientError(err) {
		return Notification{Level: LevelError, Message: api.MessageOf(err)}
	}
	return Failure(action, err)
}

func Message(action string, err error) string {
	switch {
	case api.IsUnauthorized(err):
		return SessionExpiredMessage
	case api.IsClientError(err):
		return api.MessageOf(err)
	default:
		return fmt.Sprintf("Failed to %s. Please try again.", action)
	}
}

var (
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4CAF50"))
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B8DEF"))
)

// Render styles a notification as a single line.
func Render(n Notification) string {
	switch n.Level {
	case LevelSuccess:
		return successStyle.Render("✓ " + n.Message)
	case LevelError:
		return errorStyle.Render("✗ " + n.Message)
	default:
		return infoStyle.Render(n.Message)
	}
}

// Terminal writes styled notifications to w, one per line.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, Render(n))
}

// Recorder keeps every notification. The TUI shows the latest one in its
// status line.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, n)
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Notification{}, false
	}
	return r.entries[len(r.entries)-1], true
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.entries...)
}
