// Package cli implements the taskctl command tree.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/task-manager/internal/client/api"
	"github.com/adanyl0v/task-manager/internal/client/notify"
	"github.com/adanyl0v/task-manager/internal/client/session"
	"github.com/adanyl0v/task-manager/internal/client/workspace"
	"github.com/adanyl0v/task-manager/internal/config"
)

// ErrReported marks failures the notifier has already shown to the user.
var ErrReported = errors.New("reported")

var errNotLoggedIn = errors.New("not logged in, run `taskctl login` first")

type Option func(*App)

// WithSessionStore replaces the session file.
func WithSessionStore(store session.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// App is the state shared by every command of one invocation.
type App struct {
	cfg     config.ClientConfig
	verbose bool

	logger   zerolog.Logger
	store    session.Store
	client   *api.Client
	session  *session.Manager
	notifier notify.Notifier
	stdin    *bufio.Reader
}

func NewRootCommand(opts ...Option) *cobra.Command {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:               "taskctl",
		Short:             "Manage your tasks from the terminal",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.ServerURL, "server", "",
		"API base URL (default: $TASKCTL_SERVER_URL or http://localhost:5000)")
	flags.StringVar(&a.cfg.SessionFile, "session-file", "",
		"Session file (default: $TASKCTL_SESSION_FILE or ~/.config/taskctl/session.yaml)")
	flags.DurationVar(&a.cfg.Timeout, "timeout", 0,
		"Request timeout (default: $TASKCTL_TIMEOUT or 10s)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newSignupCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newListCommand(a),
		newStatsCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newDoneCommand(a),
		newRemoveCommand(a),
		newBrowseCommand(a),
	)
	return root
}

// setup merges flags over the environment and restores the stored session.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	envCfg, err := config.ReadClientEnv()
	if err != nil {
		return fmt.Errorf("failed to read client env: %w", err)
	}
	if a.cfg.ServerURL == "" {
		a.cfg.ServerURL = envCfg.ServerURL
	}
	if a.cfg.SessionFile == "" {
		a.cfg.SessionFile = envCfg.SessionFile
	}
	if a.cfg.Timeout <= 0 {
		a.cfg.Timeout = envCfg.Timeout
	}

	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		TimeFormat: time.DateTime,
	}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if a.store == nil {
		path := a.cfg.SessionFile
		if path == "" {
			path, err = session.DefaultSessionPath()
			if err != nil {
				return err
			}
		}
		a.store = session.NewFileStore(path)
	}

	a.client = api.New(a.cfg.ServerURL, a.cfg.Timeout)
	a.session = session.NewManager(a.store, a.client, a.logger)
	a.client.SetTokenSource(a.session)
	a.notifier = notify.NewTerminal(cmd.OutOrStdout())
	a.stdin = bufio.NewReader(cmd.InOrStdin())

	err = a.session.Start()
	if err != nil {
		a.logger.Warn().
			Err(err).
			Msg("ignoring unreadable session")
	}
	a.logger.Debug().
		Str("server", a.cfg.ServerURL).
		Str("state", a.session.State().String()).
		Msg("client ready")
	return nil
}

func (a *App) requireAuth() error {
	if a.session.State() != session.StateAuthenticated {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) workspace() *workspace.Workspace {
	return workspace.New(a.client, a.session, a.notifier)
}

// loadWorkspace returns a workspace holding the current task list.
func (a *App) loadWorkspace(cmd *cobra.Command) (*workspace.Workspace, error) {
	err := a.requireAuth()
	if err != nil {
		return nil, err
	}
	ws := a.workspace()
	err = ws.Refresh(cmd.Context())
	if err != nil {
		return nil, reported(err)
	}
	return ws, nil
}

func reported(err error) error {
	return fmt.Errorf("%w: %w", ErrReported, err)
}
