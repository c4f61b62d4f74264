package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/task-manager/internal/client/notify"
	"github.com/adanyl0v/task-manager/internal/client/tui"
	"github.com/adanyl0v/task-manager/internal/client/workspace"
)

func newBrowseCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.requireAuth()
			if err != nil {
				return err
			}

			recorder := &notify.Recorder{}
			ws := workspace.New(a.client, a.session, recorder)
			program := tea.NewProgram(
				tui.New(ws, a.session, recorder),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			_, err = program.Run()
			if err != nil {
				return err
			}

			if last, ok := recorder.Last(); ok && last.Message == notify.SessionExpiredMessage {
				a.notifier.Notify(last)
			}
			return nil
		},
	}
}
