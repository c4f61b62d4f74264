package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/task-manager/internal/client/notify"
)

func newSignupCommand(a *App) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if name, err = a.promptLine(cmd, "Name", name); err != nil {
				return err
			}
			if email, err = a.promptLine(cmd, "Email", email); err != nil {
				return err
			}
			if password, err = a.promptPassword(cmd, password); err != nil {
				return err
			}

			s, err := a.session.Signup(cmd.Context(), name, email, password)
			if err != nil {
				a.notifier.Notify(notify.AuthFailure("sign up", err))
				return reported(err)
			}
			a.notifier.Notify(notify.Success(fmt.Sprintf("Welcome, %s!", s.User.Name)))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Your name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLoginCommand(a *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.promptLine(cmd, "Email", email); err != nil {
				return err
			}
			if password, err = a.promptPassword(cmd, password); err != nil {
				return err
			}

			s, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				a.notifier.Notify(notify.AuthFailure("login", err))
				return reported(err)
			}
			a.notifier.Notify(notify.Success(fmt.Sprintf("Welcome back, %s!", s.User.Name)))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.session.Logout()
			if err != nil {
				return err
			}
			a.notifier.Notify(notify.Success("Logged out"))
			return nil
		},
	}
}

func newWhoamiCommand(a *App) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.requireAuth()
			if err != nil {
				return err
			}

			user, _ := a.session.User()
			if check {
				me, err := a.client.Me(cmd.Context())
				if err != nil {
					a.session.Observe(err)
					a.notifier.Notify(notify.Failure("verify session", err))
					return reported(err)
				}
				user = *me
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Verify the session with the server")
	return cmd
}
