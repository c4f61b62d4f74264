package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptLine asks for a value unless it was already given.
func (a *App) promptLine(cmd *cobra.Command, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question. Anything but y or yes, including a
// closed stdin, is a no.
func (a *App) confirm(cmd *cobra.Command, question string) (bool, error) {
	answer, err := a.promptLine(cmd, question+" [y/N]", "")
	if errors.Is(err, io.EOF) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// promptPassword reads without echo from a terminal and falls back to a
// plain line when stdin is redirected.
func (a *App) promptPassword(cmd *cobra.Command, value string) (string, error) {
	if value != "" {
		return value, nil
	}

	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		return a.promptLine(cmd, "Password", "")
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	pw, err := readPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
