package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/view"
)

const shortIDLength = 8

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func renderTasks(w io.Writer, tasks []*models.Task, now time.Time) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("No tasks found."))
		return
	}

	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		status := "pending"
		if task.Completed {
			status = "done"
		} else if view.IsOverdue(task, now) {
			status = "overdue"
		}
		due := task.DueDate.String()
		if task.DueTime != "" {
			due += " " + task.DueTime
		}
		rows = append(rows, []string{shortID(task.ID), status, string(task.Priority), due, task.Title})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("ID", "STATUS", "PRIORITY", "DUE", "TITLE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, _ = fmt.Fprintln(w, t.Render())
}

func renderStats(w io.Writer, stats view.Stats) {
	_, _ = fmt.Fprintf(w, "Total:      %d\n", stats.Total)
	_, _ = fmt.Fprintf(w, "Completed:  %d\n", stats.Completed)
	_, _ = fmt.Fprintf(w, "Pending:    %d\n", stats.Pending)
	_, _ = fmt.Fprintf(w, "Overdue:    %d\n", stats.Overdue)
	_, _ = fmt.Fprintf(w, "Completion: %d%%\n", stats.CompletionRate)
}
