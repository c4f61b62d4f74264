package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/task-manager/internal/client/api"
	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/view"
)

func newListCommand(a *App) *cobra.Command {
	var search, status, sortKey string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.loadWorkspace(cmd)
			if err != nil {
				return err
			}

			tasks := ws.View(view.Query{
				Search: search,
				Status: view.ParseStatus(status),
				Sort:   view.ParseSort(sortKey),
			})
			renderTasks(cmd.OutOrStdout(), tasks, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "Match title or description")
	cmd.Flags().StringVar(&status, "status", string(view.StatusAll), "all, pending or completed")
	cmd.Flags().StringVar(&sortKey, "sort", string(view.SortCreatedAt), "createdAt, dueDate or priority")
	return cmd
}

func newStatsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.loadWorkspace(cmd)
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), ws.Stats())
			return nil
		},
	}
}

func newAddCommand(a *App) *cobra.Command {
	var input api.TaskInput
	var priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.requireAuth()
			if err != nil {
				return err
			}

			input.Title = args[0]
			input.Priority = models.Priority(priority)
			task, err := a.workspace().Add(cmd.Context(), input)
			if err != nil {
				return reported(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "Due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&input.DueTime, "time", "", "Due time as HH:MM")
	return cmd
}

func newEditCommand(a *App) *cobra.Command {
	var (
		title, description, priority, due, dueTime string
		completed                                  bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.loadWorkspace(cmd)
			if err != nil {
				return err
			}
			id, err := ws.Resolve(args[0])
			if err != nil {
				return err
			}

			var patch api.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("priority") {
				p := models.Priority(priority)
				patch.Priority = &p
			}
			if flags.Changed("due") {
				patch.DueDate = &due
			}
			if flags.Changed("time") {
				patch.DueTime = &dueTime
			}
			if flags.Changed("completed") {
				patch.Completed = &completed
			}
			if patch == (api.TaskPatch{}) {
				return fmt.Errorf("nothing to change, pass at least one flag")
			}

			_, err = ws.Edit(cmd.Context(), id, patch)
			if err != nil {
				return reported(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "New due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&dueTime, "time", "", "New due time as HH:MM")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark as completed or pending")
	return cmd
}

func newDoneCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle whether a task is completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.loadWorkspace(cmd)
			if err != nil {
				return err
			}
			id, err := ws.Resolve(args[0])
			if err != nil {
				return err
			}
			_, err = ws.Toggle(cmd.Context(), id)
			if err != nil {
				return reported(err)
			}
			return nil
		},
	}
}

func newRemoveCommand(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.loadWorkspace(cmd)
			if err != nil {
				return err
			}
			id, err := ws.Resolve(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := a.confirm(cmd, "Are you sure you want to delete this task? This action cannot be undone.")
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
					return nil
				}
			}

			err = ws.Remove(cmd.Context(), id)
			if err != nil {
				return reported(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}
