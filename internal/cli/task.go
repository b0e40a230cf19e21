package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasklist/internal/app"
	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/tui"
	"github.com/runoshun/tasklist/internal/usecase"
)

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Left bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `Display the tasks in list order.

Output is tab-separated with columns ID, DONE, TASK, followed by the
footer rendered from [templates] stats.

Examples:
  # List every task
  tasks list

  # List only the tasks that are not done
  tasks list --left`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := c.ListTasksUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.ListTasksInput{LeftOnly: opts.Left})
			if err != nil {
				return err
			}

			templates, err := tui.ParseTemplates(c.AppConfig.Templates)
			if err != nil {
				return err
			}
			footer, err := templates.Stats(tui.StatsData{
				ItemsLeft: out.ItemsLeft,
				Done:      out.Total - out.ItemsLeft,
				Total:     out.Total,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks")
				return nil
			}
			printTaskList(w, out.Tasks)
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, footer)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Left, "left", "l", false, "Only show tasks that are not done")

	return cmd
}

// printTaskList prints tasks in a table format.
func printTaskList(w io.Writer, tasks []domain.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tDONE\tTASK")

	// Rows
	for _, task := range tasks {
		done := "[ ]"
		if task.IsDone {
			done = "[x]"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", task.ID, done, task.Task)
	}
}

// newAddCommand creates the add command for creating a task.
func newAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Done bool
	}

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Long: `Add a task at the end of the list.

All arguments are joined with spaces. Surrounding whitespace is removed
and empty text is rejected.

Examples:
  tasks add buy milk
  tasks add "call mom" --done`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := c.NewTaskUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.NewTaskInput{
				Text: strings.Join(args, " "),
				Done: opts.Done,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d: %s\n", out.Task.ID, out.Task.Task)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Done, "done", false, "Create the task already completed")

	return cmd
}

// newDoneCommand creates the done command for setting the completion flag.
func newDoneCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Undo bool
		All  bool
	}

	cmd := &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a task as done",
		Long: `Mark a task as done, or as not done with --undo.

With --all every task is marked. Each changed task is saved on its own.

Examples:
  tasks done 3
  tasks done 3 --undo
  tasks done --all
  tasks done --all --undo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.CompleteTaskInput{Done: !opts.Undo, All: opts.All}
			switch {
			case opts.All && len(args) > 0:
				return errors.New("cannot use --all with a task ID")
			case !opts.All && len(args) == 0:
				return errors.New("task ID is required (or use --all)")
			case !opts.All:
				taskID, err := parseTaskID(args[0])
				if err != nil {
					return fmt.Errorf("invalid task ID: %w", err)
				}
				in.TaskID = taskID
			}

			uc, err := c.CompleteTaskUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			verb := "done"
			if opts.Undo {
				verb = "not done"
			}
			for _, task := range out.Changed {
				_, _ = fmt.Fprintf(w, "Marked task #%d as %s: %s\n", task.ID, verb, task.Task)
			}
			if len(out.Changed) == 0 {
				_, _ = fmt.Fprintln(w, "Nothing to change")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Undo, "undo", false, "Mark as not done")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Apply to every task")

	return cmd
}

// newEditCommand creates the edit command for replacing task text.
func newEditCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Edit task text",
		Long: `Replace the text of a task.

Empty text is an error; use "tasks rm" to delete a task.

Examples:
  tasks edit 2 walk the dog`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			uc, err := c.EditTaskUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.EditTaskInput{
				TaskID: taskID,
				Text:   strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d: %s\n", out.Task.ID, out.Task.Task)
			return nil
		},
	}

	return cmd
}

// newRmCommand creates the rm command for deleting a task.
func newRmCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a task. The tasks after it move up by one.

Examples:
  # Delete task by ID
  tasks rm 1

  # Delete task using # prefix
  tasks rm "#1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parse task ID
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			// Execute use case
			uc, err := c.DeleteTaskUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{
				TaskID: taskID,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d: %s\n", out.Task.ID, out.Task.Task)
			return nil
		},
	}

	return cmd
}

// newMvCommand creates the mv command for reordering tasks.
func newMvCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <id> <position>",
		Short: "Move a task to another position",
		Long: `Move a task to a 0-based position in the list.

Positions past the end move the task to the last position.

Examples:
  # Move task #4 to the top
  tasks mv 4 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position: %w", err)
			}

			uc, err := c.MoveTaskUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.MoveTaskInput{
				TaskID:   taskID,
				Position: position,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved task #%d to position %d\n", out.Task.ID, out.Position)
			printTaskList(cmd.OutOrStdout(), out.Tasks)
			return nil
		},
	}

	return cmd
}

// parseTaskID parses a task ID, with or without a leading #.
func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("task ID must be positive")
	}
	return id, nil
}
