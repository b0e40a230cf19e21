package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasklist/internal/app"
	"github.com/runoshun/tasklist/internal/usecase"
)

// newImportCommand creates the import command for loading tasks from YAML.
func newImportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Replace bool
		DryRun  bool
	}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a YAML file",
		Long: `Create tasks from a YAML file in the format written by "tasks export".

Tasks are appended in file order. IDs and orders in the file are ignored.
The whole file is validated before anything is created. Use "-" to read
from standard input.

Example file:
  tasks:
    - task: buy milk
    - task: walk dog
      is_done: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			uc, err := c.ImportTasksUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.ImportTasksInput{
				Data:    data,
				Replace: opts.Replace,
				DryRun:  opts.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.DryRun {
				_, _ = fmt.Fprintf(w, "Would create %d tasks\n", len(out.Created))
				printTaskList(w, out.Created)
				return nil
			}
			if out.Deleted > 0 {
				_, _ = fmt.Fprintf(w, "Deleted %d tasks\n", out.Deleted)
			}
			_, _ = fmt.Fprintf(w, "Created %d tasks\n", len(out.Created))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "Delete every existing task first")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate the file without creating tasks")

	return cmd
}

// newExportCommand creates the export command for writing tasks as YAML.
func newExportCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write every task as YAML",
		Long: `Write every task as YAML, to a file or to standard output.

The output can be loaded again with "tasks import".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := c.ExportTasksUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.ExportTasksInput{})
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "-" {
				_, err = cmd.OutOrStdout().Write(out.Data)
				return err
			}
			if err := os.WriteFile(args[0], out.Data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", out.Count, args[0])
			return nil
		},
	}

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
