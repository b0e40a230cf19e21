// Package cli provides the command-line interface for tasklist.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasklist/internal/app"
)

// Command group IDs.
const (
	groupTask  = "task"
	groupSetup = "setup"
)

// ConfigFlag is the persistent flag selecting the config file.
// main scans for it before the container exists.
const ConfigFlag = "config"

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for tasklist.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "tasks",
		Short: "Terminal task list",
		Long: `tasks is a terminal task list backed by a REST /tasks collection.

Running tasks without a subcommand opens the interactive list. Every change
is shown immediately and saved to the backend in the background.

The backend is chosen by [client] backend in the config file: "http" talks to
a /tasks server (see "tasks serve"), "sqlite" and "json" use a local store.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), c)
		},
	}

	root.PersistentFlags().StringVar(&configPath, ConfigFlag, "", "Config file (default $XDG_CONFIG_HOME/tasklist/config.toml)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	// Task management commands
	for _, cmd := range []*cobra.Command{
		newListCommand(c),
		newAddCommand(c),
		newDoneCommand(c),
		newEditCommand(c),
		newRmCommand(c),
		newMvCommand(c),
		newImportCommand(c),
		newExportCommand(c),
	} {
		cmd.GroupID = groupTask
		root.AddCommand(cmd)
	}

	// Setup commands
	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	serveCmd := newServeCommand(c)
	serveCmd.GroupID = groupSetup

	root.AddCommand(configCmd, serveCmd)

	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, c *app.Container, version string) error {
	return NewRootCommand(c, version).ExecuteContext(ctx)
}
