// Package main is the entry point for the tasks CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/tasklist/internal/app"
	"github.com/runoshun/tasklist/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Create dependency injection container
	container, err := app.New(configPathFromArgs(os.Args[1:]))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	// Create and execute root command
	runErr := cli.Execute(context.Background(), container, version)
	if err := container.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// configPathFromArgs returns the value of --config before cobra parses the
// command line, since the container is built from it.
func configPathFromArgs(args []string) string {
	flag := "--" + cli.ConfigFlag
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
		if value, ok := strings.CutPrefix(arg, flag+"="); ok {
			return value
		}
	}
	return ""
}
