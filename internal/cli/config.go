package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasklist/internal/app"
	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/infra/config"
	"github.com/runoshun/tasklist/internal/usecase"
)

// newConfigCommand creates the config command.
// Without a subcommand it displays the effective configuration.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display effective configuration",
		Long: `Display the config file in use and the effective configuration
after merging it over the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			// Display loaded file section
			_, _ = fmt.Fprintln(w, "[Loaded from]")
			switch {
			case out.File.Path == "":
				_, _ = fmt.Fprintln(w, "- (defaults only)")
			case out.File.Exists:
				_, _ = fmt.Fprintf(w, "- %s\n", out.File.Path)
			default:
				_, _ = fmt.Fprintf(w, "- %s (not found)\n", out.File.Path)
			}
			_, _ = fmt.Fprintln(w)

			// Display effective config
			_, _ = fmt.Fprintln(w, "[Effective config]")
			rendered, err := config.Render(out.Config)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(w, rendered)

			if len(out.Config.Warnings) > 0 {
				_, _ = fmt.Fprintln(w)
				_, _ = fmt.Fprintln(w, "[Warnings]")
				for _, warning := range out.Config.Warnings {
					_, _ = fmt.Fprintf(w, "- %s\n", warning)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Long: `Write a commented config file with the default settings.

An existing config file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{})
			if errors.Is(err, domain.ErrConfigExists) {
				return fmt.Errorf("%w: %s", err, c.Config.ConfigPath)
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}

	return cmd
}
