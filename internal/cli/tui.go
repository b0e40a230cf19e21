package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasklist/internal/app"
	"github.com/runoshun/tasklist/internal/tui"
)

// launchTUI runs the interactive list until the user quits.
// Unusable templates fail startup before the screen is taken over.
func launchTUI(ctx context.Context, c *app.Container) error {
	templates, err := tui.ParseTemplates(c.AppConfig.Templates)
	if err != nil {
		return err
	}

	d := tui.NewDispatcher(ctx)
	coll, err := c.NewCollection(d)
	if err != nil {
		return err
	}

	m := tui.New(coll, d, templates, c.Log)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
