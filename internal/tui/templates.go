package tui

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/runoshun/tasklist/internal/domain"
)

// StatsData is the context of the stats (footer) template.
type StatsData struct {
	ItemsLeft int
	Done      int
	Total     int
}

// Templates holds the parsed row and footer templates.
type Templates struct {
	item  *template.Template
	stats *template.Template
}

// ParseTemplates parses the [templates] section. A blank template is
// reported as domain.ErrMissingTemplate.
func ParseTemplates(cfg domain.TemplatesConfig) (*Templates, error) {
	item, err := parseTemplate("item", cfg.Item)
	if err != nil {
		return nil, err
	}
	stats, err := parseTemplate("stats", cfg.Stats)
	if err != nil {
		return nil, err
	}
	return &Templates{item: item, stats: stats}, nil
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() *Templates {
	t, err := ParseTemplates(domain.TemplatesConfig{
		Item:  domain.DefaultItemTemplate,
		Stats: domain.DefaultStatsTemplate,
	})
	if err != nil {
		panic(err)
	}
	return t
}

func parseTemplate(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingTemplate, name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	return tmpl, nil
}

// Item renders one task row.
func (t *Templates) Item(task domain.Task) (string, error) {
	return execute(t.item, task)
}

// Stats renders the footer.
func (t *Templates) Stats(data StatsData) (string, error) {
	return execute(t.stats, data)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
