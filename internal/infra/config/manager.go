package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/tasklist/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages the config file.
type Manager struct {
	path string
}

// NewManager creates a Manager for the file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Info returns information about the config file.
func (m *Manager) Info() domain.ConfigInfo {
	if m.path == "" {
		return domain.ConfigInfo{}
	}
	content, err := os.ReadFile(m.path)
	if err != nil {
		return domain.ConfigInfo{Path: m.path}
	}
	return domain.ConfigInfo{
		Path:    m.path,
		Content: string(content),
		Exists:  true,
	}
}

// Init writes the commented default config.
func (m *Manager) Init() error {
	if m.path == "" {
		return errors.New("config directory not available")
	}
	if _, err := os.Stat(m.path); err == nil {
		return domain.ErrConfigExists
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(m.path, []byte(domain.ConfigTemplate()), 0o600)
}
