package usecase

import (
	"context"

	"github.com/runoshun/tasklist/internal/domain"
)

// InitConfigInput contains the input for the InitConfig use case.
type InitConfigInput struct{}

// InitConfigOutput contains the output of the InitConfig use case.
type InitConfigOutput struct {
	Path string // Path to the created config file
}

// InitConfig writes the default configuration file.
type InitConfig struct {
	configManager domain.ConfigManager
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(configManager domain.ConfigManager) *InitConfig {
	return &InitConfig{
		configManager: configManager,
	}
}

// Execute creates the config file. It fails with domain.ErrConfigExists
// rather than overwrite an existing file.
func (uc *InitConfig) Execute(_ context.Context, _ InitConfigInput) (*InitConfigOutput, error) {
	if err := uc.configManager.Init(); err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: uc.configManager.Info().Path}, nil
}
