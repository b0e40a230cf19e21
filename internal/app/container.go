// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/infra/config"
	"github.com/runoshun/tasklist/internal/infra/jsonstore"
	"github.com/runoshun/tasklist/internal/infra/logging"
	"github.com/runoshun/tasklist/internal/infra/rediscache"
	"github.com/runoshun/tasklist/internal/infra/restclient"
	"github.com/runoshun/tasklist/internal/infra/sqlitestore"
	"github.com/runoshun/tasklist/internal/model"
	"github.com/runoshun/tasklist/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	ConfigPath string // Config file in use
	DataDir    string // Directory for default store and log locations
}

// Container provides dependency injection for the application.
// It holds all port implementations and opens the task repositories on
// first use.
type Container struct {
	// Ports (interfaces bound to implementations)
	tasks         domain.TaskRepository
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Log           domain.Logger // File logger used by the engine and the TUI

	// Pointer fields
	AppConfig *domain.Config
	Logger    *slog.Logger // Diagnostics on stderr

	closers []func() error

	// Configuration
	Config Config
}

// New creates a new Container from the config file at configPath
// (empty means the global config file).
func New(configPath string) (*Container, error) {
	loader := config.NewLoader(configPath)
	appConfig, err := loader.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(appConfig.Log.Level),
	}))
	for _, w := range appConfig.Warnings {
		logger.Warn("config warning", "detail", w)
	}

	fileLog := logging.New(appConfig.Log.Dir, logging.ParseLevel(appConfig.Log.Level))

	c := &Container{
		Clock:         domain.RealClock{},
		ConfigLoader:  loader,
		ConfigManager: config.NewManager(loader.Path()),
		Log:           fileLog,
		AppConfig:     appConfig,
		Logger:        logger,
		Config: Config{
			ConfigPath: loader.Path(),
			DataDir:    loader.DataDir(),
		},
	}
	c.closers = append(c.closers, fileLog.Close)
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, tasks domain.TaskRepository, clock domain.Clock, logger *slog.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig(cfg.DataDir)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Container{
		tasks:         tasks,
		Clock:         clock,
		ConfigManager: config.NewManager(cfg.ConfigPath),
		Log:           domain.NopLogger{},
		AppConfig:     appConfig,
		Logger:        logger,
		Config:        cfg,
	}
}

// Tasks returns the repository selected by [client] backend, opening it
// on first use.
func (c *Container) Tasks() (domain.TaskRepository, error) {
	if c.tasks != nil {
		return c.tasks, nil
	}
	repo, err := c.openStore(c.AppConfig.Client.Backend)
	if err != nil {
		return nil, err
	}
	c.tasks = repo
	return repo, nil
}

// NewCollection creates an empty collection over the client repository.
func (c *Container) NewCollection(d model.Dispatcher) (*model.Collection, error) {
	repo, err := c.Tasks()
	if err != nil {
		return nil, err
	}
	return model.NewCollection(repo, d, c.Log), nil
}

// ServerRepository opens the store selected by [server] store, wrapped in
// the Redis list cache when redis_url is set.
func (c *Container) ServerRepository(ctx context.Context) (domain.TaskRepository, error) {
	cfg := c.AppConfig.Server
	store := cfg.Store
	switch store {
	case "":
		store = domain.BackendSQLite
	case domain.BackendHTTP:
		return nil, fmt.Errorf("%w: server store %q", domain.ErrUnknownBackend, store)
	}
	repo, err := c.openStore(store)
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return repo, nil
	}

	client, err := rediscache.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.closers = append(c.closers, client.Close)
	c.Logger.Debug("list cache enabled", "ttl", cfg.CacheTTL)
	return rediscache.New(repo, client, cfg.CacheTTL), nil
}

func (c *Container) openStore(backend string) (domain.TaskRepository, error) {
	switch backend {
	case domain.BackendHTTP, "":
		cfg := c.AppConfig.Client
		return restclient.New(cfg.BaseURL, cfg.Timeout), nil

	case domain.BackendSQLite:
		store, err := sqlitestore.Open(c.AppConfig.Server.DBPath, sqlitestore.WithClock(c.Clock))
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, store.Close)
		return store, nil

	case domain.BackendJSON:
		store := jsonstore.New(c.AppConfig.Server.JSONPath)
		if err := initStore(store); err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, backend)
}

func initStore(init domain.StoreInitializer) error {
	if err := init.Initialize(); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	return nil
}

// withTasks builds a use case over the client repository.
func withTasks[T any](c *Container, build func(domain.TaskRepository, domain.Logger) T) (T, error) {
	repo, err := c.Tasks()
	if err != nil {
		var zero T
		return zero, err
	}
	return build(repo, c.Log), nil
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() (*usecase.ListTasks, error) {
	return withTasks(c, usecase.NewListTasks)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() (*usecase.NewTask, error) {
	return withTasks(c, usecase.NewNewTask)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() (*usecase.EditTask, error) {
	return withTasks(c, usecase.NewEditTask)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() (*usecase.DeleteTask, error) {
	return withTasks(c, usecase.NewDeleteTask)
}

// MoveTaskUseCase returns a new MoveTask use case.
func (c *Container) MoveTaskUseCase() (*usecase.MoveTask, error) {
	return withTasks(c, usecase.NewMoveTask)
}

// CompleteTaskUseCase returns a new CompleteTask use case.
func (c *Container) CompleteTaskUseCase() (*usecase.CompleteTask, error) {
	return withTasks(c, usecase.NewCompleteTask)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() (*usecase.ImportTasks, error) {
	return withTasks(c, usecase.NewImportTasks)
}

// ExportTasksUseCase returns a new ExportTasks use case.
func (c *Container) ExportTasksUseCase() (*usecase.ExportTasks, error) {
	return withTasks(c, usecase.NewExportTasks)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.AppConfig)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// Close releases every resource opened by the container.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}
