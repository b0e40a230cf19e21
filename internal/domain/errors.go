package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrEmptyTask       = errors.New("task text cannot be empty")
	ErrInvalidOrder    = errors.New("order must not be negative")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotPersisted    = errors.New("task has not been persisted")
	ErrNotInitialized  = errors.New("store not initialized")
	ErrConfigExists    = errors.New("config file already exists")
	ErrMissingTemplate = errors.New("template is missing")
	ErrUnknownBackend  = errors.New("unknown backend")
)
