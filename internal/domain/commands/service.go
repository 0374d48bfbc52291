package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
)

// ErrConfirmationRequired is returned by Delete until the user confirms
var ErrConfirmationRequired = errors.New("confirmation required")

// ConfirmationError carries the question to put to the user
type ConfirmationError struct {
	Prompt string
}

func (e *ConfirmationError) Error() string {
	return e.Prompt
}

// Unwrap lets errors.Is match ErrConfirmationRequired
func (e *ConfirmationError) Unwrap() error {
	return ErrConfirmationRequired
}

// Executor runs a configuration in a terminal
type Executor interface {
	Execute(ctx context.Context, cfg runconfig.RunConfiguration) error
}

// Notifier tells views to re-read the configuration list
type Notifier interface {
	ConfigurationsChanged()
}

// Service implements the user-facing commands: add, edit, run, delete
// and refresh.
type Service struct {
	store    *runconfig.Store
	executor Executor
	editor   *runconfig.Editor
	notifier Notifier
	logger   *zap.Logger
}

// NewService wires the commands. notifier may be nil.
func NewService(store *runconfig.Store, executor Executor, editor *runconfig.Editor, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		executor: executor,
		editor:   editor,
		notifier: notifier,
		logger:   logger,
	}
}

// Add opens the editor on an empty configuration
func (s *Service) Add(ctx context.Context) (runconfig.EditorMessage, error) {
	return s.editor.Open(ctx, "")
}

// Edit opens the editor on an existing configuration
func (s *Service) Edit(ctx context.Context, id string) (runconfig.EditorMessage, error) {
	return s.editor.Open(ctx, id)
}

// Run executes the stored configuration with id
func (s *Service) Run(ctx context.Context, id string) error {
	cfg, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	return s.executor.Execute(ctx, cfg)
}

// Delete removes the configuration with id once confirmed. Without
// confirmation it returns a ConfirmationError naming the configuration.
func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	cfg, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if !confirmed {
		return &ConfirmationError{Prompt: DeletePrompt(cfg.Name)}
	}
	return s.store.Delete(ctx, id)
}

// Refresh asks views to reload
func (s *Service) Refresh() {
	s.logger.Debug("Refresh requested")
	if s.notifier != nil {
		s.notifier.ConfigurationsChanged()
	}
}

// DeletePrompt is the confirmation question for deleting name
func DeletePrompt(name string) string {
	return fmt.Sprintf("Delete configuration \"%s\"?", name)
}

func (s *Service) lookup(ctx context.Context, id string) (runconfig.RunConfiguration, error) {
	cfg, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return runconfig.RunConfiguration{}, err
	}
	if !ok {
		return runconfig.RunConfiguration{}, fmt.Errorf("%w: %s", runconfig.ErrNotFound, id)
	}
	return cfg, nil
}
