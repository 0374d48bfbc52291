package runconfig

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
	"github.com/mansukim1125/run-configurations/internal/providers/settings"
)

// ConfigurationsKey is the settings key holding the list of DTOs.
const ConfigurationsKey = "runConfigurations.configurations"

// Store persists run configurations in the workspace settings document.
// Every mutation rewrites the whole list under ConfigurationsKey.
type Store struct {
	settings settings.Store
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewStore creates a store backed by the given settings collaborator
func NewStore(backend settings.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		settings: backend,
		logger:   logger,
	}
}

// WithMetrics records store operations
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// GetAll returns every configuration in stored order. A missing key is an
// empty list; read failures are returned as-is.
func (s *Store) GetAll(ctx context.Context) ([]RunConfiguration, error) {
	var dtos []DTO
	if _, err := s.settings.Get(ctx, ConfigurationsKey, &dtos); err != nil {
		s.observe("get_all", err)
		return nil, err
	}
	s.observe("get_all", nil)

	configs := make([]RunConfiguration, 0, len(dtos))
	for _, dto := range dtos {
		configs = append(configs, New(dto))
	}
	return configs, nil
}

// GetByID returns the configuration with id. ok is false when none exists.
func (s *Store) GetByID(ctx context.Context, id string) (RunConfiguration, bool, error) {
	configs, err := s.GetAll(ctx)
	if err != nil {
		return RunConfiguration{}, false, err
	}
	for _, cfg := range configs {
		if cfg.ID == id {
			return cfg, true, nil
		}
	}
	return RunConfiguration{}, false, nil
}

// Save replaces the configuration with the same id in place, or appends it.
func (s *Store) Save(ctx context.Context, cfg RunConfiguration) error {
	configs, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range configs {
		if configs[i].ID == cfg.ID {
			configs[i] = cfg.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		configs = append(configs, cfg.Clone())
	}

	if err := s.write(ctx, "save", configs); err != nil {
		return err
	}

	s.logger.Info("Run configuration saved",
		zap.String("id", cfg.ID),
		zap.String("name", cfg.Name),
		zap.Bool("replaced", replaced),
	)
	return nil
}

// Delete removes the configuration with id. Unknown ids are not an error;
// the collection is rewritten either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	configs, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	kept := configs[:0]
	for _, cfg := range configs {
		if cfg.ID != id {
			kept = append(kept, cfg)
		}
	}
	removed := len(configs) - len(kept)

	if err := s.write(ctx, "delete", kept); err != nil {
		return err
	}

	s.logger.Info("Run configuration deleted", zap.String("id", id), zap.Int("removed", removed))
	return nil
}

// Subscribe calls fn whenever the stored list changes, whether through this
// store or through another writer of the same settings document.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.settings.Subscribe(ConfigurationsKey, func(e settings.ChangeEvent) {
		s.logger.Debug("Run configurations changed", zap.String("source", e.Source))
		fn()
	})
}

func (s *Store) write(ctx context.Context, op string, configs []RunConfiguration) error {
	dtos := make([]DTO, len(configs))
	for i, cfg := range configs {
		dtos[i] = cfg.DTO()
	}

	if err := s.settings.Update(ctx, ConfigurationsKey, dtos); err != nil {
		s.observe(op, err)
		return fmt.Errorf("failed to persist run configurations: %w", err)
	}
	s.observe(op, nil)
	if s.metrics != nil {
		s.metrics.Configurations.Set(float64(len(dtos)))
	}
	return nil
}

func (s *Store) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreOp(op, err)
	}
}
