package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/api/middleware"
	"github.com/mansukim1125/run-configurations/internal/domain/commands"
	"github.com/mansukim1125/run-configurations/internal/domain/execution"
	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
	httpapi "github.com/mansukim1125/run-configurations/internal/http"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/config"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/logging"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
	"github.com/mansukim1125/run-configurations/internal/providers/settings"
	"github.com/mansukim1125/run-configurations/internal/providers/terminal"
	"github.com/mansukim1125/run-configurations/internal/utils"
	"github.com/mansukim1125/run-configurations/internal/ws"
)

// shutdownTimeout bounds graceful HTTP shutdown
const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	config   *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	folders  []string
	settings settings.Store
	store    *runconfig.Store
	host     *terminal.Host
	manager  *execution.Manager
	hub      *ws.Hub

	unsubscribe []func()
	cancelWatch context.CancelFunc
}

// Option configures a Server
type Option func(*options)

type options struct {
	logger   *logging.Logger
	registry prometheus.Registerer
}

// WithLogger overrides the logger built from the configuration
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry registers metrics on reg instead of the default registry
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, err
		}
	}

	folders, err := cfg.Workspace.Folders()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace roots: %w", err)
	}

	logger.Info("Initializing run configuration daemon",
		zap.String("addr", cfg.Server.Addr()),
		zap.Strings("workspace", folders),
		zap.String("settings_backend", cfg.Workspace.SettingsBackend),
	)

	metrics := monitoring.NewMetricsWithRegistry(o.registry)

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		folders: folders,
	}

	if err := s.initSettings(); err != nil {
		return nil, err
	}

	s.store = runconfig.NewStore(s.settings, logger.Component("store")).WithMetrics(metrics)
	editor := runconfig.NewEditor(s.store, logger.Component("editor"))

	s.host = terminal.NewHost(terminal.Config{
		Shell:       cfg.Terminal.ResolveShell(),
		Cols:        cfg.Terminal.Cols,
		Rows:        cfg.Terminal.Rows,
		BufferBytes: cfg.Terminal.BufferBytes,
	}, terminal.WithLogger(logger.Component("terminal")), terminal.WithMetrics(metrics))

	s.manager = execution.NewManager(s.host, execution.Folders(folders),
		execution.WithLogger(logger.Component("execution")),
		execution.WithMetrics(metrics),
	)

	s.hub = ws.NewHub(logger.Component("ws"), metrics)
	s.unsubscribe = append(s.unsubscribe,
		s.store.Subscribe(s.hub.ConfigurationsChanged),
		s.host.OnDidCloseTerminal(s.hub.TerminalClosed),
	)

	svc := commands.NewService(s.store, s.manager, editor, s.hub, logger.Component("commands"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.Recovery(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.BodyLimit(utils.MaxBodySize))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
	}
	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		Enabled:           cfg.RateLimit.Enabled,
	}))

	handlers := httpapi.NewHandlers(svc, s.store, editor, s.manager, s.host, metrics, logger.Component("http"))
	handlers.RegisterRoutes(router, s.hub.HandleConnection)
	s.router = router

	logger.Info("Server initialized successfully")
	return s, nil
}

func (s *Server) initSettings() error {
	wcfg := s.config.Workspace

	switch wcfg.SettingsBackend {
	case config.BackendMemory:
		s.settings = settings.NewMemory()
		s.logger.Warn("Using in-memory settings; configurations are lost on exit")
		return nil
	case config.BackendFile:
	default:
		return fmt.Errorf("unknown settings backend %q", wcfg.SettingsBackend)
	}

	path := wcfg.SettingsPath(s.folders)
	file, err := settings.NewFile(path, settings.WithLogger(s.logger.Component("settings")))
	if err != nil {
		return fmt.Errorf("failed to open settings %s: %w", path, err)
	}
	s.settings = file
	s.logger.Info("Settings file", zap.String("path", file.Path()), zap.String("format", file.Format()))

	if wcfg.Watch {
		ctx, cancel := context.WithCancel(context.Background())
		if err := file.Watch(ctx); err != nil {
			cancel()
			// External edits then only show up after a refresh.
			s.logger.Warn("Failed to watch settings file", zap.Error(err))
			return nil
		}
		s.cancelWatch = cancel
	}
	return nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on the configured address until ctx is done, then
// shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// WebSocket connections are hijacked and not tracked by Shutdown
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	<-errCh
	return nil
}

// Close releases everything the server owns. Terminals are killed here,
// not by the execution manager.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.manager.Dispose()
	s.hub.Close()

	var errs []error
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	if file, ok := s.settings.(*settings.File); ok {
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop settings watcher: %w", err))
		}
	}
	if err := s.host.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close terminals: %w", err))
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
