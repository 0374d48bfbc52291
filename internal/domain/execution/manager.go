package execution

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
)

// TerminalNamePrefix precedes the configuration name in terminal titles
const TerminalNamePrefix = "Run: "

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records execution outcomes
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// Manager runs configurations, keeping at most one terminal per
// configuration id and reusing it while the host still has it open.
type Manager struct {
	host      Host
	workspace Workspace
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	mu          sync.Mutex
	terminals   map[string]Terminal
	unsubscribe func()
}

// NewManager creates a manager and subscribes to terminal close events
func NewManager(host Host, workspace Workspace, opts ...Option) *Manager {
	m := &Manager{
		host:      host,
		workspace: workspace,
		logger:    zap.NewNop(),
		terminals: make(map[string]Terminal),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.unsubscribe = host.OnDidCloseTerminal(m.handleClose)
	return m
}

// Execute shows the configuration's terminal, creating it if needed, and
// sends the command line to it.
func (m *Manager) Execute(ctx context.Context, cfg runconfig.RunConfiguration) error {
	term, created, err := m.terminalFor(ctx, cfg)
	if err != nil {
		m.record(monitoring.OutcomeFailed)
		m.logger.Error("Failed to create terminal",
			zap.String("config_id", cfg.ID),
			zap.String("name", cfg.Name),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create terminal for %q: %w", cfg.Name, err)
	}

	term.Show(false)

	line := BuildCommandLine(cfg)
	if err := term.SendText(line, true); err != nil {
		m.record(monitoring.OutcomeFailed)
		return fmt.Errorf("failed to send command to terminal %s: %w", term.ID(), err)
	}

	outcome := monitoring.OutcomeReused
	if created {
		outcome = monitoring.OutcomeCreated
	}
	m.record(outcome)
	m.logger.Info("Run configuration executed",
		zap.String("config_id", cfg.ID),
		zap.String("terminal_id", term.ID()),
		zap.String("outcome", outcome),
	)
	return nil
}

// terminalFor returns the cached terminal for cfg when the host still has
// it open, or creates a new one. The lock is held across creation so
// concurrent runs of one configuration share a terminal.
func (m *Manager) terminalFor(ctx context.Context, cfg runconfig.RunConfiguration) (Terminal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if term, ok := m.terminals[cfg.ID]; ok {
		if m.isAlive(term) {
			return term, false, nil
		}
		delete(m.terminals, cfg.ID)
	}

	term, err := m.host.CreateTerminal(ctx, TerminalOptions{
		Name: TerminalNamePrefix + cfg.Name,
		Cwd:  ResolveCwd(cfg.Cwd, m.folders()),
		Env:  copyEnv(cfg.Env),
	})
	if err != nil {
		return nil, false, err
	}
	m.terminals[cfg.ID] = term
	return term, true, nil
}

func (m *Manager) isAlive(term Terminal) bool {
	for _, t := range m.host.Terminals() {
		if t.ID() == term.ID() {
			return true
		}
	}
	return false
}

func (m *Manager) folders() []string {
	if m.workspace == nil {
		return nil
	}
	return m.workspace.Folders()
}

// handleClose forgets the configuration whose terminal closed
func (m *Manager) handleClose(term Terminal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for configID, t := range m.terminals {
		if t.ID() == term.ID() {
			delete(m.terminals, configID)
			m.logger.Debug("Terminal closed",
				zap.String("config_id", configID),
				zap.String("terminal_id", term.ID()),
			)
			return
		}
	}
}

// Sessions returns a snapshot of configuration id to terminal id
func (m *Manager) Sessions() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.terminals))
	for configID, term := range m.terminals {
		out[configID] = term.ID()
	}
	return out
}

// Dispose stops tracking terminals. The terminals themselves stay open.
func (m *Manager) Dispose() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.terminals = make(map[string]Terminal)
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Manager) record(outcome string) {
	if m.metrics != nil {
		m.metrics.RecordExecution(outcome)
	}
}

// BuildCommandLine joins command and args with one space. Args are sent
// verbatim; whitespace-only args are dropped.
func BuildCommandLine(cfg runconfig.RunConfiguration) string {
	if strings.TrimSpace(cfg.Args) == "" {
		return cfg.Command
	}
	return cfg.Command + " " + cfg.Args
}

// ResolveCwd replaces the first workspace folder token with the first
// root. Without roots the value is returned unchanged; an empty cwd stays
// empty so the terminal inherits the host's directory.
func ResolveCwd(cwd string, folders []string) string {
	if cwd == "" || len(folders) == 0 {
		return cwd
	}
	return strings.Replace(cwd, runconfig.WorkspaceFolderToken, folders[0], 1)
}

func copyEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
