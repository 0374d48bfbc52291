package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/mansukim1125/run-configurations/internal/domain/execution"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
	"github.com/mansukim1125/run-configurations/internal/shared/id"
)

// drainTimeout bounds how long an exited shell's remaining output is read
// when a background child still holds the PTY open.
const drainTimeout = time.Second

// Config holds PTY defaults
type Config struct {
	Shell       string
	Cols        int
	Rows        int
	BufferBytes int
}

// DefaultConfig returns the host defaults
func DefaultConfig() Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return Config{
		Shell:       shell,
		Cols:        80,
		Rows:        24,
		BufferBytes: 1 << 20,
	}
}

// Host runs terminals as shells in pseudo-terminals. It implements
// execution.Host.
type Host struct {
	cfg     Config
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string
	focused  string

	listenersMu sync.Mutex
	listeners   map[int]func(execution.Terminal)
	nextKey     int
}

var _ execution.Host = (*Host)(nil)

// Option configures a Host
type Option func(*Host)

// WithLogger sets the host logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics records terminal lifecycle metrics
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(h *Host) {
		h.metrics = metrics
	}
}

// NewHost creates a PTY host. Zero fields in cfg take DefaultConfig values.
func NewHost(cfg Config, opts ...Option) *Host {
	defaults := DefaultConfig()
	if cfg.Shell == "" {
		cfg.Shell = defaults.Shell
	}
	if cfg.Cols <= 0 {
		cfg.Cols = defaults.Cols
	}
	if cfg.Rows <= 0 {
		cfg.Rows = defaults.Rows
	}
	if cfg.BufferBytes <= 0 {
		cfg.BufferBytes = defaults.BufferBytes
	}

	h := &Host{
		cfg:       cfg,
		logger:    zap.NewNop(),
		sessions:  make(map[string]*Session),
		listeners: make(map[int]func(execution.Terminal)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateTerminal starts the shell in a new PTY
func (h *Host) CreateTerminal(ctx context.Context, opts execution.TerminalOptions) (execution.Terminal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(h.cfg.Shell)
	// empty inherits the daemon's directory
	cmd.Dir = opts.Cwd

	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")
	for key, value := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(h.cfg.Rows),
		Cols: uint16(h.cfg.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	session := &Session{
		id:         id.NewTerminalID().String(),
		name:       opts.Name,
		shell:      h.cfg.Shell,
		workingDir: opts.Cwd,
		startedAt:  time.Now(),
		host:       h,
		cmd:        cmd,
		ptmx:       ptmx,
		output:     NewBuffer(h.cfg.BufferBytes),
		cols:       h.cfg.Cols,
		rows:       h.cfg.Rows,
		readerDone: make(chan struct{}),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	h.sessions[session.id] = session
	h.order = append(h.order, session.id)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.TerminalOpened()
	}

	go h.readOutput(session)
	go h.monitorProcess(session)

	h.logger.Info("Terminal created",
		zap.String("terminal_id", session.id),
		zap.String("name", session.name),
		zap.String("cwd", session.workingDir),
		zap.Int("pid", cmd.Process.Pid),
	)
	return session, nil
}

// Terminals returns the live terminals in creation order
func (h *Host) Terminals() []execution.Terminal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]execution.Terminal, 0, len(h.order))
	for _, tid := range h.order {
		if s := h.sessions[tid]; s != nil && s.Active() {
			out = append(out, s)
		}
	}
	return out
}

// OnDidCloseTerminal registers fn for terminal exits. fn runs on the
// goroutine that observed the exit, without host locks held.
func (h *Host) OnDidCloseTerminal(fn func(execution.Terminal)) func() {
	h.listenersMu.Lock()
	h.nextKey++
	key := h.nextKey
	h.listeners[key] = fn
	h.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.listenersMu.Lock()
			delete(h.listeners, key)
			h.listenersMu.Unlock()
		})
	}
}

// Get returns a session by id, live or exited
func (h *Host) Get(terminalID string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[terminalID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, terminalID)
	}
	return s, nil
}

// Read drains the buffered output of a session. Output of an exited
// session stays readable until it is killed.
func (h *Host) Read(terminalID string) ([]byte, error) {
	s, err := h.Get(terminalID)
	if err != nil {
		return nil, err
	}
	return s.output.ReadAll(), nil
}

// Write sends raw input to a session
func (h *Host) Write(terminalID string, input []byte) error {
	s, err := h.Get(terminalID)
	if err != nil {
		return err
	}
	return s.write(input)
}

// Resize changes terminal dimensions
func (h *Host) Resize(terminalID string, cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid terminal size %dx%d", cols, rows)
	}
	s, err := h.Get(terminalID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: %s", ErrSessionClosed, terminalID)
	}

	s.cols = cols
	s.rows = rows

	return pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Kill terminates a session, waits for it to close and forgets it
func (h *Host) Kill(terminalID string) error {
	s, err := h.Get(terminalID)
	if err != nil {
		return err
	}

	if s.Active() && s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			h.logger.Warn("Failed to kill terminal process", zap.String("terminal_id", terminalID), zap.Error(err))
		}
	}
	<-s.done

	h.mu.Lock()
	delete(h.sessions, terminalID)
	h.removeOrder(terminalID)
	if h.focused == terminalID {
		h.focused = ""
	}
	h.mu.Unlock()

	h.logger.Info("Terminal killed", zap.String("terminal_id", terminalID))
	return nil
}

// List returns every known session, live or exited, in creation order
func (h *Host) List() []SessionInfo {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.order))
	for _, tid := range h.order {
		sessions = append(sessions, h.sessions[tid])
	}
	focused := h.focused
	h.mu.RUnlock()

	out := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		out[i] = s.info(s.id == focused)
	}
	return out
}

// Focused returns the id of the focused terminal, or "" when none
func (h *Host) Focused() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.focused
}

// Close kills every session. Used on daemon shutdown.
func (h *Host) Close() error {
	h.mu.RLock()
	ids := append([]string(nil), h.order...)
	h.mu.RUnlock()

	sort.Strings(ids)
	for _, tid := range ids {
		if err := h.Kill(tid); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

func (h *Host) show(s *Session, preserveFocus bool) {
	if preserveFocus {
		return
	}
	h.mu.Lock()
	h.focused = s.id
	h.mu.Unlock()
}

func (h *Host) removeOrder(terminalID string) {
	for i, tid := range h.order {
		if tid == terminalID {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

// readOutput copies PTY output into the session buffer until the PTY is
// closed or the shell side hangs up.
func (h *Host) readOutput(s *Session) {
	defer close(s.readerDone)

	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.output.Write(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, syscall.EIO) {
				h.logger.Debug("Terminal read ended", zap.String("terminal_id", s.id), zap.Error(err))
			}
			return
		}
	}
}

// monitorProcess waits for the shell to exit, then releases the PTY and
// emits the close event.
func (h *Host) monitorProcess(s *Session) {
	_ = s.cmd.Wait()

	select {
	case <-s.readerDone:
	case <-time.After(drainTimeout):
	}

	h.finish(s)
}

func (h *Host) finish(s *Session) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.ptmx.Close()
		<-s.readerDone

		if h.metrics != nil {
			h.metrics.TerminalClosed()
		}
		h.logger.Info("Terminal closed", zap.String("terminal_id", s.id), zap.String("name", s.name))

		h.listenersMu.Lock()
		fns := make([]func(execution.Terminal), 0, len(h.listeners))
		for _, fn := range h.listeners {
			fns = append(fns, fn)
		}
		h.listenersMu.Unlock()

		for _, fn := range fns {
			fn(s)
		}
		close(s.done)
	})
}
