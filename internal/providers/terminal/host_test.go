package terminal

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansukim1125/run-configurations/internal/domain/execution"
	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/monitoring"
)

func newTestHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	h := NewHost(Config{Shell: "/bin/sh", BufferBytes: 64 * 1024}, opts...)
	t.Cleanup(func() { h.Close() })
	return h
}

// collect reads output until it contains want or the deadline passes
func collect(t *testing.T, h *Host, terminalID, want string) string {
	t.Helper()
	var out strings.Builder
	require.Eventually(t, func() bool {
		chunk, err := h.Read(terminalID)
		if err != nil {
			return false
		}
		out.Write(chunk)
		return strings.Contains(out.String(), want)
	}, 5*time.Second, 20*time.Millisecond)
	return out.String()
}

func TestCreateTerminalRunsCommands(t *testing.T) {
	h := newTestHost(t)
	dir := t.TempDir()

	term, err := h.CreateTerminal(context.Background(), execution.TerminalOptions{
		Name: "Run: Echo",
		Cwd:  dir,
		Env:  map[string]string{"RUNCONFIG_GREETING": "hello-from-env"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(term.ID(), "term_"))
	assert.Equal(t, "Run: Echo", term.Name())

	require.NoError(t, term.SendText(`echo "$RUNCONFIG_GREETING"; pwd`, true))

	out := collect(t, h, term.ID(), dir)
	assert.Contains(t, out, "hello-from-env")
}

func TestTerminalsListsLiveSessions(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	a, err := h.CreateTerminal(ctx, execution.TerminalOptions{Name: "A"})
	require.NoError(t, err)
	b, err := h.CreateTerminal(ctx, execution.TerminalOptions{Name: "B"})
	require.NoError(t, err)

	live := h.Terminals()
	require.Len(t, live, 2)
	assert.Equal(t, a.ID(), live[0].ID())
	assert.Equal(t, b.ID(), live[1].ID())

	require.NoError(t, h.Kill(a.ID()))
	live = h.Terminals()
	require.Len(t, live, 1)
	assert.Equal(t, b.ID(), live[0].ID())

	_, err = h.Read(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestShellExitEmitsCloseEvent(t *testing.T) {
	metrics := monitoring.NewMetrics()
	h := newTestHost(t, WithMetrics(metrics))

	var mu sync.Mutex
	var closed []string
	unsubscribe := h.OnDidCloseTerminal(func(term execution.Terminal) {
		mu.Lock()
		defer mu.Unlock()
		closed = append(closed, term.ID())
	})
	defer unsubscribe()

	term, err := h.CreateTerminal(context.Background(), execution.TerminalOptions{Name: "Exit"})
	require.NoError(t, err)
	require.NoError(t, term.SendText("exit", true))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(closed) == 1 && closed[0] == term.ID()
	}, 5*time.Second, 20*time.Millisecond)

	assert.Empty(t, h.Terminals())
	assert.ErrorIs(t, term.SendText("echo late", true), ErrSessionClosed)

	// exited sessions stay listed until killed
	infos := h.List()
	require.Len(t, infos, 1)
	assert.False(t, infos[0].Active)
	require.NoError(t, h.Kill(term.ID()))
	assert.Empty(t, h.List())
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	h := newTestHost(t)

	var calls int
	var mu sync.Mutex
	unsubscribe := h.OnDidCloseTerminal(func(execution.Terminal) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	unsubscribe()
	unsubscribe()

	term, err := h.CreateTerminal(context.Background(), execution.TerminalOptions{Name: "X"})
	require.NoError(t, err)
	require.NoError(t, h.Kill(term.ID()))

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestShowTracksFocus(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	a, err := h.CreateTerminal(ctx, execution.TerminalOptions{Name: "A"})
	require.NoError(t, err)
	b, err := h.CreateTerminal(ctx, execution.TerminalOptions{Name: "B"})
	require.NoError(t, err)

	a.Show(false)
	assert.Equal(t, a.ID(), h.Focused())

	b.Show(true)
	assert.Equal(t, a.ID(), h.Focused())

	b.Show(false)
	assert.Equal(t, b.ID(), h.Focused())

	require.NoError(t, h.Kill(b.ID()))
	assert.Empty(t, h.Focused())
}

func TestResize(t *testing.T) {
	h := newTestHost(t)

	term, err := h.CreateTerminal(context.Background(), execution.TerminalOptions{Name: "R"})
	require.NoError(t, err)

	require.NoError(t, h.Resize(term.ID(), 120, 40))
	info := h.List()[0]
	assert.Equal(t, 120, info.Cols)
	assert.Equal(t, 40, info.Rows)

	assert.Error(t, h.Resize(term.ID(), 0, 10))
	assert.ErrorIs(t, h.Resize("term_missing", 80, 24), ErrSessionNotFound)
}

func TestUnknownSession(t *testing.T) {
	h := NewHost(Config{})

	_, err := h.Read("term_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, h.Kill("term_missing"), ErrSessionNotFound)
	assert.ErrorIs(t, h.Write("term_missing", []byte("x")), ErrSessionNotFound)
}

func TestCreateTerminalBadShell(t *testing.T) {
	h := NewHost(Config{Shell: "/nonexistent/shell"})

	_, err := h.CreateTerminal(context.Background(), execution.TerminalOptions{Name: "X"})
	assert.Error(t, err)
	assert.Empty(t, h.Terminals())
}

func TestManagerOverPTYHost(t *testing.T) {
	h := newTestHost(t)
	m := execution.NewManager(h, execution.Folders{t.TempDir()})
	defer m.Dispose()

	ctx := context.Background()
	cfg := runconfigFixture()
	require.NoError(t, m.Execute(ctx, cfg))
	first := m.Sessions()[cfg.ID]
	require.NotEmpty(t, first)

	require.NoError(t, m.Execute(ctx, cfg))
	assert.Equal(t, first, m.Sessions()[cfg.ID])
	assert.Len(t, h.Terminals(), 1)

	collect(t, h, first, "ping-pong")

	require.NoError(t, h.Kill(first))
	require.Eventually(t, func() bool { return len(m.Sessions()) == 0 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, m.Execute(ctx, cfg))
	assert.NotEqual(t, first, m.Sessions()[cfg.ID])
}

func runconfigFixture() runconfig.RunConfiguration {
	return runconfig.New(runconfig.DTO{ID: "config_ping", Name: "Ping", Command: "echo", Args: "ping-pong"})
}
