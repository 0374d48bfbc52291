package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansukim1125/run-configurations/internal/infrastructure/config"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/logging"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/server"
)

func startDaemon(t *testing.T) string {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace.Roots = []string{t.TempDir()}
	cfg.Workspace.SettingsBackend = config.BackendMemory
	cfg.Workspace.Watch = false
	cfg.RateLimit.Enabled = false

	srv, err := server.NewServer(cfg, server.WithLogger(logging.NewNop()), server.WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func runctl(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--addr", addr}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddShowEditDelete(t *testing.T) {
	addr := startDaemon(t)

	out, err := runctl(t, addr, "add", "--name", "Build", "--command", "make", "--args", "all", "--env", "CI=1")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(id, "config_"), id)

	out, err = runctl(t, addr, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Build")
	assert.Contains(t, out, "CI:")
	assert.Contains(t, out, "${workspaceFolder}")

	_, err = runctl(t, addr, "edit", id, "--args", "")
	require.NoError(t, err)

	out, err = runctl(t, addr, "list", "--name", "B*")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "make")
	assert.NotContains(t, out, "make all")

	_, err = runctl(t, addr, "delete", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Delete configuration "Build"?`)

	_, err = runctl(t, addr, "delete", "--yes", id)
	require.NoError(t, err)

	out, err = runctl(t, addr, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)
}

func TestShowMissing(t *testing.T) {
	addr := startDaemon(t)
	_, err := runctl(t, addr, "show", "config_missing")
	assert.Error(t, err)
}

func TestParseEnv(t *testing.T) {
	env, err := parseEnv([]string{"A=1", "B=x=y", "C="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, env)

	env, err = parseEnv(nil)
	require.NoError(t, err)
	assert.Empty(t, env)

	for _, bad := range []string{"A", "=1"} {
		_, err := parseEnv([]string{bad})
		assert.Error(t, err, bad)
	}
}
