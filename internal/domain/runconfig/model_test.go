package runconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewDefaults(t *testing.T) {
	cfg := New(DTO{Name: "x", Command: "y"})

	assert.True(t, strings.HasPrefix(cfg.ID, "config_"))
	assert.Equal(t, "x", cfg.Name)
	assert.Equal(t, "y", cfg.Command)
	assert.Equal(t, "", cfg.Args)
	assert.Equal(t, map[string]string{}, cfg.Env)
	assert.Equal(t, WorkspaceFolderToken, cfg.Cwd)
}

func TestNewKeepsProvidedFields(t *testing.T) {
	dto := DTO{
		ID:      "config_fixed",
		Name:    "Build",
		Command: "npm",
		Args:    "run build",
		Env:     map[string]string{"NODE_ENV": "production"},
		Cwd:     "/srv/app",
	}

	cfg := New(dto)
	assert.Equal(t, RunConfiguration{
		ID:      "config_fixed",
		Name:    "Build",
		Command: "npm",
		Args:    "run build",
		Env:     map[string]string{"NODE_ENV": "production"},
		Cwd:     "/srv/app",
	}, cfg)

	// env is copied, not aliased
	dto.Env["NODE_ENV"] = "development"
	assert.Equal(t, "production", cfg.Env["NODE_ENV"])
}

func TestNewNeverRejects(t *testing.T) {
	cfg := New(DTO{})
	assert.NotEmpty(t, cfg.ID)
	assert.Empty(t, cfg.Name)
	assert.Empty(t, cfg.Command)
}

func TestNewGeneratesDistinctIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		cfg := New(DTO{Name: "x"})
		assert.False(t, seen[cfg.ID], "duplicate id %s", cfg.ID)
		seen[cfg.ID] = true
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := New(DTO{Name: "x", Env: map[string]string{"A": "1"}})
	clone := cfg.Clone()
	clone.Env["A"] = "2"
	assert.Equal(t, "1", cfg.Env["A"])
}

func TestDTORoundTrip(t *testing.T) {
	cfg := New(DTO{Name: "x", Command: "y", Env: map[string]string{"K": "V"}})
	assert.Equal(t, cfg, New(cfg.DTO()))
}

func TestEmptyTemplate(t *testing.T) {
	tmpl := EmptyTemplate()
	assert.Empty(t, tmpl.ID)
	assert.Empty(t, tmpl.Name)
	assert.Empty(t, tmpl.Command)
	assert.Empty(t, tmpl.Args)
	assert.Equal(t, map[string]string{}, tmpl.Env)
	assert.Equal(t, "${workspaceFolder}", tmpl.Cwd)
}
