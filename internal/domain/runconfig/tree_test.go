package runconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeItem(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RunConfiguration
		tooltip string
	}{
		{
			name:    "minimal",
			cfg:     RunConfiguration{ID: "config_1", Name: "Build", Command: "make"},
			tooltip: "Name: Build\nCommand: make",
		},
		{
			name: "all fields",
			cfg: RunConfiguration{
				ID:      "config_2",
				Name:    "Serve",
				Command: "npm",
				Args:    "run dev",
				Cwd:     "${workspaceFolder}/web",
				Env:     map[string]string{"PORT": "3000", "HOST": "0.0.0.0"},
			},
			tooltip: "Name: Serve\nCommand: npm\nArgs: run dev\nWorking Dir: ${workspaceFolder}/web\nEnvironment Variables: 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewTreeItem(tt.cfg)
			assert.Equal(t, tt.cfg.ID, item.ID)
			assert.Equal(t, tt.cfg.Name, item.Label)
			assert.Equal(t, tt.cfg.Command, item.Description)
			assert.Equal(t, TreeContextValue, item.ContextValue)
			assert.Equal(t, tt.tooltip, item.Tooltip)
		})
	}
}

func TestTree(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New(DTO{Name: "A", Command: "a"})))
	require.NoError(t, store.Save(ctx, New(DTO{Name: "B", Command: "b"})))

	items, err := Tree(ctx, store)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Label)
	assert.Equal(t, "b", items[1].Description)
}

func TestFilter(t *testing.T) {
	configs := []RunConfiguration{
		{Name: "build"},
		{Name: "build:prod"},
		{Name: "test"},
		{Name: "lint"},
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"build", "build:prod", "test", "lint"}},
		{"build*", []string{"build", "build:prod"}},
		{"{test,lint}", []string{"test", "lint"}},
		{"deploy", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Filter(configs, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	_, err := Filter(configs, "[")
	assert.Error(t, err)
}
