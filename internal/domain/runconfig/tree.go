package runconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TreeContextValue marks sidebar items that accept run/edit/delete.
const TreeContextValue = "runConfiguration"

// TreeItem is one sidebar entry
type TreeItem struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Description  string `json:"description"`
	Tooltip      string `json:"tooltip"`
	ContextValue string `json:"context_value"`
}

// NewTreeItem renders cfg for the sidebar
func NewTreeItem(cfg RunConfiguration) TreeItem {
	return TreeItem{
		ID:           cfg.ID,
		Label:        cfg.Name,
		Description:  cfg.Command,
		Tooltip:      tooltip(cfg),
		ContextValue: TreeContextValue,
	}
}

// Tree returns sidebar items for every stored configuration
func Tree(ctx context.Context, store *Store) ([]TreeItem, error) {
	configs, err := store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]TreeItem, len(configs))
	for i, cfg := range configs {
		items[i] = NewTreeItem(cfg)
	}
	return items, nil
}

// Filter keeps configurations whose name matches a doublestar glob
// ("build*", "{test,lint}"). An empty pattern keeps everything.
func Filter(configs []RunConfiguration, pattern string) ([]RunConfiguration, error) {
	if pattern == "" {
		return configs, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	out := make([]RunConfiguration, 0, len(configs))
	for _, cfg := range configs {
		if ok, _ := doublestar.Match(pattern, cfg.Name); ok {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func tooltip(cfg RunConfiguration) string {
	parts := []string{
		"Name: " + cfg.Name,
		"Command: " + cfg.Command,
	}
	if cfg.Args != "" {
		parts = append(parts, "Args: "+cfg.Args)
	}
	if cfg.Cwd != "" {
		parts = append(parts, "Working Dir: "+cfg.Cwd)
	}
	if n := len(cfg.Env); n > 0 {
		parts = append(parts, fmt.Sprintf("Environment Variables: %d", n))
	}
	return strings.Join(parts, "\n")
}
