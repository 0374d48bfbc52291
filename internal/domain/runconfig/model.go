package runconfig

import (
	"github.com/mansukim1125/run-configurations/internal/shared/id"
)

// WorkspaceFolderToken stands for the first workspace root in a cwd.
const WorkspaceFolderToken = "${workspaceFolder}"

// RunConfiguration is a named command launched in its own terminal.
type RunConfiguration struct {
	ID      string            `json:"id,omitempty"`
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    string            `json:"args"`
	Env     map[string]string `json:"env"`
	Cwd     string            `json:"cwd"`
}

// DTO is the persisted and wire shape. Empty optional fields are defaulted
// by New.
type DTO struct {
	ID      string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string            `json:"name" yaml:"name"`
	Command string            `json:"command" yaml:"command"`
	Args    string            `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
}

// New builds a RunConfiguration from a possibly partial DTO. It never
// rejects input: a missing id is generated, args default to "", env to an
// empty map and cwd to WorkspaceFolderToken.
func New(dto DTO) RunConfiguration {
	cfg := RunConfiguration{
		ID:      dto.ID,
		Name:    dto.Name,
		Command: dto.Command,
		Args:    dto.Args,
		Env:     copyEnv(dto.Env),
		Cwd:     dto.Cwd,
	}
	if cfg.ID == "" {
		cfg.ID = id.NewConfigID().String()
	}
	if cfg.Cwd == "" {
		cfg.Cwd = WorkspaceFolderToken
	}
	return cfg
}

// DTO returns the full record in persisted form
func (c RunConfiguration) DTO() DTO {
	return DTO{
		ID:      c.ID,
		Name:    c.Name,
		Command: c.Command,
		Args:    c.Args,
		Env:     copyEnv(c.Env),
		Cwd:     c.Cwd,
	}
}

// Clone returns a deep copy
func (c RunConfiguration) Clone() RunConfiguration {
	c.Env = copyEnv(c.Env)
	return c
}

// EmptyTemplate is what the editor shows for a new configuration. It has
// no ID until it is saved.
func EmptyTemplate() RunConfiguration {
	return RunConfiguration{
		Env: map[string]string{},
		Cwd: WorkspaceFolderToken,
	}
}

func copyEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
