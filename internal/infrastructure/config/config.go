package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Settings backends
const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Terminal  TerminalConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7878"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// WorkspaceConfig describes the project the daemon serves.
type WorkspaceConfig struct {
	Roots           []string `envconfig:"WORKSPACE_ROOTS"`
	SettingsFile    string   `envconfig:"SETTINGS_FILE" default:".runconfigs/settings.json"`
	SettingsBackend string   `envconfig:"SETTINGS_BACKEND" default:"file"`
	Watch           bool     `envconfig:"SETTINGS_WATCH" default:"true"`
}

// TerminalConfig holds PTY session defaults.
type TerminalConfig struct {
	Shell       string `envconfig:"TERMINAL_SHELL"`
	Cols        int    `envconfig:"TERMINAL_COLS" default:"80"`
	Rows        int    `envconfig:"TERMINAL_ROWS" default:"24"`
	BufferBytes int    `envconfig:"TERMINAL_BUFFER_BYTES" default:"1048576"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7878",
			Host: "127.0.0.1",
		},
		Workspace: WorkspaceConfig{
			SettingsFile:    ".runconfigs/settings.json",
			SettingsBackend: BackendFile,
			Watch:           true,
		},
		Terminal: TerminalConfig{
			Cols:        80,
			Rows:        24,
			BufferBytes: 1 << 20,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Workspace.SettingsBackend {
	case BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown settings backend %q", c.Workspace.SettingsBackend)
	}
	if c.Terminal.BufferBytes <= 0 {
		return fmt.Errorf("terminal buffer must be positive, got %d", c.Terminal.BufferBytes)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Folders returns the absolute workspace roots. The current directory is
// used when none are configured.
func (w WorkspaceConfig) Folders() ([]string, error) {
	roots := w.Roots
	if len(roots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		roots = []string{wd}
	}

	folders := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace root %s: %w", root, err)
		}
		folders = append(folders, abs)
	}
	return folders, nil
}

// SettingsPath resolves the settings file against the first workspace root.
func (w WorkspaceConfig) SettingsPath(folders []string) string {
	if filepath.IsAbs(w.SettingsFile) || len(folders) == 0 {
		return w.SettingsFile
	}
	return filepath.Join(folders[0], w.SettingsFile)
}

// ResolveShell returns the configured shell, $SHELL, or /bin/sh.
func (t TerminalConfig) ResolveShell() string {
	if t.Shell != "" {
		return t.Shell
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}
