// Package config provides 12-factor configuration for the run-configurations daemon.
//
// Configuration is loaded from environment variables with sensible defaults.
// cmd/server flags override the port and workspace roots.
//
// Configuration Sections:
//   - Server: HTTP listener (PORT, HOST)
//   - Workspace: project roots and the settings document
//     (WORKSPACE_ROOTS, SETTINGS_FILE, SETTINGS_BACKEND, SETTINGS_WATCH)
//   - Terminal: PTY defaults (TERMINAL_SHELL, TERMINAL_COLS, TERMINAL_ROWS,
//     TERMINAL_BUFFER_BYTES)
//   - Logging: LOG_LEVEL, LOG_DEV
//   - RateLimit: RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("listening on %s\n", cfg.Server.Addr())
package config
