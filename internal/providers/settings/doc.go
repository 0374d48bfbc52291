// Package settings provides the workspace settings document that run
// configurations are persisted in.
//
// A settings document is a flat map of keys to JSON-compatible values.
// Two backends implement Store:
//   - Memory: process-local, used by tests and SETTINGS_BACKEND=memory
//   - File: one file per workspace; JSON (sonic), YAML (goccy/go-yaml)
//     or TOML (go-toml) chosen by extension
//
// Change notification:
//   - Update notifies subscribers of the key once, synchronously
//   - File.Watch reports edits made by other processes (fsnotify), only
//     for keys whose value actually changed
//
// Example Usage:
//
//	store, err := settings.NewFile("/proj/.runconfigs/settings.yaml")
//	err = store.Watch(ctx)
//	unsubscribe := store.Subscribe("runConfigurations.configurations", func(e settings.ChangeEvent) {
//		// re-read
//	})
package settings
