// Package server wires the daemon: settings backend and watcher, store,
// PTY host, execution manager, editor, commands, WebSocket hub and the
// gin router.
//
// Example Usage:
//
//	srv, err := server.NewServer(config.LoadOrDefault())
//	defer srv.Close()
//	err = srv.Run(ctx)
package server
