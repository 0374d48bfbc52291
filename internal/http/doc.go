// Package http provides the REST API of the run configuration daemon.
//
// Endpoints:
//   - Health: /, /health, /metrics
//   - Configurations: /configurations, /configurations/:id, /configurations/:id/run
//   - Views: /tree, /refresh, /editor, /editor/messages
//   - Terminals: /sessions, /terminals, /terminals/:id/{output,input,resize}
//   - Stream: /stream (WebSocket, see package ws)
//
// Errors are returned as {"error": "..."}: unknown ids map to 404, an
// unconfirmed delete to 409 with a "prompt" field, malformed input to 400.
//
// Example Usage:
//
//	handlers := http.NewHandlers(svc, store, editor, manager, host, metrics, logger)
//	handlers.RegisterRoutes(router, hub.HandleConnection)
package http
