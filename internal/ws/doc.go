// Package ws streams change notifications to clients over WebSocket.
//
// Message Types (Server → Client):
//   - connected: sent once after the upgrade
//   - configurations_changed: the stored list changed or a refresh was requested
//   - terminal_closed: a terminal exited or was killed (terminal_id set)
//   - pong: reply to ping
//   - error: the client sent an unknown message type
//
// Message Types (Client → Server):
//   - ping: keep-alive
//
// Hub implements commands.Notifier and is subscribed to host close events
// by the server wiring.
package ws
