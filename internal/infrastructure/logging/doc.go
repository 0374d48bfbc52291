// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON lines on stderr
//   - Development: colored console output
//
// Components receive a named *zap.Logger (logger.Component("terminal")) and
// use OrNop so that a nil logger in tests is safe.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Daemon starting", zap.String("addr", "127.0.0.1:7878"))
package logging
