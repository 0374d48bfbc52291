// Package middleware provides the HTTP middleware of the run configuration
// daemon.
//
// Middleware stack includes:
//   - RequestID: X-Request-ID propagation (UUID)
//   - Logger: one zap line per request
//   - Recovery: panic recovery with a JSON 500
//   - CORS: cross-origin access for browser front ends
//   - RateLimit: per-IP token bucket, idle clients dropped
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
