/*
Package monitoring provides Prometheus metrics for the run configuration
daemon.

# Metrics

  - HTTP requests (count, latency, sizes) labeled by route template
  - runconfig_executions_total{outcome="created|reused|failed"}
  - runconfig_terminals_active / runconfig_terminals_total
  - runconfig_store_operations_total{op,status} and runconfig_configurations
  - WebSocket connections and messages
  - runconfig_uptime_seconds

# Usage

	metrics := monitoring.NewMetricsWithRegistry(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

Tests use NewMetrics, which registers on a private registry so several
collectors can coexist in one process.
*/
package monitoring
