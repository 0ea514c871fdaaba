/*
Package monitoring collects Prometheus metrics for the launcher.

Collectors live on a private registry so several servers (and tests) can
coexist in one process. The registry is served at /metrics.

Tracked:
  - HTTP requests by route template and status
  - installs by import source, deletes, catalog size
  - import latency and failures by reason
  - launches by app type and strategy, open presentation contexts
  - outbound lookups, change-stream connections

Usage:

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
