// Package middleware provides navigation middleware for the router.
//
// This package includes:
//   - OpenTelemetry tracing of every navigation
//   - Prometheus metrics for navigations and bridge connections
//   - structured logging with log/slog
//
// # OpenTelemetry Middleware
//
// Every navigation gets a span carrying the requested path, the mode, the
// matched pattern and view. The span context replaces Navigation.Context so
// later middleware inherit it.
//
//	r, err := router.New(routes, history.Web, backend,
//	    router.WithMiddleware(
//	        middleware.OpenTelemetry(middleware.WithTracerName("shop")),
//	    ),
//	)
//
// The tracer comes from the global provider. Configure it with
// otel.SetTracerProvider before creating routers.
//
// # Prometheus Metrics
//
// Metrics are created once per registry and shared by every router the
// shell creates:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("shop"))
//	r, err := router.New(routes, history.Web, backend,
//	    router.WithMiddleware(m.Middleware()))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Collected series:
//   - viewrouter_navigations_total{mode,outcome}
//   - viewrouter_navigation_duration_seconds{mode}
//   - viewrouter_active_connections
//   - viewrouter_render_errors_total
//   - viewrouter_bridge_errors_total{type}
package middleware
