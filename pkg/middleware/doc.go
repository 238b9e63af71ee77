// Package middleware provides HTTP middleware for statecell servers:
// Prometheus request metrics and OpenTelemetry request tracing.
//
// Both are standard func(http.Handler) http.Handler wrappers and compose
// with chi:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.Prometheus(middleware.WithNamespace("myapp")))
//
// The route pattern (not the raw URL) is used as the path label, so
// parameterized routes do not blow up metric cardinality.
package middleware
