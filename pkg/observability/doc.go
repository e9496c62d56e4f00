// Package observability provides structured logging and Prometheus metrics
// for the opsdesk service.
//
// Logging uses the stdlib slog JSON handler behind a small wrapper so that
// request-scoped fields (request ID, acting account) can be threaded through
// context. Metrics cover the HTTP surface, store operations, and a handful of
// business gauges (account and record counts).
package observability
