// Package api wires the HTTP surface: session endpoints under /auth and
// the staff-gated management endpoints under /manage.
//
// Handlers stay thin; authorization and invariants live in the service
// packages (pkg/guard, pkg/roles, pkg/records) and handlers only translate
// domain errors to HTTP statuses.
package api
