// Package middleware provides HTTP middleware for session authentication
// and role-gated route protection.
package middleware
