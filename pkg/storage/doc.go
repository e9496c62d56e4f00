// Package storage opens the PostgreSQL connection pool and applies the
// versioned in-code schema migrations for the identity and record stores.
package storage
