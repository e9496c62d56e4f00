// Package records implements the record store and query service: free-text
// listing plus staff-gated create/update/delete.
//
// Search is plain case-insensitive substring containment across title,
// description, and creator username, pushed to the store as OR'd LIKE
// clauses. No tokenization, no ranking.
package records
