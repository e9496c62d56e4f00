// Package roles implements the role management service: toggling an
// account's staff and superuser levels under the self-lockout and
// last-superuser invariants.
//
// Every toggle is a single transaction that locks the target row before
// deciding, so two concurrent toggles on the same account cannot race to a
// stale flag value. The demote path additionally locks the remaining
// superuser rows so concurrent demotions cannot jointly empty the superuser
// set.
package roles
