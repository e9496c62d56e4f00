// Package auth implements the account directory: accounts with ordered
// permission levels, password credentials, and bearer-token sessions.
//
// Accounts carry two role flags (is_staff, is_superuser) matching the
// persisted contract, but authorization decisions go through the ordered
// Level enum (Member < Staff < Superuser) so the two flags cannot be
// reasoned about independently. A superuser is always staff; Level()
// collapses the flag pair into the single comparable value the guard
// package consumes.
package auth
