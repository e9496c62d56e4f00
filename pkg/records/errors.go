package records

import "errors"

var (
	// ErrNotFound is returned when the referenced record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrNotCreator is returned when the creator-only policy is active and
	// the caller tries to mutate a record created by someone else
	ErrNotCreator = errors.New("only the record's creator may modify it")
)
