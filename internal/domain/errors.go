package domain

import "errors"

var (
	// ErrValidation marks request or entity validation failures.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks updates rejected because of the row's current state.
	ErrConflict = errors.New("conflict")
)
