package registry

import "errors"

// Sentinel errors for caller-contract violations. Lookups that merely
// find nothing (unknown capability, unknown agent id) return zero
// values instead.
var (
	ErrEmptyArgument      = errors.New("required argument is empty")
	ErrInvalidProficiency = errors.New("proficiency must be between 0 and 1")
)
