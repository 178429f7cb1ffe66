package model

import "errors"

// Sentinel errors form the engine's error taxonomy. Callers match them with
// errors.Is; anything else is an opaque storage/infrastructure failure.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
)
