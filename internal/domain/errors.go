package domain

import "errors"

var (
	ErrInvalidThrow    = errors.New("throw outside board domain")
	ErrTooManyThrows   = errors.New("more than three throws in a visit")
	ErrInvalidScore    = errors.New("score must not be negative")
	ErrEmptyRoster     = errors.New("roster has no players")
	ErrDuplicatePlayer = errors.New("duplicate player id in roster")
	ErrUnknownPlayer   = errors.New("player not found")
)
