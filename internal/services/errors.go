package services

import "errors"

// Sentinels handlers can match with errors.Is to pick a status code.
// Ownership failures are reported as ErrNotFound so a caller cannot tell
// another user's entity apart from a missing one.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }

func (e *serviceError) Unwrap() error { return e.kind }

func notFound(msg string) error {
	return &serviceError{kind: ErrNotFound, msg: msg}
}

func validation(msg string) error {
	return &serviceError{kind: ErrValidation, msg: msg}
}

func conflict(msg string) error {
	return &serviceError{kind: ErrConflict, msg: msg}
}
