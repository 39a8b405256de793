package schedule

import "errors"

var (
	// ErrValidation is returned for malformed keys, values or dates.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a schedule file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrParse is returned when file content is not a valid schedule.
	ErrParse = errors.New("parse error")
	// ErrWrite is returned when persisting a schedule fails.
	ErrWrite = errors.New("write error")
)
