package rules

import "errors"

var (
	// ErrConditionDataMissing marks a condition whose input (battery level or
	// price) was unavailable. The condition fails closed.
	ErrConditionDataMissing = errors.New("condition data missing")
	// ErrMalformedRule marks a rule or condition that cannot be evaluated.
	ErrMalformedRule = errors.New("malformed rule")
)
