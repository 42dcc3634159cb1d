package pattern

import "errors"

// Custom-pattern admission errors.
//
// Design decision: We use package-level sentinel errors so callers can use
// errors.Is() for programmatic handling while the wrapped form still carries
// the offending expression.
var (
	// ErrInvalidPattern is the base error for any custom pattern rejected
	// by the admission gate.
	ErrInvalidPattern = errors.New("invalid custom pattern")

	// ErrPatternTooLong is returned when a custom pattern exceeds the
	// 500 character limit.
	ErrPatternTooLong = errors.New("invalid custom pattern: exceeds 500 characters")

	// ErrPatternDangerous is returned when a custom pattern matches a
	// known catastrophic-backtracking shape.
	ErrPatternDangerous = errors.New("invalid custom pattern: potentially catastrophic repetition")
)
