package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no file to scan is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one file to scan")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent scans, effectively
	// stopping the scanning process.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidSensitivity is returned for a sensitivity outside
	// low, medium, high.
	ErrInvalidSensitivity = errors.New("invalid sensitivity: must be low, medium, or high")

	// ErrUnknownCategory is returned when the enabled category set names
	// a category the detection library does not provide.
	ErrUnknownCategory = errors.New("unknown detection category")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRiskThreshold is returned when the adversary risk
	// threshold falls outside [0, 100].
	ErrInvalidRiskThreshold = errors.New("invalid risk threshold: must be between 0 and 100")

	// ErrInvalidMaxIterations is returned when the redact-verify round
	// limit is below one.
	ErrInvalidMaxIterations = errors.New("invalid max iterations: must be at least 1")
)
