package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/veilcheck/veilcheck/internal/adversary"
	"github.com/veilcheck/veilcheck/internal/model"
)

// Default configuration values.
const (
	// DefaultBatchSize of 10 concurrent files balances throughput with
	// resource usage. Detection is CPU-bound regular expression work, so
	// values far above the core count add scheduling overhead without
	// improving wall-clock time.
	DefaultBatchSize = 10

	// DefaultSensitivity is medium: detections need confidence 0.7 or
	// higher to surface. Low sensitivity (0.9) suits noisy corpora where
	// false positives are expensive; high (0.5) suits compliance sweeps
	// where misses are expensive.
	DefaultSensitivity = model.SensitivityMedium

	// AppName is the application name used for XDG directory paths.
	AppName = "veilcheck"
)

// Config holds all configuration options for veilcheck.
// This struct is designed to be populated from CLI flags and the optional
// YAML config file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for the detection side; the adversarial verifier keeps its own Config
// because it is an independently reusable engine with its own defaults.
type Config struct {
	// Targets is the list of files to scan. Must contain at least one
	// path. Directories are not expanded here; the CLI does that before
	// populating this field.
	Targets []string

	// Categories is the enabled PII category set. Empty means all
	// built-in categories.
	Categories []model.Category

	// Sensitivity is the minimum-confidence filter applied to surfaced
	// detections. Detection always runs at maximum recall; this only
	// filters the report.
	Sensitivity model.Sensitivity

	// CustomPatterns holds user-supplied regular expressions registered
	// as custom detectors. Each is vetted by the pattern library before
	// use; invalid or dangerous expressions fail Validate.
	CustomPatterns []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of files processed concurrently when
	// scanning multiple targets.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .veilcheck in the current directory,
	// then in the XDG config directory, then in the home directory.
	ConfigFilePath string

	// FileConfig holds per-document overrides loaded from the config
	// file. Populated by LoadConfigFile and consulted per target.
	FileConfig *File

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for the SQLite database holding the
	// previous verification pass per document. When empty, results are
	// not persisted and the compare command has nothing to compare.
	// Defaults to the XDG data directory when persistence is requested.
	DBDir string

	// SaveToDB indicates whether to persist verification results.
	// Automatically set to true when DBDir is configured.
	SaveToDB bool

	// Adversary configures the adversarial verification engine.
	Adversary adversary.Config
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (sensitivity, batch size,
// the adversary threshold). This also serves as documentation of what the
// defaults are.
func NewConfig() *Config {
	return &Config{
		Sensitivity: DefaultSensitivity,
		BatchSize:   DefaultBatchSize,
		Adversary:   adversary.DefaultConfig(),
	}
}

// XDGDataDir returns the XDG data directory for veilcheck.
// On Linux: ~/.local/share/veilcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for veilcheck.
// On Linux: ~/.config/veilcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for veilcheck.
// On Linux: ~/.cache/veilcheck
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	switch c.Sensitivity {
	case model.SensitivityLow, model.SensitivityMedium, model.SensitivityHigh:
	default:
		return ErrInvalidSensitivity
	}

	known := make(map[model.Category]bool)
	for _, cat := range model.AllCategories() {
		known[cat] = true
	}
	for _, cat := range c.Categories {
		if !known[cat] {
			return ErrUnknownCategory
		}
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Adversary.RiskThreshold < 0 || c.Adversary.RiskThreshold > 100 {
		return ErrInvalidRiskThreshold
	}

	if c.Adversary.MaxIterations < 1 {
		return ErrInvalidMaxIterations
	}

	return nil
}
