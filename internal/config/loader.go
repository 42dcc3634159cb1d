package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/veilcheck/veilcheck/internal/adversary"
	"github.com/veilcheck/veilcheck/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".veilcheck"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// DocumentConfig holds scan settings for one document or document pattern.
// This allows tightening or relaxing detection per file without separate
// invocations.
type DocumentConfig struct {
	// Categories overrides the global enabled category set for matching
	// documents. Empty means inherit.
	Categories []model.Category `yaml:"categories,omitempty"`

	// Sensitivity overrides the global sensitivity for matching
	// documents. Empty means inherit.
	Sensitivity model.Sensitivity `yaml:"sensitivity,omitempty"`

	// CustomPatterns are additional custom detectors applied to matching
	// documents, on top of the global set.
	CustomPatterns []string `yaml:"customPatterns,omitempty"`

	// SkipVerification disables the adversarial pass for matching
	// documents. Detection and simulation still run.
	SkipVerification bool `yaml:"skipVerification,omitempty"`
}

// File represents the structure of the .veilcheck configuration file.
type File struct {
	// Documents maps path glob patterns to their overrides. Patterns are
	// matched against the target path and, failing that, its base name.
	Documents map[string]DocumentConfig `yaml:"documents,omitempty"`

	// Defaults contains the document configuration applied to all targets
	// unless overridden by a matching Documents entry.
	Defaults DocumentConfig `yaml:"defaults,omitempty"`

	// Adversary overrides the verification engine configuration.
	// Nil means keep the built-in defaults.
	Adversary *adversary.Config `yaml:"adversary,omitempty"`
}

// LoadConfigFile loads scan configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Documents == nil {
		cf.Documents = make(map[string]DocumentConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .veilcheck in the current directory
// 3. Look for .veilcheck in the XDG config directory
// 4. Look for .veilcheck in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// GetDocumentConfig returns the configuration for a target path.
// It merges the first matching document override over the defaults.
// Glob patterns are tried against the full path first, then the base name,
// so "reports/*.txt" and "*.txt" both behave as expected. Patterns are
// checked in lexical order to keep the result deterministic when several
// match.
func (cf *File) GetDocumentConfig(path string) DocumentConfig {
	result := cf.Defaults

	patterns := make([]string, 0, len(cf.Documents))
	for pattern := range cf.Documents {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		if !globMatches(pattern, path) {
			continue
		}
		docConfig := cf.Documents[pattern]
		if len(docConfig.Categories) > 0 {
			result.Categories = docConfig.Categories
		}
		if docConfig.Sensitivity != "" {
			result.Sensitivity = docConfig.Sensitivity
		}
		if len(docConfig.CustomPatterns) > 0 {
			result.CustomPatterns = append(result.CustomPatterns, docConfig.CustomPatterns...)
		}
		if docConfig.SkipVerification {
			result.SkipVerification = true
		}
		break
	}

	return result
}

func globMatches(pattern, path string) bool {
	if ok, err := filepath.Match(pattern, path); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && ok
}
