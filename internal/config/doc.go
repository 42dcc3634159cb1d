// Package config provides configuration structures and utilities for
// veilcheck. It defines the main options for PII detection, redaction
// simulation, adversarial verification, and report generation.
package config
