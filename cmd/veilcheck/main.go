// Package main provides the entry point for the veilcheck CLI.
//
// Veilcheck is a PII detection and redaction-verification tool for text
// documents. It locates personally identifiable information, simulates
// redacting it, and then attacks the redacted text the way a motivated
// adversary would to estimate the remaining re-identification risk.
//
// Usage:
//
//	veilcheck scan <file>
//	veilcheck verify <redacted-file>
//
// See --help for all available options.
package main

import "github.com/joho/godotenv"

// main is the entry point for veilcheck.
func main() {
	// Seed the environment from an optional .env file before any flag or
	// config processing. A missing file is not an error.
	_ = godotenv.Load() //nolint:errcheck // Optional file
	Execute()
}
