// Package log provides secure logging functionality with automatic
// sanitization of personal data, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of PII values (matched text, SSNs, emails)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler sanitizes personal data in log output:
//   - Attribute keys that carry matched text (value, match, phrase, context)
//   - Values shaped like SSNs, card numbers, emails, or phone numbers,
//     regardless of key name
//
// Even in verbose mode, personal data is masked. Scanning a document for
// PII must never copy that PII into a log file that outlives the scan.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("detection recorded",
//	    "category", "ssn",
//	    "value", "123-45-6789", // sanitized to ***REDACTED***
//	)
//
//	slog.SetDefault(logger)
package log
