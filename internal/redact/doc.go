// Package redact implements the redaction simulator: it splices a uniform
// placeholder marker over selected detection spans, producing the
// privacy-preserving "what remains" view consumed by adversarial analysis.
// Raw detection values never travel past this package.
package redact
