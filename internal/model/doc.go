// Package model defines the core data structures shared across veilcheck:
// document sections, PII detections, adversarial analysis results, and the
// per-file scan report. It has no dependencies on other internal packages
// so that every layer can import it freely.
package model
