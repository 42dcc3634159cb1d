// Package detect implements the PII detection engine. It applies the
// pattern library across document sections, resolves overlapping matches by
// category priority, and yields confidence-scored detections.
//
// Detection always runs at maximum recall; sensitivity thresholds are
// applied downstream on the same result set so that changing sensitivity
// never requires rescanning.
package detect
