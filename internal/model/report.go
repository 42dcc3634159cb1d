package model

import "time"

// ScanStatus is the terminal state of a single file's scan.
type ScanStatus string

// Scan statuses. A batch never aborts because one file failed; the failure
// is recorded here and the batch continues.
const (
	ScanStatusOK      ScanStatus = "ok"
	ScanStatusPartial ScanStatus = "partial"
	ScanStatusFailed  ScanStatus = "failed"
)

// ScanReport is the per-file scan result.
//
// Design decision: We use a single struct accumulated by pipeline steps
// rather than separate per-step results because steps build on each other
// (detection feeds simulation feeds verification) and a single struct
// simplifies serialization and history storage.
type ScanReport struct {
	// FileID identifies the scanned file, typically its path.
	FileID string `json:"file_id"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Status records whether the scan completed, partially completed
	// (some sections skipped), or failed outright.
	Status ScanStatus `json:"status"`

	// Sections holds the parsed content sections.
	Sections []ContentSection `json:"-"` // Excluded from JSON due to size

	// SectionCount is the number of sections scanned.
	SectionCount int `json:"section_count"`

	// Detections holds all PII detections at maximum recall. Sensitivity
	// filtering happens at display time, never by rescanning.
	Detections []Detection `json:"detections,omitempty"`

	// RedactedSections is the simulated "what remains" view, present only
	// after the simulation step ran.
	RedactedSections []ContentSection `json:"-"` // Excluded from JSON due to size

	// Verification is the adversarial verification result, present only
	// when adversarial analysis ran.
	Verification *VerificationResult `json:"verification,omitempty"`

	// ProcessingTime is the wall-clock duration of the detection pass.
	ProcessingTime time.Duration `json:"processing_time_ms"`

	// EngineVersion identifies the detection engine that produced the
	// detections, for reproducibility of confidence mappings.
	EngineVersion string `json:"engine_version,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Warnings records non-fatal problems such as skipped malformed
	// sections.
	Warnings []string `json:"warnings,omitempty"`

	// Error contains any error that failed the scan.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates a report for the given file with status OK.
func NewScanReport(fileID string) *ScanReport {
	return &ScanReport{
		FileID:      fileID,
		DateScanned: time.Now(),
		Status:      ScanStatusOK,
	}
}

// AddWarning records a non-fatal problem and downgrades an OK status to
// partial. Failed stays failed.
func (r *ScanReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.Status == ScanStatusOK {
		r.Status = ScanStatusPartial
	}
}

// Fail marks the scan failed and records the error.
func (r *ScanReport) Fail(err error) {
	r.Status = ScanStatusFailed
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// DetectionsAbove returns the detections meeting the sensitivity threshold.
// The underlying detection set is untouched, so the caller can re-filter at
// a different sensitivity without rescanning.
func (r *ScanReport) DetectionsAbove(s Sensitivity) []Detection {
	threshold := s.Threshold()
	out := make([]Detection, 0, len(r.Detections))
	for _, d := range r.Detections {
		if d.Confidence >= threshold {
			out = append(out, d)
		}
	}
	return out
}

// CountByCategory returns detection counts keyed by category.
func (r *ScanReport) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for _, d := range r.Detections {
		counts[d.Category]++
	}
	return counts
}

// ScrubValues removes raw matched values from all detections.
// Call this once downstream processing (simulation, verification, redaction
// application) has consumed the values.
func (r *ScanReport) ScrubValues() {
	for i := range r.Detections {
		r.Detections[i].Scrub()
	}
}
