package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/veilcheck/veilcheck/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// sensitivity filters which detections are listed.
	sensitivity model.Sensitivity

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithSensitivity sets the sensitivity filter for listed detections.
func WithSensitivity(s model.Sensitivity) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.sensitivity = s
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		sensitivity: model.SensitivityMedium,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDetections(&sb, report)
	w.writeVerification(&sb, report)
	w.writeWarnings(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         VEILCHECK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("File:           %s\n", report.FileID))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Sections:       %d\n", report.SectionCount))

	switch report.Status {
	case model.ScanStatusFailed:
		sb.WriteString(fmt.Sprintf("Status:         FAILED - %s\n", report.ErrorMessage))
	case model.ScanStatusPartial:
		sb.WriteString("Status:         PARTIAL (some sections skipped)\n")
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeDetections writes the category summary and the filtered detection
// list.
func (w *SimpleWriter) writeDetections(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("DETECTIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(report.Detections) == 0 {
		sb.WriteString("No PII detected.\n\n")
		return
	}

	counts := report.CountByCategory()
	for _, cat := range model.AllCategories() {
		if counts[cat] == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-16s %d\n", categoryTitle(cat)+":", counts[cat]))
	}
	sb.WriteString("\n")

	filtered := report.DetectionsAbove(w.sensitivity)
	sb.WriteString(fmt.Sprintf("Listed at %s sensitivity: %d of %d\n\n", w.sensitivity, len(filtered), len(report.Detections)))

	for _, d := range filtered {
		sb.WriteString(fmt.Sprintf("  [%s] section %s, bytes %d-%d (confidence %.2f)\n",
			categoryTitle(d.Category), d.SectionID, d.StartOffset, d.EndOffset, d.Confidence))
	}
	if len(filtered) > 0 {
		sb.WriteString("\n")
	}
}

// writeVerification writes the adversarial verification section.
func (w *SimpleWriter) writeVerification(sb *strings.Builder, report *model.ScanReport) {
	v := report.Verification
	if v == nil {
		return
	}

	sb.WriteString("ADVERSARIAL VERIFICATION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	analysis := v.Analysis
	sb.WriteString(fmt.Sprintf("  Re-identification confidence: %.0f/100 (%s)\n",
		analysis.ReidentificationConfidence, analysis.RiskLevel))
	sb.WriteString(fmt.Sprintf("  Candidate population:         %s (est. %.0f)\n",
		analysis.Fingerprint.PopulationDescription, analysis.Fingerprint.EstimatedPopulationSize))
	sb.WriteString(fmt.Sprintf("  Leaked attributes:            %d\n", len(analysis.LeakedAttributes)))
	sb.WriteString(fmt.Sprintf("  Searchable fragments:         %d\n", len(analysis.CrossReference.SearchableFragments)))

	if v.PassesThreshold {
		sb.WriteString(fmt.Sprintf("  Result:                       PASS (threshold %.0f)\n", v.RiskThreshold))
	} else {
		sb.WriteString(fmt.Sprintf("  Result:                       FAIL (threshold %.0f)\n", v.RiskThreshold))
	}

	if v.PreviousConfidence != nil {
		delta := analysis.ReidentificationConfidence - *v.PreviousConfidence
		sb.WriteString(fmt.Sprintf("  Change since last pass:       %+.0f (iteration %d)\n", delta, v.Iteration))
	}
	sb.WriteString("\n")

	w.writeSuggestions(sb, v)
}

// writeSuggestions lists the ranked mitigations.
func (w *SimpleWriter) writeSuggestions(sb *strings.Builder, v *model.VerificationResult) {
	if len(v.Suggestions) == 0 {
		return
	}

	sb.WriteString("SUGGESTED MITIGATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, s := range v.Suggestions {
		sb.WriteString(fmt.Sprintf("  %d. [%s] %s\n", s.Priority, s.Type, truncateString(s.OriginalPhrase, 50)))
		if s.SuggestedReplacement != "" {
			sb.WriteString(fmt.Sprintf("     replace with: %s\n", s.SuggestedReplacement))
		}
		sb.WriteString(fmt.Sprintf("     expected confidence drop: %.0f\n", s.ExpectedRiskReduction))
		if w.verbose && s.Rationale != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", s.Rationale))
		}
	}
	sb.WriteString("\n")
}

// writeWarnings writes recorded scan warnings.
func (w *SimpleWriter) writeWarnings(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Warnings) == 0 {
		return
	}

	sb.WriteString("WARNINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, warning := range report.Warnings {
		sb.WriteString(fmt.Sprintf("  - %s\n", warning))
	}
	sb.WriteString("\n")
}
