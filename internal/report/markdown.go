package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/veilcheck/veilcheck/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// sensitivity filters which detections are listed.
	sensitivity model.Sensitivity
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownSensitivity sets the sensitivity filter for the detection
// table.
func WithMarkdownSensitivity(s model.Sensitivity) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.sensitivity = s
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:  newBaseWriter(output),
		sensitivity: model.SensitivityMedium,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeDetections(md, report)
	w.writeVerification(md, report)
	w.writeWarnings(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Veilcheck Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + report.FileID + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Sections", strconv.Itoa(report.SectionCount)},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.ScanReport) string {
	switch report.Status {
	case model.ScanStatusFailed:
		return "❌ Failed - " + report.ErrorMessage
	case model.ScanStatusPartial:
		return "⚠️ Partial (some sections skipped)"
	default:
		return "✅ Complete"
	}
}

// writeDetections writes the category summary and the filtered detection
// table.
func (w *MarkdownWriter) writeDetections(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Detections")
	md.PlainText("")

	if len(report.Detections) == 0 {
		md.PlainText("No PII detected.")
		md.PlainText("")
		return
	}

	counts := report.CountByCategory()
	var rows [][]string
	for _, cat := range model.AllCategories() {
		if counts[cat] == 0 {
			continue
		}
		rows = append(rows, []string{categoryTitle(cat), strconv.Itoa(counts[cat])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, counts)

	filtered := report.DetectionsAbove(w.sensitivity)
	md.PlainTextf("Listed at %s sensitivity: %d of %d detections.", w.sensitivity, len(filtered), len(report.Detections))
	md.PlainText("")

	if len(filtered) == 0 {
		return
	}

	detRows := make([][]string, len(filtered))
	for i, d := range filtered {
		detRows[i] = []string{
			categoryTitle(d.Category),
			d.SectionID,
			fmt.Sprintf("%d-%d", d.StartOffset, d.EndOffset),
			fmt.Sprintf("%.2f", d.Confidence),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Section", "Bytes", "Confidence"},
		Rows:   detRows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for the category distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Category]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Detections by Category"),
		piechart.WithShowData(true),
	)

	for _, cat := range model.AllCategories() {
		if counts[cat] > 0 {
			chart.LabelAndIntValue(categoryTitle(cat), uint64(counts[cat]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeVerification writes the adversarial verification section.
func (w *MarkdownWriter) writeVerification(md *markdown.Markdown, report *model.ScanReport) {
	v := report.Verification
	if v == nil {
		return
	}

	md.H2("Adversarial Verification")
	md.PlainText("")

	analysis := v.Analysis
	rows := [][]string{
		{"Re-identification confidence", fmt.Sprintf("%.0f/100", analysis.ReidentificationConfidence)},
		{"Risk level", analysis.RiskLevel.String()},
		{"Candidate population", fmt.Sprintf("%s (est. %.0f)", analysis.Fingerprint.PopulationDescription, analysis.Fingerprint.EstimatedPopulationSize)},
		{"Leaked attributes", strconv.Itoa(len(analysis.LeakedAttributes))},
		{"Searchable fragments", strconv.Itoa(len(analysis.CrossReference.SearchableFragments))},
		{"Threshold", fmt.Sprintf("%.0f", v.RiskThreshold)},
	}
	if v.PreviousConfidence != nil {
		delta := analysis.ReidentificationConfidence - *v.PreviousConfidence
		rows = append(rows, []string{"Change since last pass", fmt.Sprintf("%+.0f (iteration %d)", delta, v.Iteration)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeVerdict(md, v)
	w.writeSuggestions(md, v)
}

// writeVerdict writes an alert matching the verification outcome.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, v *model.VerificationResult) {
	confidence := v.Analysis.ReidentificationConfidence
	switch {
	case v.PassesThreshold:
		md.Tipf("Verification passed: confidence %.0f is at or below the threshold %.0f.", confidence, v.RiskThreshold)
	case v.Analysis.RiskLevel >= model.RiskCritical:
		md.Cautionf("Critical re-identification risk: confidence %.0f. The remaining text likely identifies one individual.", confidence)
	case v.Analysis.RiskLevel >= model.RiskHigh:
		md.Warningf("High re-identification risk: confidence %.0f. Apply the suggested mitigations before release.", confidence)
	default:
		md.Importantf("Verification failed: confidence %.0f exceeds the threshold %.0f.", confidence, v.RiskThreshold)
	}
	md.PlainText("")
}

// writeSuggestions writes the ranked mitigation table.
func (w *MarkdownWriter) writeSuggestions(md *markdown.Markdown, v *model.VerificationResult) {
	if len(v.Suggestions) == 0 {
		return
	}

	md.H3("Suggested Mitigations")
	md.PlainText("")

	rows := make([][]string, len(v.Suggestions))
	for i, s := range v.Suggestions {
		replacement := s.SuggestedReplacement
		if replacement == "" {
			replacement = "-"
		}
		rows[i] = []string{
			strconv.Itoa(s.Priority),
			string(s.Type),
			truncateString(s.OriginalPhrase, 50),
			truncateString(replacement, 40),
			fmt.Sprintf("%.0f", s.ExpectedRiskReduction),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Priority", "Type", "Phrase", "Replacement", "Expected Drop"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeWarnings writes recorded scan warnings.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Warnings) == 0 {
		return
	}

	md.H2("Warnings")
	md.PlainText("")
	md.BulletList(report.Warnings...)
	md.PlainText("")
}
