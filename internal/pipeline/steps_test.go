package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veilcheck/veilcheck/internal/adversary"
	"github.com/veilcheck/veilcheck/internal/database"
	"github.com/veilcheck/veilcheck/internal/detect"
	"github.com/veilcheck/veilcheck/internal/model"
)

const scenarioText = "Contact John Smith at jane.roe@example.com or 123-45-6789.\n\n" +
	"He is the CEO of Acme Corp and testified before Congress in March 2019."

func writeScenarioFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte(scenarioText), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestStepsEndToEnd runs the full scan pipeline against a real file and a
// real database, twice, to cover detection, simulation, verification, and
// the iteration delta.
func TestStepsEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeScenarioFile(t)

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	verifier := adversary.NewVerifier(adversary.DefaultConfig())

	build := func() *Pipeline {
		p := New(WithLogger(quietLogger()))
		p.AddSteps(
			NewIngestStep(),
			NewDetectStep(nil, detect.Config{}),
			NewSimulateStep(model.SensitivityMedium),
			NewVerifyStep(verifier, db, model.SensitivityMedium),
			NewStoreStep(db),
		)
		return p
	}

	// First pass.
	report := model.NewScanReport(path)
	if err := build().Execute(ctx, report); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}

	if report.SectionCount != 2 {
		t.Errorf("sections = %d, want 2", report.SectionCount)
	}

	categories := make(map[model.Category]bool)
	for _, d := range report.Detections {
		categories[d.Category] = true
	}
	if !categories[model.CategorySSN] || !categories[model.CategoryEmail] {
		t.Errorf("missing expected detections, got %v", categories)
	}

	if len(report.RedactedSections) != 2 {
		t.Fatalf("redacted sections = %d, want 2", len(report.RedactedSections))
	}
	for _, s := range report.RedactedSections {
		for _, d := range report.Detections {
			if d.SectionID == s.ID && d.Value != "" && strings.Contains(s.Text, d.Value) {
				t.Errorf("redacted section %s still contains a detection value", s.ID)
			}
		}
	}

	v := report.Verification
	if v == nil {
		t.Fatal("verification missing")
	}
	if v.Iteration != 1 {
		t.Errorf("iteration = %d, want 1", v.Iteration)
	}
	if v.PreviousConfidence != nil {
		t.Errorf("previous confidence = %v, want nil on first pass", v.PreviousConfidence)
	}
	// The narrative still pins down the executive.
	if len(v.Analysis.LeakedAttributes) < 3 {
		t.Errorf("leaked attributes = %d, want at least 3", len(v.Analysis.LeakedAttributes))
	}
	if v.PassesThreshold {
		t.Error("first pass should fail the threshold")
	}

	// Second pass threads the stored confidence through.
	report2 := model.NewScanReport(path)
	if err := build().Execute(ctx, report2); err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	v2 := report2.Verification
	if v2 == nil {
		t.Fatal("second verification missing")
	}
	if v2.Iteration != 2 {
		t.Errorf("second iteration = %d, want 2", v2.Iteration)
	}
	if v2.PreviousConfidence == nil {
		t.Fatal("previous confidence missing on second pass")
	}
	if *v2.PreviousConfidence != v.Analysis.ReidentificationConfidence {
		t.Errorf("previous confidence = %v, want %v",
			*v2.PreviousConfidence, v.Analysis.ReidentificationConfidence)
	}
}

// TestIngestStepMissingFile verifies a fatal ingest failure.
func TestIngestStepMissingFile(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport(filepath.Join(t.TempDir(), "absent.txt"))
	if err := NewIngestStep().Do(context.Background(), report); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// TestVerifyStepWithoutDatabase verifies iteration defaults.
func TestVerifyStepWithoutDatabase(t *testing.T) {
	t.Parallel()

	report := model.NewScanReport("notes.txt")
	report.Sections = []model.ContentSection{
		{ID: "s1", Text: "Nothing sensitive here.", Type: model.SectionParagraph},
	}

	step := NewVerifyStep(adversary.NewVerifier(adversary.DefaultConfig()), nil, model.SensitivityMedium)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := report.Verification
	if v == nil {
		t.Fatal("verification missing")
	}
	if v.Iteration != 1 || v.PreviousConfidence != nil {
		t.Errorf("iteration = %d, previous = %v; want 1 and nil", v.Iteration, v.PreviousConfidence)
	}
}

// TestStoreStepWithoutVerification verifies the no-op path.
func TestStoreStepWithoutVerification(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	report := model.NewScanReport("notes.txt")
	if err := NewStoreStep(db).Do(context.Background(), report); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	record, err := db.GetVerification(context.Background(), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Error("store step persisted a row without a verification result")
	}
}
