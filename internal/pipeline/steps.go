package pipeline

import (
	"context"
	"fmt"

	"github.com/veilcheck/veilcheck/internal/adversary"
	"github.com/veilcheck/veilcheck/internal/database"
	"github.com/veilcheck/veilcheck/internal/detect"
	"github.com/veilcheck/veilcheck/internal/ingest"
	"github.com/veilcheck/veilcheck/internal/model"
	"github.com/veilcheck/veilcheck/internal/redact"
)

// IngestStep parses the report's file into content sections.
// A failure here is fatal for the file: nothing downstream can run
// without sections.
type IngestStep struct{}

// NewIngestStep creates an IngestStep.
func NewIngestStep() *IngestStep {
	return &IngestStep{}
}

// Name returns the step name.
func (s *IngestStep) Name() string {
	return "ingest"
}

// Do reads and splits the file.
func (s *IngestStep) Do(_ context.Context, report *model.ScanReport) error {
	sections, err := ingest.ReadFile(report.FileID)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	report.Sections = sections
	report.SectionCount = len(sections)
	return nil
}

// DetectStep runs the pattern-matching engine over the report's sections.
type DetectStep struct {
	engine *detect.Engine
	cfg    detect.Config
}

// NewDetectStep creates a DetectStep with the given engine and
// configuration. A nil engine gets one over the built-in library.
func NewDetectStep(engine *detect.Engine, cfg detect.Config) *DetectStep {
	if engine == nil {
		engine = detect.NewEngine(nil)
	}
	return &DetectStep{engine: engine, cfg: cfg}
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do scans the sections. Engine warnings (skipped malformed sections)
// downgrade the report to partial but never fail the step.
func (s *DetectStep) Do(ctx context.Context, report *model.ScanReport) error {
	result, err := s.engine.Detect(ctx, report.FileID, report.Sections, s.cfg)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	report.Detections = result.Detections
	report.ProcessingTime = result.ProcessingTime
	report.EngineVersion = result.EngineVersion
	for _, warning := range result.Warnings {
		report.AddWarning(warning)
	}
	return nil
}

// SimulateStep produces the redacted view of the sections, removing every
// detection at or above the configured sensitivity.
type SimulateStep struct {
	sensitivity model.Sensitivity
}

// NewSimulateStep creates a SimulateStep at the given sensitivity.
func NewSimulateStep(sensitivity model.Sensitivity) *SimulateStep {
	return &SimulateStep{sensitivity: sensitivity}
}

// Name returns the step name.
func (s *SimulateStep) Name() string {
	return "simulate"
}

// Do simulates redaction. The original sections stay untouched.
func (s *SimulateStep) Do(_ context.Context, report *model.ScanReport) error {
	accepted := report.DetectionsAbove(s.sensitivity)
	report.RedactedSections = redact.Simulate(report.Sections, accepted)
	return nil
}

// VerifyStep runs the adversarial verification engine against the
// simulated redaction. When a database is configured, the previous pass's
// confidence is threaded in so the report can show the delta.
type VerifyStep struct {
	verifier    *adversary.Verifier
	db          *database.VerifyDB
	sensitivity model.Sensitivity
}

// NewVerifyStep creates a VerifyStep. The database is optional; without it
// every run is iteration 1 with no previous confidence.
func NewVerifyStep(verifier *adversary.Verifier, db *database.VerifyDB, sensitivity model.Sensitivity) *VerifyStep {
	return &VerifyStep{verifier: verifier, db: db, sensitivity: sensitivity}
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return "verify"
}

// Do analyzes the redacted text. A database read failure downgrades to a
// warning: losing the delta display is not worth failing the scan.
func (s *VerifyStep) Do(ctx context.Context, report *model.ScanReport) error {
	iteration := 1
	var previous *float64

	if s.db != nil {
		record, err := s.db.GetVerification(ctx, report.FileID)
		switch {
		case err != nil:
			report.AddWarning(fmt.Sprintf("previous verification unavailable: %v", err))
		case record != nil:
			iteration = record.Iteration + 1
			confidence := record.Confidence
			previous = &confidence
		}
	}

	accepted := report.DetectionsAbove(s.sensitivity)
	result := s.verifier.Analyze(report.Sections, accepted, iteration, previous)
	report.Verification = &result
	return nil
}

// StoreStep persists the verification result for the next run's delta.
type StoreStep struct {
	db *database.VerifyDB
}

// NewStoreStep creates a StoreStep over the given database.
func NewStoreStep(db *database.VerifyDB) *StoreStep {
	return &StoreStep{db: db}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do saves the verification row. Without a verification result (the
// verify step did not run) the step is a no-op.
func (s *StoreStep) Do(ctx context.Context, report *model.ScanReport) error {
	if report.Verification == nil || s.db == nil {
		return nil
	}
	if err := s.db.SaveVerification(ctx, report.FileID, *report.Verification); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
