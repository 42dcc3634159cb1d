package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veilcheck/veilcheck/internal/config"
	"github.com/veilcheck/veilcheck/internal/database"
)

// integrationDocument is a document with direct identifiers in the first
// paragraph and quasi-identifiers in the second, so a full scan exercises
// detection, redaction simulation, and the adversarial analysis.
const integrationDocument = "Contact John Smith at jane.roe@example.com or 123-45-6789.\n\n" +
	"He is the CEO of Acme Corp and testified before Congress in March 2019."

// writeIntegrationDoc writes the standard test document and returns its path.
func writeIntegrationDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(integrationDocument), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

// TestScanIntegrationSingleFile runs a complete scan of one document.
func TestScanIntegrationSingleFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	docPath := writeIntegrationDoc(t, tmpDir, "report.txt")
	reportPath := filepath.Join(tmpDir, "report.out")

	cfg := config.NewConfig()
	cfg.Targets = []string{docPath}
	cfg.SaveToDB = true
	cfg.DBDir = filepath.Join(tmpDir, "db")
	cfg.ReportFile = reportPath

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	if err := runScan(ctx, cfg, logger); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	output := string(content)

	if !strings.Contains(output, "VEILCHECK REPORT") {
		t.Error("report missing header")
	}
	if !strings.Contains(output, "Ssn:") {
		t.Error("report missing SSN detection summary")
	}
	if !strings.Contains(output, "Email:") {
		t.Error("report missing email detection summary")
	}
	if !strings.Contains(output, "ADVERSARIAL VERIFICATION") {
		t.Error("report missing verification section")
	}
	// The raw values never appear in any output
	if strings.Contains(output, "123-45-6789") || strings.Contains(output, "jane.roe@example.com") {
		t.Error("report leaked a raw detection value")
	}

	// The verification pass was persisted
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	record, err := db.GetVerification(ctx, docPath)
	if err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	if record == nil {
		t.Fatal("expected a stored verification")
	}
	if record.Iteration != 1 {
		t.Errorf("iteration = %d, want 1", record.Iteration)
	}
}

// TestScanIntegrationBatch runs a concurrent scan of several documents.
func TestScanIntegrationBatch(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	targets := []string{
		writeIntegrationDoc(t, tmpDir, "a.txt"),
		writeIntegrationDoc(t, tmpDir, "b.txt"),
		writeIntegrationDoc(t, tmpDir, "c.txt"),
	}

	cfg := config.NewConfig()
	cfg.Targets = targets
	cfg.BatchSize = 3
	cfg.SaveToDB = true
	cfg.DBDir = filepath.Join(tmpDir, "db")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	if err := runScan(ctx, cfg, logger); err != nil {
		t.Fatalf("batch scan failed: %v", err)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	paths, err := db.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("failed to list documents: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("stored documents = %d, want 3", len(paths))
	}
}

// TestScanIntegrationNoVerify runs a detection-only scan.
func TestScanIntegrationNoVerify(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	docPath := writeIntegrationDoc(t, tmpDir, "report.txt")
	reportPath := filepath.Join(tmpDir, "report.out")

	cfg := config.NewConfig()
	cfg.Targets = []string{docPath}
	cfg.Adversary.Enabled = false
	cfg.SaveToDB = false
	cfg.ReportFile = reportPath

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := runScan(context.Background(), cfg, logger); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	output := string(content)

	if !strings.Contains(output, "VEILCHECK REPORT") {
		t.Error("report missing header")
	}
	if strings.Contains(output, "ADVERSARIAL VERIFICATION") {
		t.Error("detection-only report should not include a verification section")
	}
}

// TestScanIntegrationDocumentOverride applies a per-document config override.
func TestScanIntegrationDocumentOverride(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	docPath := writeIntegrationDoc(t, tmpDir, "report.log")
	reportPath := filepath.Join(tmpDir, "report.out")

	cfg := config.NewConfig()
	cfg.Targets = []string{docPath}
	cfg.SaveToDB = false
	cfg.ReportFile = reportPath
	cfg.FileConfig = &config.File{
		Documents: map[string]config.DocumentConfig{
			"*.log": {SkipVerification: true},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := runScan(context.Background(), cfg, logger); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if strings.Contains(string(content), "ADVERSARIAL VERIFICATION") {
		t.Error("matching document override should have skipped verification")
	}
}
