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

// TestNewVerifyCmd tests the verify command creation.
func TestNewVerifyCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVerifyCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "verify [file...]" {
			t.Errorf("expected use 'verify [file...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has threshold flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("threshold")
		if flag == nil {
			t.Fatal("expected threshold flag")
		}
		if flag.DefValue != "30" {
			t.Errorf("expected default '30', got %q", flag.DefValue)
		}
	})

	t.Run("has report format flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("json") == nil {
			t.Error("expected json flag")
		}
		if cmd.Flags().Lookup("markdown") == nil {
			t.Error("expected markdown flag")
		}
		if cmd.Flags().Lookup("output") == nil {
			t.Error("expected output flag")
		}
	})

	t.Run("requires at least one argument", func(t *testing.T) {
		t.Parallel()
		cmd := NewVerifyCmd()
		cmd.SetArgs([]string{})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		if err := cmd.Execute(); err == nil {
			t.Error("expected error when no file given")
		}
	})
}

// TestBuildVerifyConfig tests verify config construction.
func TestBuildVerifyConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewVerifyCmd()
		cfg, err := buildVerifyConfig(cmd, []string{"redacted.txt"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 1 || cfg.Targets[0] != "redacted.txt" {
			t.Errorf("targets = %v", cfg.Targets)
		}
		if !cfg.Adversary.Enabled {
			t.Error("expected verification to be enabled")
		}
		if cfg.Adversary.RiskThreshold != 30 {
			t.Errorf("threshold = %v, want 30", cfg.Adversary.RiskThreshold)
		}
	})

	t.Run("builds config with custom threshold", func(t *testing.T) {
		cmd := NewVerifyCmd()
		_ = cmd.Flags().Set("threshold", "10")
		cfg, err := buildVerifyConfig(cmd, []string{"redacted.txt"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Adversary.RiskThreshold != 10 {
			t.Errorf("threshold = %v, want 10", cfg.Adversary.RiskThreshold)
		}
	})

	t.Run("forces verification on even when config file disables it", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "veilcheck.yaml")
		content := []byte(`
adversary:
  enabled: false
  risk_threshold: 20
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewVerifyCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildVerifyConfig(cmd, []string{"redacted.txt"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Adversary.Enabled {
			t.Error("expected verification to be forced on")
		}
		if cfg.Adversary.RiskThreshold != 20 {
			t.Errorf("threshold = %v, want file value 20", cfg.Adversary.RiskThreshold)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewVerifyCmd()
		_ = cmd.Flags().Set("config", "/nonexistent/veilcheck.yaml")
		_, err := buildVerifyConfig(cmd, []string{"redacted.txt"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
}

// TestRunVerifyEndToEnd runs the verify flow against real files and a real
// database, twice, to confirm the iteration counter and delta threading.
func TestRunVerifyEndToEnd(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "redacted.txt")
	text := "[REDACTED] is the CEO of Acme Corp.\n\n" +
		"He testified before Congress in March 2019."
	if err := os.WriteFile(docPath, []byte(text), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	reportPath := filepath.Join(tmpDir, "report.out")
	cfg := config.NewConfig()
	cfg.Targets = []string{docPath}
	cfg.SaveToDB = true
	cfg.DBDir = filepath.Join(tmpDir, "db")
	cfg.ReportFile = reportPath

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	// First pass
	if err := runVerify(ctx, cfg, logger); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	output := string(content)
	if !strings.Contains(output, "ADVERSARIAL VERIFICATION") {
		t.Errorf("report missing verification section: %q", output)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	record, err := db.GetVerification(ctx, docPath)
	if err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	if record == nil {
		t.Fatal("expected a stored verification after first pass")
	}
	if record.Iteration != 1 {
		t.Errorf("iteration = %d, want 1", record.Iteration)
	}
	firstConfidence := record.Confidence
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	// Second pass threads the first pass's confidence through
	if err := runVerify(ctx, cfg, logger); err != nil {
		t.Fatalf("second verify failed: %v", err)
	}

	db, err = database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	record, err = db.GetVerification(ctx, docPath)
	if err != nil || record == nil {
		t.Fatalf("failed to load second record: record=%v err=%v", record, err)
	}
	if record.Iteration != 2 {
		t.Errorf("iteration = %d, want 2", record.Iteration)
	}
	if record.Result.PreviousConfidence == nil {
		t.Fatal("expected previous confidence on second pass")
	}
	if *record.Result.PreviousConfidence != firstConfidence {
		t.Errorf("previous confidence = %v, want %v",
			*record.Result.PreviousConfidence, firstConfidence)
	}
}

// TestRunVerifyMissingFile verifies a missing target does not abort the run.
func TestRunVerifyMissingFile(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Targets = []string{filepath.Join(t.TempDir(), "missing.txt")}
	cfg.SaveToDB = false

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runVerify(context.Background(), cfg, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
