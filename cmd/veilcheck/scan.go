package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veilcheck/veilcheck/internal/adversary"
	"github.com/veilcheck/veilcheck/internal/config"
	"github.com/veilcheck/veilcheck/internal/database"
	"github.com/veilcheck/veilcheck/internal/detect"
	"github.com/veilcheck/veilcheck/internal/log"
	"github.com/veilcheck/veilcheck/internal/model"
	"github.com/veilcheck/veilcheck/internal/pattern"
	"github.com/veilcheck/veilcheck/internal/pipeline"
	"github.com/veilcheck/veilcheck/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan documents for PII and verify the simulated redaction",
		Long: `Scan detects personally identifiable information in text or HTML documents.

Each document is split into sections, scanned with the full pattern
library, and the accepted detections are redacted in a simulation. The
redacted text is then attacked adversarially to estimate the remaining
re-identification risk:
- Leaked quasi-identifier attributes (roles, employers, locations, dates)
- Semantic fingerprinting (how small a population the text narrows to)
- Cross-reference exposure (searchable fragments, public data sources)

Examples:
  # Scan a single document
  veilcheck scan report.txt

  # Scan several documents concurrently
  veilcheck scan a.txt b.html c.txt

  # Only list detections at low sensitivity (confidence >= 0.9)
  veilcheck scan --sensitivity low report.txt

  # Restrict detection to specific categories
  veilcheck scan --category ssn --category email report.txt

  # Add a custom detector
  veilcheck scan --pattern 'EMP-\d{6}' report.txt

  # Output JSON report to a file
  veilcheck scan --json -o report.json report.txt

Configuration file (.veilcheck) example:
  defaults:
    sensitivity: medium
  documents:
    "hr/*.txt":
      sensitivity: high
      categories: [ssn, date_of_birth, street_address]
    "*.log":
      skipVerification: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Detection flags
	cmd.Flags().StringP("sensitivity", "s", string(config.DefaultSensitivity),
		"Sensitivity for surfaced detections: low, medium, or high")
	cmd.Flags().StringSliceP("category", "C", nil,
		"Restrict detection to the given categories (repeatable; default all)")
	cmd.Flags().StringArrayP("pattern", "p", nil,
		"Additional custom detection pattern (repeatable)")

	// Verification flags
	cmd.Flags().Float64P("threshold", "t", adversary.DefaultRiskThreshold,
		"Risk threshold in [0,100]; verification passes at or below it")
	cmd.Flags().Bool("no-verify", false,
		"Skip the adversarial verification pass")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .veilcheck in current, XDG config, or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not persist verification results to the local database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with sensitive-value masking
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	sensitivity, err := cmd.Flags().GetString("sensitivity")
	if err != nil {
		return nil, err
	}
	cfg.Sensitivity = model.Sensitivity(sensitivity)

	categories, err := cmd.Flags().GetStringSlice("category")
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		cfg.Categories = append(cfg.Categories, model.Category(c))
	}

	cfg.CustomPatterns, err = cmd.Flags().GetStringArray("pattern")
	if err != nil {
		return nil, err
	}

	cfg.Adversary.RiskThreshold, err = cmd.Flags().GetFloat64("threshold")
	if err != nil {
		return nil, err
	}

	noVerify, err := cmd.Flags().GetBool("no-verify")
	if err != nil {
		return nil, err
	}
	if noVerify {
		cfg.Adversary.Enabled = false
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-document configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		// File-level adversary settings apply unless overridden on the
		// command line.
		if cfg.FileConfig.Adversary != nil {
			fileAdversary := *cfg.FileConfig.Adversary
			if cmd.Flags().Changed("threshold") {
				fileAdversary.RiskThreshold = cfg.Adversary.RiskThreshold
			}
			if noVerify {
				fileAdversary.Enabled = false
			}
			cfg.Adversary = fileAdversary
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.FileConfig = &config.File{
			Documents: make(map[string]config.DocumentConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.SaveToDB {
		cfg.DBDir = config.XDGDataDir()
	}

	// Get positional arguments (document paths)
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"sensitivity", cfg.Sensitivity,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.VerifyDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// One engine and one verifier serve every target; both are safe for
	// concurrent use.
	engine, err := buildEngine(cfg.CustomPatterns)
	if err != nil {
		return err
	}
	verifier := adversary.NewVerifier(cfg.Adversary)

	// Use batch processor for parallel scanning if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, engine, verifier, db, logger)
	}

	// Single target or sequential scanning
	return runSequentialScan(ctx, cfg, engine, verifier, db, logger)
}

// buildEngine creates a detection engine whose library carries the given
// custom patterns on top of the built-in set.
func buildEngine(customPatterns []string) (*detect.Engine, error) {
	library := pattern.NewLibrary()
	for _, expr := range customPatterns {
		if err := library.AddCustom(expr); err != nil {
			return nil, fmt.Errorf("invalid custom pattern %q: %w", expr, err)
		}
	}
	return detect.NewEngine(library), nil
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, engine *detect.Engine, verifier *adversary.Verifier, db *database.VerifyDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Create pipeline with per-document options
		p, sensitivity, err := createPipelineForTarget(cfg, engine, verifier, db, logger, target)
		if err != nil {
			return err
		}

		scanReport := model.NewScanReport(target)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, sensitivity, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, engine *detect.Engine, verifier *adversary.Verifier, db *database.VerifyDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.FileConfig != nil && len(cfg.FileConfig.Documents) > 0 {
		logger.Warn("batch processing uses default document config only; per-document overrides are ignored",
			"documentCount", len(cfg.FileConfig.Documents))
		fmt.Fprintf(os.Stderr, "Warning: Per-document configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-document settings.\n\n")
	}

	// Batch mode applies the global sensitivity to every target.
	sensitivity := cfg.Sensitivity

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return buildPipeline(cfg, engine, verifier, db, logger, cfg.Categories, sensitivity, !cfg.Adversary.Enabled)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Targets), scanReport.FileID)

		// Generate and output report
		if err := outputReport(cfg, sensitivity, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.FileID, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForTarget resolves the per-document configuration for a
// target and builds a pipeline honoring it. It returns the effective
// sensitivity so the report writer can filter consistently.
func createPipelineForTarget(cfg *config.Config, engine *detect.Engine, verifier *adversary.Verifier, db *database.VerifyDB, logger *slog.Logger, target string) (*pipeline.Pipeline, model.Sensitivity, error) {
	categories := cfg.Categories
	sensitivity := cfg.Sensitivity
	skipVerification := !cfg.Adversary.Enabled

	if cfg.FileConfig != nil {
		docCfg := cfg.FileConfig.GetDocumentConfig(target)
		if len(docCfg.Categories) > 0 {
			categories = docCfg.Categories
		}
		if docCfg.Sensitivity != "" {
			sensitivity = docCfg.Sensitivity
		}
		if docCfg.SkipVerification {
			skipVerification = true
		}
		if len(docCfg.CustomPatterns) > 0 {
			// Per-document patterns need their own library; the shared
			// engine carries only the global set.
			patterns := append(append([]string{}, cfg.CustomPatterns...), docCfg.CustomPatterns...)
			docEngine, err := buildEngine(patterns)
			if err != nil {
				return nil, sensitivity, err
			}
			engine = docEngine
		}
	}

	return buildPipeline(cfg, engine, verifier, db, logger, categories, sensitivity, skipVerification), sensitivity, nil
}

// buildPipeline assembles the scan pipeline: ingest, detect, simulate,
// verify, store. Verification and storage steps are included only when
// enabled.
func buildPipeline(cfg *config.Config, engine *detect.Engine, verifier *adversary.Verifier, db *database.VerifyDB, logger *slog.Logger, categories []model.Category, sensitivity model.Sensitivity, skipVerification bool) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(false),
	)

	p.AddStep(pipeline.NewIngestStep())
	p.AddStep(pipeline.NewDetectStep(engine, detect.Config{Categories: categories}))
	p.AddStep(pipeline.NewSimulateStep(sensitivity))

	if !skipVerification {
		p.AddStep(pipeline.NewVerifyStep(verifier, db, sensitivity))
		if cfg.SaveToDB {
			p.AddStep(pipeline.NewStoreStep(db))
		}
	}

	return p
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, sensitivity model.Sensitivity, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports may reveal which documents contain PII and should only be
		// readable by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detections scrubbed of raw values before encoding)
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(scanReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output, report.WithMarkdownSensitivity(sensitivity))
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output,
		report.WithSensitivity(sensitivity),
		report.WithVerbose(cfg.Verbose),
	)
	_, err := writer.Write(scanReport)
	return err
}
