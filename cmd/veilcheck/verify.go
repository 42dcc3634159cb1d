package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veilcheck/veilcheck/internal/adversary"
	"github.com/veilcheck/veilcheck/internal/config"
	"github.com/veilcheck/veilcheck/internal/database"
	"github.com/veilcheck/veilcheck/internal/log"
	"github.com/veilcheck/veilcheck/internal/model"
	"github.com/veilcheck/veilcheck/internal/pipeline"
)

// NewVerifyCmd creates the verify command.
// Unlike scan, verify assumes the document has already been redacted and
// runs only the adversarial analysis against the remaining text.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [file...]",
		Short: "Adversarially verify already-redacted documents",
		Long: `Verify runs the adversarial analysis against documents whose PII has
already been removed, estimating the re-identification risk of what
remains.

No detection or redaction simulation is performed; the text is analyzed
as-is. Each run is stored as one verification iteration, so repeated
runs after manual edits show the confidence trend:

  veilcheck verify report_redacted.txt   # iteration 1
  ... edit the document ...
  veilcheck verify report_redacted.txt   # iteration 2, shows the delta

Examples:
  # Verify a redacted document against the default risk threshold
  veilcheck verify report_redacted.txt

  # Require a stricter threshold
  veilcheck verify --threshold 10 report_redacted.txt

  # Output the full analysis as JSON
  veilcheck verify --json report_redacted.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runVerifyCmd,
	}

	cmd.Flags().Float64P("threshold", "t", adversary.DefaultRiskThreshold,
		"Risk threshold in [0,100]; verification passes at or below it")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .veilcheck in current, XDG config, or home directory)")
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

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildVerifyConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runVerify(ctx, cfg, logger)
}

// buildVerifyConfig creates a Config for the verify command.
// It reuses the scan config plumbing but forces the verifier on; a verify
// run with verification disabled would be pointless.
func buildVerifyConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Adversary.RiskThreshold, err = cmd.Flags().GetFloat64("threshold")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if cfg.FileConfig.Adversary != nil {
			fileAdversary := *cfg.FileConfig.Adversary
			if cmd.Flags().Changed("threshold") {
				fileAdversary.RiskThreshold = cfg.Adversary.RiskThreshold
			}
			cfg.Adversary = fileAdversary
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.Adversary.Enabled = true

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

	cfg.Targets = args

	return cfg, nil
}

// runVerify executes the adversarial verification over each target.
func runVerify(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting verification",
		"targets", len(cfg.Targets),
		"riskThreshold", cfg.Adversary.RiskThreshold,
	)

	var db *database.VerifyDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	verifier := adversary.NewVerifier(cfg.Adversary)

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Ingest and verify only; the document is treated as already
		// redacted so no detections feed the simulation.
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddStep(pipeline.NewIngestStep())
		p.AddStep(pipeline.NewVerifyStep(verifier, db, cfg.Sensitivity))
		if cfg.SaveToDB {
			p.AddStep(pipeline.NewStoreStep(db))
		}

		scanReport := model.NewScanReport(target)

		fmt.Printf("Verifying %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("verification failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Verification error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Verification completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, cfg.Sensitivity, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}
