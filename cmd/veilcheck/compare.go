package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veilcheck/veilcheck/internal/config"
	"github.com/veilcheck/veilcheck/internal/database"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command shows how a document's re-identification confidence changed
// between the stored verification pass and the pass before it.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [file]",
		Short: "Show the confidence delta for a verified document",
		Long: `Compare displays the stored verification pass for a document together
with the confidence of the pass before it.

Veilcheck keeps exactly one verification row per document; each scan or
verify run overwrites it and records the previous confidence inside the
result. Compare reads that row back and shows the direction of change,
the risk level, and whether the document passes the configured
threshold.

Examples:
  # Show the stored verification and its delta for a document
  veilcheck compare report.txt

  # Output the comparison in JSON format
  veilcheck compare --json report.txt

  # List all documents with a stored verification
  veilcheck compare --list-documents`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list-documents", "L", false,
		"List all documents with a stored verification")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDocuments, err := cmd.Flags().GetBool("list-documents")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	if !listDocuments && len(args) == 0 {
		return errors.New("document path is required (use --list-documents to see verified documents)")
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database read-only; compare never writes
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no verification database found (run 'veilcheck scan' or 'veilcheck verify' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listDocuments {
		return listVerifiedDocuments(ctx, db)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, args[0], jsonOutput)
}

// listVerifiedDocuments lists all documents with a stored verification row.
func listVerifiedDocuments(ctx context.Context, db *database.VerifyDB) error {
	paths, err := db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(paths) == 0 {
		fmt.Println("No verified documents found in the database.")
		fmt.Println("\nUse 'veilcheck scan <file>' to scan and verify a document.")
		return nil
	}

	fmt.Printf("Verified documents (%d):\n\n", len(paths))
	for _, path := range paths {
		fmt.Printf("  • %s\n", path)
	}
	fmt.Println("\nUse 'veilcheck compare <file>' to see the confidence delta for a document.")

	return nil
}

// ComparisonResult holds the stored verification pass and its delta against
// the pass before it.
type ComparisonResult struct {
	// DocumentPath is the compared document.
	DocumentPath string `json:"document_path"`

	// Timestamp is when the stored pass was performed.
	Timestamp time.Time `json:"timestamp"`

	// Iteration is the redact-verify round counter of the stored pass.
	Iteration int `json:"iteration"`

	// Confidence is the stored re-identification confidence in [0, 100].
	Confidence float64 `json:"confidence"`

	// PreviousConfidence is the confidence of the pass before the stored
	// one, nil when the stored pass was the first.
	PreviousConfidence *float64 `json:"previous_confidence,omitempty"`

	// Delta is Confidence minus PreviousConfidence, nil on a first pass.
	Delta *float64 `json:"delta,omitempty"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// RiskLevel is the banded risk level of the stored pass.
	RiskLevel string `json:"risk_level"`

	// RiskThreshold is the threshold the stored pass was judged against.
	RiskThreshold float64 `json:"risk_threshold"`

	// Passes reports whether the stored pass met the threshold.
	Passes bool `json:"passes"`

	// SuggestionCount is the number of open mitigation suggestions.
	SuggestionCount int `json:"suggestion_count"`
}

// runComparison loads the stored verification for a document and outputs
// the comparison.
func runComparison(ctx context.Context, db *database.VerifyDB, documentPath string, jsonOutput bool) error {
	record, err := db.GetVerification(ctx, documentPath)
	if err != nil {
		return fmt.Errorf("failed to load verification: %w", err)
	}
	if record == nil {
		return fmt.Errorf("no verification found for %s (run 'veilcheck scan' or 'veilcheck verify' first)", documentPath)
	}

	result := buildComparison(record)

	if jsonOutput {
		return outputComparisonJSON(result)
	}
	return outputComparisonText(result)
}

// buildComparison derives the comparison view from a stored record.
func buildComparison(record *database.VerificationRecord) *ComparisonResult {
	result := &ComparisonResult{
		DocumentPath:       record.DocumentPath,
		Timestamp:          record.Timestamp,
		Iteration:          record.Iteration,
		Confidence:         record.Confidence,
		PreviousConfidence: record.Result.PreviousConfidence,
		Direction:          riskDirectionUnchanged,
		RiskLevel:          record.RiskLevel,
		RiskThreshold:      record.Result.RiskThreshold,
		Passes:             record.Passes,
		SuggestionCount:    len(record.Result.Suggestions),
	}

	if result.PreviousConfidence != nil {
		delta := result.Confidence - *result.PreviousConfidence
		result.Delta = &delta
		switch {
		case delta < 0:
			result.Direction = riskDirectionImproved
		case delta > 0:
			result.Direction = riskDirectionWorsened
		}
	}

	return result
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Verification Comparison: %s\n", result.DocumentPath)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nStored pass:      %s (iteration %d)\n",
		result.Timestamp.Format("2006-01-02 15:04:05"), result.Iteration)

	if result.PreviousConfidence != nil {
		fmt.Printf("\nPrevious confidence: %.0f/100\n", *result.PreviousConfidence)
		fmt.Printf("Current confidence:  %.0f/100\n", result.Confidence)
		fmt.Printf("Change:              %+.0f (%s)\n", *result.Delta, formatRiskDirection(result.Direction))
	} else {
		fmt.Printf("\nConfidence: %.0f/100 (first pass, nothing to compare against)\n", result.Confidence)
	}

	fmt.Printf("\nRisk level: %s\n", result.RiskLevel)
	if result.Passes {
		fmt.Printf("Status:     PASS (threshold %.0f)\n", result.RiskThreshold)
	} else {
		fmt.Printf("Status:     FAIL (threshold %.0f)\n", result.RiskThreshold)
	}

	if result.SuggestionCount > 0 {
		fmt.Printf("\n%d mitigation suggestions available. Re-run 'veilcheck scan' or\n", result.SuggestionCount)
		fmt.Println("'veilcheck verify' after applying them to record the next iteration.")
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "risk decreased"
	case riskDirectionWorsened:
		return "risk increased"
	default:
		return "unchanged"
	}
}
