// Package main provides the entry point for the veilcheck CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for veilcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "veilcheck",
		Short: "PII detection and adversarial redaction verification",
		Long: `Veilcheck scans text documents for personally identifiable information,
simulates redacting what it finds, and then verifies the redaction by
attacking the remaining text the way a motivated adversary would.

The verification pass estimates how narrowly the redacted text still
identifies its subject and suggests concrete mitigations when the
re-identification risk is above the configured threshold.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
