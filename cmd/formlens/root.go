package main

import (
	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/cliout"
	"github.com/formlens/formlens/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "formlens",
	Short: "Review overlay engine for LLM-filled insurance forms",
	Long: `Formlens submits medical records to the extraction pipeline, retrieves
the filled insurance form, and flags the fields that need human review.

The review flow includes:
  - Grouping of related sub-fields (yes/no pairs, day/month/year triplets)
  - Missing and low-confidence severity classification
  - Zoom-aware marker anchoring for the embedded form viewer`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.formlens/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "formlens home directory (default: ~/.formlens)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cliout.SetFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
