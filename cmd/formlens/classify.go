package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/cliout"
	"github.com/formlens/formlens/internal/config"
	"github.com/formlens/formlens/internal/fields"
	"github.com/formlens/formlens/internal/overlay"
	"github.com/formlens/formlens/internal/review"
)

var classifyThreshold float64

// classifyResult is the structured output of the classify command.
type classifyResult struct {
	Threshold float64          `json:"threshold" yaml:"threshold"`
	Total     int              `json:"total_fields" yaml:"total_fields"`
	Flagged   []review.Unit    `json:"flagged" yaml:"flagged"`
	Markers   []overlay.Marker `json:"markers" yaml:"markers"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify <fields.json>",
	Short: "Classify a saved fields payload offline",
	Long: `Classify runs the review classifier over a fields payload saved from a
previous pipeline run (the {"fields": [...]} shape the status endpoint
returns), without contacting the pipeline.

Useful for tuning the confidence threshold against a known document.

Examples:
  formlens classify ge_form_fields.json
  formlens classify ge_form_fields.json --threshold 0.9 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read fields payload: %w", err)
		}

		fs, err := fields.DecodePayload(raw)
		if err != nil {
			return err
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		threshold := cfg.Review.ConfidenceThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = classifyThreshold
		}
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("confidence threshold must be in [0,1], got %v", threshold)
		}

		units := review.NewClassifier(threshold).Classify(fs)
		markers := overlay.FromUnits(units, cfg.Resolver())

		return cliout.Output(classifyResult{
			Threshold: threshold,
			Total:     len(fs),
			Flagged:   units,
			Markers:   markers,
		})
	},
}

func init() {
	classifyCmd.Flags().Float64Var(&classifyThreshold, "threshold", review.DefaultThreshold, "confidence threshold in [0,1]")

	rootCmd.AddCommand(classifyCmd)
}
