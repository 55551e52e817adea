package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/cliout"
	"github.com/formlens/formlens/internal/config"
	"github.com/formlens/formlens/internal/generation"
	"github.com/formlens/formlens/internal/home"
	"github.com/formlens/formlens/internal/overlay"
	"github.com/formlens/formlens/internal/pipeline"
	"github.com/formlens/formlens/internal/review"
	"github.com/formlens/formlens/internal/session"
)

var (
	reviewTemplate  string
	reviewFieldSpec string
	reviewPipeline  string
	reviewThreshold float64
)

// reviewResult is the structured output of the review command.
type reviewResult struct {
	SessionID    string           `json:"session_id" yaml:"session_id"`
	JobID        string           `json:"job_id" yaml:"job_id"`
	Pages        int              `json:"pages" yaml:"pages"`
	ArtifactPath string           `json:"artifact_path" yaml:"artifact_path"`
	Flagged      []review.Unit    `json:"flagged" yaml:"flagged"`
	Markers      []overlay.Marker `json:"markers" yaml:"markers"`
}

var reviewCmd = &cobra.Command{
	Use:   "review <records.pdf> [more-records.pdf...]",
	Short: "Generate a filled form and flag fields needing review",
	Long: `Review submits source medical records plus a form template to the
extraction pipeline, waits for the filled form, and reports every field
that needs human attention.

The filled PDF is saved under the formlens home directory. Flagged review
units and their overlay markers are printed in the configured output format.

Examples:
  formlens review records.pdf --template ge_form.pdf --field-spec ge_fields.json
  formlens review scan1.pdf scan2.pdf --template form.pdf --field-spec spec.json --threshold 0.9`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		baseURL := reviewPipeline
		if baseURL == "" {
			baseURL = cfg.PipelineURL()
		}
		if baseURL == "" {
			return fmt.Errorf("no pipeline URL configured (set pipeline.base_url or --pipeline)")
		}

		threshold := cfg.Review.ConfidenceThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = reviewThreshold
		}
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("confidence threshold must be in [0,1], got %v", threshold)
		}

		sub, err := buildSubmitRequest(args, reviewTemplate, reviewFieldSpec)
		if err != nil {
			return err
		}

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		client := pipeline.NewClient(baseURL)
		sess := session.New(session.Config{
			Client: client,
			Controller: generation.NewController(
				client, cfg.Pipeline.PollInterval, cfg.Pipeline.PollTimeout, logger,
			),
			Classifier: review.NewClassifier(threshold),
			Resolver:   cfg.Resolver(),
			HomeDir:    h,
			Logger:     logger,
		})

		job, err := sess.Generate(ctx, sub)
		if err != nil {
			return err
		}

		return cliout.Output(reviewResult{
			SessionID:    sess.ID(),
			JobID:        job.ID,
			Pages:        job.Artifact.PageCount(),
			ArtifactPath: job.Artifact.Path(),
			Flagged:      sess.Units(),
			Markers:      sess.Markers(),
		})
	},
}

// buildSubmitRequest reads the source documents, template and field spec
// from disk into a submission.
func buildSubmitRequest(docPaths []string, templatePath, fieldSpecPath string) (pipeline.SubmitRequest, error) {
	var sub pipeline.SubmitRequest

	if templatePath == "" {
		return sub, fmt.Errorf("--template is required")
	}
	if fieldSpecPath == "" {
		return sub, fmt.Errorf("--field-spec is required")
	}

	for _, p := range docPaths {
		doc, err := readDocument(p)
		if err != nil {
			return sub, err
		}
		sub.Documents = append(sub.Documents, doc)
	}

	var err error
	if sub.Template, err = readDocument(templatePath); err != nil {
		return sub, err
	}
	if sub.FieldSpec, err = readDocument(fieldSpecPath); err != nil {
		return sub, err
	}
	return sub, nil
}

func readDocument(path string) (pipeline.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return pipeline.Document{Name: filepath.Base(path), Data: data}, nil
}

func init() {
	reviewCmd.Flags().StringVar(&reviewTemplate, "template", "", "target form template PDF")
	reviewCmd.Flags().StringVar(&reviewFieldSpec, "field-spec", "", "field-coordinate specification JSON")
	reviewCmd.Flags().StringVar(&reviewPipeline, "pipeline", "", "pipeline base URL (overrides config)")
	reviewCmd.Flags().Float64Var(&reviewThreshold, "threshold", review.DefaultThreshold, "confidence threshold in [0,1]")

	rootCmd.AddCommand(reviewCmd)
}
