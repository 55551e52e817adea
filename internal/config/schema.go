package config

import (
	"time"

	"github.com/formlens/formlens/internal/generation"
	"github.com/formlens/formlens/internal/geometry"
	"github.com/formlens/formlens/internal/review"
	"github.com/formlens/formlens/internal/viewersync"
)

// Config holds formlens configuration.
// Stored at: ./config.yaml or ~/.formlens/config.yaml
type Config struct {
	Pipeline PipelineCfg `mapstructure:"pipeline" yaml:"pipeline"`
	Review   ReviewCfg   `mapstructure:"review" yaml:"review"`
	Overlay  OverlayCfg  `mapstructure:"overlay" yaml:"overlay"`
	Viewer   ViewerCfg   `mapstructure:"viewer" yaml:"viewer"`
}

// PipelineCfg configures the remote extraction pipeline client.
type PipelineCfg struct {
	// BaseURL is the root of the pipeline service (supports ${ENV_VAR} syntax).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// PollInterval is the fixed wait between status polls.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// PollTimeout bounds the total poll duration for one job.
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
}

// ReviewCfg configures the field classifier.
type ReviewCfg struct {
	// ConfidenceThreshold in [0,1]; answered fields scored below it are
	// flagged for review. The primary tuning knob of the whole system.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
}

// OverlayCfg configures marker anchoring. All values are percentage points.
type OverlayCfg struct {
	CheckboxOffsetPct float64 `mapstructure:"checkbox_offset_pct" yaml:"checkbox_offset_pct"`
	DatePartOffsetPct float64 `mapstructure:"date_part_offset_pct" yaml:"date_part_offset_pct"`
	VerticalNudgePct  float64 `mapstructure:"vertical_nudge_pct" yaml:"vertical_nudge_pct"`
}

// ViewerCfg configures the viewing-surface readiness poll.
type ViewerCfg struct {
	ReadyPollInterval time.Duration `mapstructure:"ready_poll_interval" yaml:"ready_poll_interval"`
	ReadyPollAttempts uint          `mapstructure:"ready_poll_attempts" yaml:"ready_poll_attempts"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineCfg{
			BaseURL:      "${FORMLENS_PIPELINE_URL}",
			PollInterval: generation.DefaultPollInterval,
			PollTimeout:  generation.DefaultPollTimeout,
		},
		Review: ReviewCfg{
			ConfidenceThreshold: review.DefaultThreshold,
		},
		Overlay: OverlayCfg{
			CheckboxOffsetPct: geometry.DefaultCheckboxOffsetPct,
			DatePartOffsetPct: geometry.DefaultDatePartOffsetPct,
			VerticalNudgePct:  geometry.DefaultVerticalNudgePct,
		},
		Viewer: ViewerCfg{
			ReadyPollInterval: viewersync.DefaultReadyPollInterval,
			ReadyPollAttempts: viewersync.DefaultReadyPollAttempts,
		},
	}
}

// Resolver builds a geometry resolver from the overlay settings.
func (c *Config) Resolver() *geometry.Resolver {
	return &geometry.Resolver{
		CheckboxOffsetPct: c.Overlay.CheckboxOffsetPct,
		DatePartOffsetPct: c.Overlay.DatePartOffsetPct,
		VerticalNudgePct:  c.Overlay.VerticalNudgePct,
	}
}
