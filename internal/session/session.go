// Package session owns one review session: the single active generation
// job, the single decoded artifact, and the derived review units pushed to
// the viewing surface. State is replaced wholesale on every generation;
// nothing survives from job to job.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/formlens/formlens/internal/generation"
	"github.com/formlens/formlens/internal/geometry"
	"github.com/formlens/formlens/internal/home"
	"github.com/formlens/formlens/internal/overlay"
	"github.com/formlens/formlens/internal/pipeline"
	"github.com/formlens/formlens/internal/review"
	"github.com/formlens/formlens/internal/viewersync"
)

var (
	// ErrJobActive rejects a double submission. The check happens before
	// any network call is made.
	ErrJobActive = errors.New("session: a generation job is already active")

	// ErrSuperseded is returned to a run that was cancelled by Reset or
	// Close while in flight. Its result is discarded, never applied.
	ErrSuperseded = errors.New("session: job superseded")
)

// ArtifactFileName is the name the filled form is saved under.
const ArtifactFileName = "filled.pdf"

// Session coordinates the generate → classify → overlay flow.
type Session struct {
	id         string
	client     *pipeline.Client
	controller *generation.Controller
	classifier *review.Classifier
	resolver   *geometry.Resolver
	host       *viewersync.Host
	homeDir    *home.Dir
	logger     *slog.Logger

	mu     sync.Mutex
	epoch  uint64
	active bool
	cancel context.CancelFunc
	job    *generation.Job
	units  []review.Unit
}

// Config wires a session's collaborators. Host and HomeDir are optional:
// without a host no overlays are pushed, without a home dir the artifact
// stays in memory.
type Config struct {
	Client     *pipeline.Client
	Controller *generation.Controller
	Classifier *review.Classifier
	Resolver   *geometry.Resolver
	Host       *viewersync.Host
	HomeDir    *home.Dir
	Logger     *slog.Logger
}

// New creates a review session with a fresh identifier.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = geometry.NewResolver()
	}
	return &Session{
		id:         uuid.New().String(),
		client:     cfg.Client,
		controller: cfg.Controller,
		classifier: cfg.Classifier,
		resolver:   resolver,
		host:       cfg.Host,
		homeDir:    cfg.HomeDir,
		logger:     logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Generate runs one full generation cycle: preflight, submit, poll,
// classify and push overlays. It blocks until the job resolves or the
// session is superseded. A second call while one is in flight is rejected
// up front.
func (s *Session) Generate(ctx context.Context, sub pipeline.SubmitRequest) (*generation.Job, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrJobActive
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.active = true
	s.cancel = cancel
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()
	defer cancel()

	if err := s.client.Preflight(runCtx); err != nil {
		s.finish(epoch)
		return nil, err
	}

	job, err := s.controller.Run(runCtx, sub)

	s.mu.Lock()
	if epoch != s.epoch {
		// Superseded mid-flight: whatever came back belongs to a
		// cancelled generation and must not touch session state.
		s.mu.Unlock()
		if job != nil && job.Artifact != nil {
			job.Artifact.Release()
		}
		return nil, ErrSuperseded
	}
	s.active = false
	s.cancel = nil
	if err != nil {
		s.mu.Unlock()
		return job, err
	}

	// Release the previous artifact before owning the new one.
	if s.job != nil && s.job.Artifact != nil {
		if relErr := s.job.Artifact.Release(); relErr != nil {
			s.logger.Warn("failed to release previous artifact", "error", relErr)
		}
	}
	s.job = job
	s.units = s.classifier.Classify(job.Fields)
	units := s.units
	s.mu.Unlock()

	if s.homeDir != nil {
		path, err := job.Artifact.SaveTo(s.homeDir.ArtifactDir(s.id), ArtifactFileName)
		if err != nil {
			return job, fmt.Errorf("artifact save failed: %w", err)
		}
		s.logger.Info("artifact saved", "path", path)
	}

	if s.host != nil {
		markers := overlay.FromUnits(units, s.resolver)
		if err := s.host.ApplyOverlays(ctx, markers); err != nil {
			return job, fmt.Errorf("overlay push failed: %w", err)
		}
	}

	return job, nil
}

// finish clears the active flag if the session was not superseded meanwhile.
func (s *Session) finish(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.epoch {
		s.active = false
		s.cancel = nil
	}
}

// Reset supersedes any in-flight job, releases the held artifact and clears
// pushed overlays. Call it when the user switches the source document.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.active = false
	job := s.job
	s.job = nil
	s.units = nil
	s.mu.Unlock()

	if job != nil && job.Artifact != nil {
		if err := job.Artifact.Release(); err != nil {
			return err
		}
	}
	if s.host != nil {
		return s.host.ClearOverlays(ctx)
	}
	return nil
}

// Close is Reset with a background context, for teardown paths.
func (s *Session) Close() error {
	return s.Reset(context.Background())
}

// Job returns the current terminal job, or nil.
func (s *Session) Job() *generation.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// Units returns the review units of the current job.
func (s *Session) Units() []review.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units
}

// Markers returns the overlay markers for the current units.
func (s *Session) Markers() []overlay.Marker {
	return overlay.FromUnits(s.Units(), s.resolver)
}
