package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/formlens/formlens/internal/artifact"
	"github.com/formlens/formlens/internal/fields"
	"github.com/formlens/formlens/internal/pipeline"
)

// Reference tuning values; both are injected configuration, not constants
// read by the controller.
const (
	DefaultPollInterval = 25 * time.Second
	DefaultPollTimeout  = 15 * time.Minute
)

// Controller runs generation jobs against the pipeline. It holds no job
// state itself: every Run owns its Job exclusively and nothing is shared
// across runs, so superseding a job is done by cancelling its context.
type Controller struct {
	client       *pipeline.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger
}

// NewController creates a controller. Non-positive durations fall back to
// the reference values.
func NewController(client *pipeline.Client, pollInterval, pollTimeout time.Duration, logger *slog.Logger) *Controller {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		client:       client,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

// Run submits the request and polls until the job resolves, the poll window
// closes or the context is cancelled. The returned job is terminal; its
// artifact and fields are emitted exactly once, here. Callers enforce the
// one-active-job rule before calling.
//
// A cancelled context stops the loop without touching anything: the caller
// that superseded the job owns all shared state from that point on.
func (c *Controller) Run(ctx context.Context, sub pipeline.SubmitRequest) (*Job, error) {
	job := &Job{Status: StatusIdle}

	jobID, err := c.client.Submit(ctx, sub)
	if err != nil {
		job.Status = StatusError
		job.ErrorMessage = err.Error()
		return job, err
	}
	job.ID = jobID
	job.Status = StatusSubmitted
	c.logger.Info("job submitted", "job_id", jobID)

	job.Status = StatusPending
	deadline := time.NewTimer(c.pollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.client.Status(ctx, jobID)
		if err != nil {
			// No per-response retry: one bad poll fails the job.
			job.Status = StatusError
			job.ErrorMessage = err.Error()
			return job, err
		}

		switch status.Status {
		case pipeline.StatusCompleted:
			return c.complete(job, status)
		case pipeline.StatusError:
			msg := status.Error
			if msg == "" {
				msg = "remote job failed without a message"
			}
			job.Status = StatusError
			job.ErrorMessage = msg
			return job, fmt.Errorf("%w: %s", pipeline.ErrRemoteProcessing, msg)
		}

		c.logger.Debug("job pending", "job_id", jobID)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			job.Status = StatusError
			job.ErrorMessage = ErrPollTimeout.Error()
			return job, fmt.Errorf("%w after %s", ErrPollTimeout, c.pollTimeout)
		case <-ticker.C:
		}
	}
}

func (c *Controller) complete(job *Job, status *pipeline.StatusResponse) (*Job, error) {
	art, err := artifact.Decode(status.ArtifactB64)
	if err != nil {
		job.Status = StatusError
		job.ErrorMessage = err.Error()
		return job, err
	}

	fs, err := fields.DecodePayload(status.Fields)
	if err != nil {
		art.Release()
		job.Status = StatusError
		job.ErrorMessage = err.Error()
		return job, fmt.Errorf("%w: %v", pipeline.ErrPoll, err)
	}

	job.Status = StatusCompleted
	job.Artifact = art
	job.Fields = fs
	c.logger.Info("job completed", "job_id", job.ID, "pages", art.PageCount(), "fields", len(fs))
	return job, nil
}
