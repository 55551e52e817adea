package viewersync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/formlens/formlens/internal/overlay"
)

// ErrEngineNotReady is returned when the render engine never became ready
// within the bounded readiness poll.
var ErrEngineNotReady = errors.New("viewersync: render engine not ready")

// Reference bounds for the readiness poll: short fixed interval, bounded
// attempts. Overlay instructions arriving before the engine is up wait on
// this poll instead of being dropped.
const (
	DefaultReadyPollInterval = 100 * time.Millisecond
	DefaultReadyPollAttempts = 50
)

// Viewer is the surface side of the protocol. It bridges inbound overlay
// instructions onto the overlay scheduler once the render engine is up.
type Viewer struct {
	conn      Conn
	scheduler *overlay.Scheduler
	ready     func() bool
	logger    *slog.Logger

	pollInterval time.Duration
	pollAttempts uint
}

// ViewerOption adjusts viewer construction.
type ViewerOption func(*Viewer)

// WithReadyPoll overrides the readiness poll interval and attempt bound.
func WithReadyPoll(interval time.Duration, attempts uint) ViewerOption {
	return func(v *Viewer) {
		if interval > 0 {
			v.pollInterval = interval
		}
		if attempts > 0 {
			v.pollAttempts = attempts
		}
	}
}

// NewViewer creates the viewer side. ready probes whether the internal
// render engine has initialized; it is polled, never assumed.
func NewViewer(conn Conn, scheduler *overlay.Scheduler, ready func() bool, logger *slog.Logger, opts ...ViewerOption) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Viewer{
		conn:         conn,
		scheduler:    scheduler,
		ready:        ready,
		logger:       logger,
		pollInterval: DefaultReadyPollInterval,
		pollAttempts: DefaultReadyPollAttempts,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run announces readiness and then serves overlay instructions until the
// context ends or the connection closes. A fresh Run corresponds to a fresh
// viewer boot, so overlay-ready is sent exactly once per Run.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.awaitEngine(ctx); err != nil {
		return err
	}

	data, err := Encode(OverlayReady())
	if err != nil {
		return err
	}
	if err := v.conn.Send(ctx, data); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-v.conn.Receive():
			if !ok {
				return nil
			}
			msg, ok := Decode(raw)
			if !ok {
				continue
			}
			v.handle(ctx, msg)
		}
	}
}

func (v *Viewer) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case TypeApplyOverlays, TypeClearOverlays:
		// The engine can drop out between instructions (document swap
		// mid-session); each instruction waits for it again.
		if err := v.awaitEngine(ctx); err != nil {
			v.logger.Warn("overlay instruction dropped", "type", msg.Type, "error", err)
			return
		}
		if msg.Type == TypeClearOverlays {
			v.scheduler.Clear()
			return
		}
		v.scheduler.Apply(msg.Overlays)
	default:
		// overlay-ready is host-bound; nothing else reaches here.
	}
}

func (v *Viewer) awaitEngine(ctx context.Context) error {
	if v.ready() {
		return nil
	}
	err := retry.Do(
		func() error {
			if v.ready() {
				return nil
			}
			return ErrEngineNotReady
		},
		retry.Context(ctx),
		retry.Attempts(v.pollAttempts),
		retry.Delay(v.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}
	return nil
}
