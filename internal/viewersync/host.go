package viewersync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/formlens/formlens/internal/overlay"
)

// Host is the application side of the protocol. It pushes overlay
// instructions to the viewer and remembers the last one sent, so that when
// the viewer reboots (document swap, reload) and announces overlay-ready,
// the full state can be replayed.
type Host struct {
	conn   Conn
	logger *slog.Logger

	mu      sync.Mutex
	last    Message
	hasLast bool
}

// NewHost creates a host side over the given connection.
func NewHost(conn Conn, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{conn: conn, logger: logger}
}

// ApplyOverlays replaces the viewer's overlay set.
func (h *Host) ApplyOverlays(ctx context.Context, markers []overlay.Marker) error {
	return h.push(ctx, ApplyOverlays(markers))
}

// ClearOverlays empties the viewer's overlay set.
func (h *Host) ClearOverlays(ctx context.Context) error {
	return h.push(ctx, ClearOverlays())
}

func (h *Host) push(ctx context.Context, m Message) error {
	h.mu.Lock()
	h.last = m
	h.hasLast = true
	h.mu.Unlock()
	return h.send(ctx, m)
}

func (h *Host) send(ctx context.Context, m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return h.conn.Send(ctx, data)
}

// Run consumes viewer messages until the context ends or the connection
// closes. Every overlay-ready means the viewer holds no state: the host
// re-sends the last known instruction. Anything malformed is dropped.
func (h *Host) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-h.conn.Receive():
			if !ok {
				return
			}
			msg, ok := Decode(data)
			if !ok {
				continue
			}
			if msg.Type != TypeOverlayReady {
				continue
			}

			h.mu.Lock()
			last, hasLast := h.last, h.hasLast
			h.mu.Unlock()
			if !hasLast {
				continue
			}
			if err := h.send(ctx, last); err != nil {
				h.logger.Warn("overlay re-push failed", "error", err)
			} else {
				h.logger.Debug("overlay state re-pushed", "type", last.Type)
			}
		}
	}
}
