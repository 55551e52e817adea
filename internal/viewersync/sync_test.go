package viewersync

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/formlens/formlens/internal/overlay"
)

type capturePainter struct {
	mu     sync.Mutex
	paints []overlay.LayerSet
}

func (p *capturePainter) Paint(ls overlay.LayerSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paints = append(p.paints, ls)
}

func (p *capturePainter) waitForMarker(t *testing.T, label string) overlay.PlacedMarker {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		for _, ls := range p.paints {
			for _, layer := range ls {
				for _, m := range layer.Markers {
					if m.Label == label {
						p.mu.Unlock()
						return m
					}
				}
			}
		}
		p.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("marker %q never painted", label)
	return overlay.PlacedMarker{}
}

func (p *capturePainter) waitForClear(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		if n := len(p.paints); n > 0 {
			last := p.paints[n-1]
			empty := true
			for _, layer := range last {
				if len(layer.Markers) > 0 {
					empty = false
				}
			}
			if empty {
				p.mu.Unlock()
				return
			}
		}
		p.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("overlays never cleared")
}

// startPair wires a host and viewer over an in-process pipe with a live
// scheduler, mirroring the production wiring end to end.
func startPair(t *testing.T, ready func() bool) (*Host, *capturePainter, *overlay.Scheduler) {
	t.Helper()

	hostConn, viewerConn := Pipe(16)
	painter := &capturePainter{}
	scheduler := overlay.NewScheduler(painter, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	host := NewHost(hostConn, nil)
	viewer := NewViewer(viewerConn, scheduler, ready, nil,
		WithReadyPoll(time.Millisecond, 20))

	wg.Add(3)
	go func() { defer wg.Done(); scheduler.Run(ctx) }()
	go func() { defer wg.Done(); host.Run(ctx) }()
	go func() { defer wg.Done(); _ = viewer.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		hostConn.Close()
		wg.Wait()
	})

	return host, painter, scheduler
}

func TestHostToViewerApplyAndClear(t *testing.T) {
	host, painter, scheduler := startPair(t, func() bool { return true })

	scheduler.PageRendered(overlay.Page{Number: 1, WidthPx: 1000, HeightPx: 1000})

	ctx := context.Background()
	err := host.ApplyOverlays(ctx, []overlay.Marker{
		{Page: 1, XPct: 50, YPct: 25, Label: "Name", Class: "missing"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	m := painter.waitForMarker(t, "Name")
	if m.XPx != 500 || m.YPx != 250 {
		t.Errorf("expected (500,250), got (%v,%v)", m.XPx, m.YPx)
	}

	if err := host.ClearOverlays(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	painter.waitForClear(t)
}

func TestHostRepushesOnOverlayReady(t *testing.T) {
	hostConn, viewerConn := Pipe(16)
	host := NewHost(hostConn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { defer close(done); host.Run(ctx) }()
	defer func() { cancel(); <-done }()

	err := host.ApplyOverlays(ctx, []overlay.Marker{{Page: 2, Label: "DOB"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Drain the original push.
	<-viewerConn.Receive()

	// The viewer reboots and announces readiness again.
	data, _ := Encode(OverlayReady())
	if err := viewerConn.Send(ctx, data); err != nil {
		t.Fatalf("send ready: %v", err)
	}

	select {
	case raw := <-viewerConn.Receive():
		msg, ok := Decode(raw)
		if !ok || msg.Type != TypeApplyOverlays {
			t.Fatalf("expected an apply-overlays re-push, got %+v", msg)
		}
		if len(msg.Overlays) != 1 || msg.Overlays[0].Label != "DOB" {
			t.Errorf("re-push lost state: %+v", msg.Overlays)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("host never re-pushed after overlay-ready")
	}
}

func TestHostIgnoresReadyBeforeFirstPush(t *testing.T) {
	hostConn, viewerConn := Pipe(16)
	host := NewHost(hostConn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { defer close(done); host.Run(ctx) }()
	defer func() { cancel(); <-done }()

	data, _ := Encode(OverlayReady())
	if err := viewerConn.Send(ctx, data); err != nil {
		t.Fatalf("send ready: %v", err)
	}

	select {
	case raw := <-viewerConn.Receive():
		t.Fatalf("host pushed before holding any state: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestViewerWaitsForEngine(t *testing.T) {
	var ready atomic.Bool
	host, painter, scheduler := startPair(t, ready.Load)

	scheduler.PageRendered(overlay.Page{Number: 1, WidthPx: 1000, HeightPx: 1000})

	// Instruction lands while the engine is still booting; the viewer must
	// hold it until readiness instead of dropping it.
	err := host.ApplyOverlays(context.Background(), []overlay.Marker{
		{Page: 1, XPct: 10, YPct: 10, Label: "Held"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	ready.Store(true)

	painter.waitForMarker(t, "Held")
}

func TestViewerFailsWhenEngineNeverReady(t *testing.T) {
	_, viewerConn := Pipe(16)
	scheduler := overlay.NewScheduler(&capturePainter{}, time.Millisecond)
	viewer := NewViewer(viewerConn, scheduler, func() bool { return false }, nil,
		WithReadyPoll(time.Millisecond, 3))

	err := viewer.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error from an engine that never comes up")
	}
}

func TestPipeSendAfterClose(t *testing.T) {
	hostConn, viewerConn := Pipe(1)
	if err := hostConn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := hostConn.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := viewerConn.Send(context.Background(), []byte("x")); err != ErrConnClosed {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
}
