package overlay

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingPainter collects every painted layer set.
type recordingPainter struct {
	mu     sync.Mutex
	paints []LayerSet
}

func (p *recordingPainter) Paint(ls LayerSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paints = append(p.paints, ls)
}

func (p *recordingPainter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paints)
}

func (p *recordingPainter) last() (LayerSet, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.paints) == 0 {
		return nil, false
	}
	return p.paints[len(p.paints)-1], true
}

func (p *recordingPainter) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.count() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d paints, have %d", n, p.count())
}

func startScheduler(t *testing.T, painter Painter, interval time.Duration) *Scheduler {
	t.Helper()
	s := NewScheduler(painter, interval)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func TestSchedulerApplyAndClear(t *testing.T) {
	painter := &recordingPainter{}
	s := startScheduler(t, painter, time.Millisecond)

	s.PageRendered(Page{Number: 1, WidthPx: 800, HeightPx: 1000})
	painter.waitFor(t, 1)

	s.Apply([]Marker{{Page: 1, XPct: 50, YPct: 50, Label: "Name"}})
	painter.waitFor(t, 2)

	ls, _ := painter.last()
	if len(ls) != 1 || len(ls[0].Markers) != 1 {
		t.Fatalf("expected one marker on one layer, got %+v", ls)
	}

	s.Clear()
	painter.waitFor(t, 3)
	ls, _ = painter.last()
	if len(ls) != 1 || len(ls[0].Markers) != 0 {
		t.Fatalf("expected cleared layer, got %+v", ls)
	}
}

func TestSchedulerRepaintsOnPageRender(t *testing.T) {
	painter := &recordingPainter{}
	s := startScheduler(t, painter, time.Millisecond)

	s.Apply([]Marker{{Page: 1, XPct: 50, YPct: 50}})
	painter.waitFor(t, 1)

	// Zoom: the page re-renders at a new size and markers must follow it.
	s.PageRendered(Page{Number: 1, WidthPx: 1600, HeightPx: 2000})
	painter.waitFor(t, 2)

	ls, _ := painter.last()
	if len(ls) != 1 {
		t.Fatalf("expected one layer, got %d", len(ls))
	}
	if ls[0].Markers[0].XPx != 800 || ls[0].Markers[0].YPx != 1000 {
		t.Errorf("marker did not track the new page size: %+v", ls[0].Markers[0])
	}
}

func TestSchedulerCoalescesViewportBursts(t *testing.T) {
	painter := &recordingPainter{}
	s := startScheduler(t, painter, 50*time.Millisecond)

	s.Apply([]Marker{{Page: 3, XPct: 10, YPct: 10}})
	painter.waitFor(t, 1)

	// A scroll burst: many viewport updates within one frame interval.
	for i := 1; i <= 10; i++ {
		s.ViewportChanged([]Page{{Number: i, WidthPx: 800, HeightPx: 1000}})
	}

	painter.waitFor(t, 2)
	time.Sleep(100 * time.Millisecond)

	if got := painter.count(); got != 2 {
		t.Errorf("expected the burst to coalesce into one redraw, got %d paints total", got)
	}

	ls, _ := painter.last()
	if len(ls) != 1 || ls[0].Page != 10 {
		t.Errorf("expected the latest viewport to win, got %+v", ls)
	}
	if len(ls[0].Markers) != 0 {
		t.Errorf("marker for page 3 should not appear on page 10: %+v", ls[0].Markers)
	}
}

func TestSchedulerSendAfterStopDoesNotBlock(t *testing.T) {
	painter := &recordingPainter{}
	s := NewScheduler(painter, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	cancel()
	<-done

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 100; i++ {
			s.Apply(nil)
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("send blocked after scheduler shutdown")
	}
}
