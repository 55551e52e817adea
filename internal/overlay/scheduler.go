package overlay

import (
	"context"
	"time"
)

// DefaultFrameInterval approximates one paint frame. Viewport events inside
// a single frame collapse into one redraw.
const DefaultFrameInterval = 16 * time.Millisecond

// Painter receives computed layer sets. Implementations apply them to the
// actual viewing surface.
type Painter interface {
	Paint(LayerSet)
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(LayerSet)

func (f PainterFunc) Paint(ls LayerSet) { f(ls) }

type eventKind int

const (
	evApply eventKind = iota
	evClear
	evPageRendered
	evViewport
)

type event struct {
	kind    eventKind
	markers []Marker
	page    Page
	pages   []Page
}

// Scheduler serializes all redraw triggers onto one goroutine and replays
// the full current marker set on every redraw. Page-render and apply/clear
// events redraw immediately; viewport bursts coalesce to at most one redraw
// per frame interval, latest state winning.
type Scheduler struct {
	painter  Painter
	interval time.Duration
	events   chan event
	done     chan struct{}
}

// NewScheduler creates a scheduler painting through the given painter.
// A non-positive frameInterval falls back to DefaultFrameInterval.
func NewScheduler(painter Painter, frameInterval time.Duration) *Scheduler {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Scheduler{
		painter:  painter,
		interval: frameInterval,
		events:   make(chan event, 64),
		done:     make(chan struct{}),
	}
}

// Apply replaces the full marker set and redraws.
func (s *Scheduler) Apply(markers []Marker) {
	s.send(event{kind: evApply, markers: markers})
}

// Clear empties the marker set and redraws.
func (s *Scheduler) Clear() {
	s.send(event{kind: evClear})
}

// PageRendered reports that a page finished rendering (covers first paint,
// zoom change and rotation) at its new size.
func (s *Scheduler) PageRendered(p Page) {
	s.send(event{kind: evPageRendered, page: p})
}

// ViewportChanged reports the new set of visible pages after a scroll or
// resize. Bursts are coalesced.
func (s *Scheduler) ViewportChanged(pages []Page) {
	s.send(event{kind: evViewport, pages: pages})
}

func (s *Scheduler) send(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Run processes events until the context is cancelled. It must be called
// exactly once; all paints happen on this goroutine, strictly after the
// marker set that triggered them was fully computed.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	var (
		markers []Marker
		visible []Page

		pending     []Page
		havePending bool
		frame       *time.Timer
		frameC      <-chan time.Time
	)

	redraw := func() { s.painter.Paint(Render(markers, visible)) }
	armFrame := func() {
		if frame == nil {
			frame = time.NewTimer(s.interval)
			frameC = frame.C
		} else {
			frame.Reset(s.interval)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if frame != nil {
				frame.Stop()
			}
			return

		case ev := <-s.events:
			switch ev.kind {
			case evApply:
				markers = ev.markers
				redraw()
			case evClear:
				markers = nil
				redraw()
			case evPageRendered:
				visible = upsertPage(visible, ev.page)
				redraw()
			case evViewport:
				pending = ev.pages
				if !havePending {
					havePending = true
					armFrame()
				}
			}

		case <-frameC:
			if havePending {
				visible = pending
				pending = nil
				havePending = false
				redraw()
			}
		}
	}
}

func upsertPage(pages []Page, p Page) []Page {
	for i := range pages {
		if pages[i].Number == p.Number {
			pages[i] = p
			return pages
		}
	}
	return append(pages, p)
}
