package overlay

import (
	"reflect"
	"testing"
)

func TestRenderPixelPlacement(t *testing.T) {
	markers := []Marker{
		{Page: 1, XPct: 50, YPct: 25, Label: "Name", Class: "missing"},
		{Page: 2, XPct: 10, YPct: 90, Label: "DOB", Class: "low"},
	}
	visible := []Page{
		{Number: 1, WidthPx: 800, HeightPx: 1000, Scale: 1.0},
		{Number: 2, WidthPx: 1600, HeightPx: 2000, Scale: 2.0},
	}

	layers := Render(markers, visible)
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}

	if len(layers[0].Markers) != 1 {
		t.Fatalf("expected 1 marker on page 1, got %d", len(layers[0].Markers))
	}
	m := layers[0].Markers[0]
	if m.XPx != 400 || m.YPx != 250 {
		t.Errorf("expected (400,250), got (%v,%v)", m.XPx, m.YPx)
	}
	if m.Scale != 1.0 {
		t.Errorf("expected scale 1.0, got %v", m.Scale)
	}

	m = layers[1].Markers[0]
	if m.XPx != 160 || m.YPx != 1800 {
		t.Errorf("expected (160,1800), got (%v,%v)", m.XPx, m.YPx)
	}
	if m.Scale != 2.0 {
		t.Errorf("expected scale 2.0, got %v", m.Scale)
	}
}

func TestRenderCoversLayerSizing(t *testing.T) {
	layers := Render(nil, []Page{{Number: 3, WidthPx: 640, HeightPx: 480}})
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}
	l := layers[0]
	if l.Page != 3 || l.WidthPx != 640 || l.HeightPx != 480 {
		t.Errorf("layer does not match its page: %+v", l)
	}
	if l.Markers == nil || len(l.Markers) != 0 {
		t.Errorf("expected empty marker slice, got %+v", l.Markers)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	markers := []Marker{
		{Page: 1, XPct: 12.5, YPct: 33.3, Label: "Smoker", Class: "missing"},
		{Page: 1, XPct: 80, YPct: 10, Label: "DOB", Class: "low"},
	}
	visible := []Page{{Number: 1, WidthPx: 1024, HeightPx: 768, Scale: 1.25}}

	first := Render(markers, visible)
	second := Render(markers, visible)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated renders of the same inputs differ")
	}
	if len(first[0].Markers) != 2 {
		t.Errorf("expected 2 markers, got %d", len(first[0].Markers))
	}
}

func TestRenderSkipsInvisiblePages(t *testing.T) {
	markers := []Marker{{Page: 7, XPct: 50, YPct: 50}}
	layers := Render(markers, []Page{{Number: 1, WidthPx: 800, HeightPx: 1000}})
	if len(layers) != 1 || len(layers[0].Markers) != 0 {
		t.Errorf("marker for an invisible page leaked into the layer set: %+v", layers)
	}
}
