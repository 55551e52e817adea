package overlay

// Page describes one currently visible page of the viewing surface, at its
// current rendered pixel size. Scale is carried through for marker chip
// styling only; position math uses the rendered size directly.
type Page struct {
	Number   int     `json:"number"`
	WidthPx  float64 `json:"width_px"`
	HeightPx float64 `json:"height_px"`
	Scale    float64 `json:"scale"`
}

// PlacedMarker is a marker resolved to pixel coordinates on a page layer.
type PlacedMarker struct {
	Marker
	XPx   float64 `json:"x_px"`
	YPx   float64 `json:"y_px"`
	Scale float64 `json:"scale"`
}

// Layer is the full marker state for one page, sized exactly over the
// page's rendered canvas and input-transparent by contract.
type Layer struct {
	Page     int            `json:"page"`
	WidthPx  float64        `json:"width_px"`
	HeightPx float64        `json:"height_px"`
	Markers  []PlacedMarker `json:"markers"`
}

// LayerSet is the complete overlay state for all visible pages, in page
// order. Each render replaces the previous set wholesale.
type LayerSet []Layer

// Render computes layers for the given markers and visible pages. It is
// deterministic and has no internal state: rendering the same inputs twice
// yields an identical, non-duplicated layer set.
func Render(markers []Marker, visible []Page) LayerSet {
	layers := make(LayerSet, 0, len(visible))
	for _, p := range visible {
		layer := Layer{
			Page:     p.Number,
			WidthPx:  p.WidthPx,
			HeightPx: p.HeightPx,
			Markers:  []PlacedMarker{},
		}
		for _, m := range markers {
			if m.Page != p.Number {
				continue
			}
			layer.Markers = append(layer.Markers, PlacedMarker{
				Marker: m,
				XPx:    m.XPct / 100 * p.WidthPx,
				YPx:    m.YPct / 100 * p.HeightPx,
				Scale:  p.Scale,
			})
		}
		layers = append(layers, layer)
	}
	return layers
}
