// Package overlay computes the visual marker layers drawn over rendered
// form pages. Rendering is a pure function of the marker set and the pages
// currently visible, so it can be tested without a live viewing surface.
package overlay

import (
	"github.com/formlens/formlens/internal/geometry"
	"github.com/formlens/formlens/internal/review"
)

// Marker is one rendering unit, produced 1:1 from a visible review unit.
// Coordinates are percentage-of-page-surface; pixel conversion happens at
// paint time against the page's current rendered size.
type Marker struct {
	Page  int     `json:"page"`
	XPct  float64 `json:"x_pct"`
	YPct  float64 `json:"y_pct"`
	Label string  `json:"label"`
	Class string  `json:"class"`
}

// FromUnits converts review units into markers. Units whose anchor field
// cannot be geometrically placed are silently skipped; that is the only
// locally recovered error in the whole flow.
func FromUnits(units []review.Unit, resolver *geometry.Resolver) []Marker {
	markers := make([]Marker, 0, len(units))
	for _, u := range units {
		pos, ok := resolver.Anchor(u.Anchor, u.Kind)
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			Page:  u.Page,
			XPct:  pos.X,
			YPct:  pos.Y,
			Label: u.Severity.Label(),
			Class: string(u.Severity),
		})
	}
	return markers
}
