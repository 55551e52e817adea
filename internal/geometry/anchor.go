// Package geometry converts percentage-space field positions into marker
// anchor points. Pixel conversion happens in the overlay renderer against
// whatever size the page is currently drawn at, so anchors stay zoom-correct.
package geometry

import (
	"github.com/formlens/formlens/internal/fields"
	"github.com/formlens/formlens/internal/review"
)

// Reference offsets, in percentage points. The checkbox nudge is larger to
// keep the marker clear of the adjacent checkbox glyph; the date nudge keeps
// the marker tight against a terminal year field. Empirically tuned values,
// kept configurable.
const (
	DefaultCheckboxOffsetPct = 2.5
	DefaultDatePartOffsetPct = 0.6
	DefaultVerticalNudgePct  = 1.0
)

// Resolver computes marker anchor positions from field geometry.
type Resolver struct {
	CheckboxOffsetPct float64
	DatePartOffsetPct float64
	VerticalNudgePct  float64
}

// NewResolver returns a resolver with the reference offsets.
func NewResolver() *Resolver {
	return &Resolver{
		CheckboxOffsetPct: DefaultCheckboxOffsetPct,
		DatePartOffsetPct: DefaultDatePartOffsetPct,
		VerticalNudgePct:  DefaultVerticalNudgePct,
	}
}

// Anchor returns the marker anchor for a field, in percentage units. The
// second return is false when the field carries no usable geometry; the
// caller drops the unit from rendering and nothing else.
//
// Both coordinates are clamped into [0,100] after computation. That is a
// hard post-condition: downstream pixel math assumes on-surface positions.
func (r *Resolver) Anchor(f fields.ExtractedField, kind review.Kind) (fields.Point, bool) {
	if !f.Anchorable() {
		return fields.Point{}, false
	}

	x := f.TopLeftPct.X + f.SizePct.W + r.offset(f, kind)

	y := f.TopLeftPct.Y + f.SizePct.H/2
	if f.CenterPct != nil {
		y = f.CenterPct.Y
	}
	y -= r.VerticalNudgePct // sit just above the field, not on it

	return fields.Point{X: fields.ClampPct(x), Y: fields.ClampPct(y)}, true
}

func (r *Resolver) offset(f fields.ExtractedField, kind review.Kind) float64 {
	switch {
	case kind == review.KindCheckboxPair || f.IsCheckboxType():
		return r.CheckboxOffsetPct
	case kind == review.KindDateTriplet || fields.DatePartSuffix(f.FieldName) != "":
		return r.DatePartOffsetPct
	default:
		return 0
	}
}
