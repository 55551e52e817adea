package overlay

import (
	"testing"

	"github.com/formlens/formlens/internal/fields"
	"github.com/formlens/formlens/internal/geometry"
	"github.com/formlens/formlens/internal/review"
)

func TestFromUnits(t *testing.T) {
	resolver := geometry.NewResolver()

	anchored := fields.ExtractedField{
		FieldName:  "Smoker (No)",
		Page:       2,
		TopLeftPct: &fields.Point{X: 10, Y: 20},
		SizePct:    &fields.Size{W: 2, H: 2},
	}
	bare := fields.ExtractedField{FieldName: "Name", Page: 1}

	units := []review.Unit{
		{
			Kind:     review.KindCheckboxPair,
			Label:    "Smoker",
			Page:     2,
			Severity: review.SeverityMissing,
			Anchor:   anchored,
		},
		{
			Kind:     review.KindSingle,
			Label:    "Name",
			Page:     1,
			Severity: review.SeverityLow,
			Anchor:   bare,
		},
	}

	markers := FromUnits(units, resolver)
	if len(markers) != 1 {
		t.Fatalf("unit without geometry should be skipped, got %d markers", len(markers))
	}

	m := markers[0]
	if m.Page != 2 {
		t.Errorf("expected page 2, got %d", m.Page)
	}
	if m.Label != "Missing" || m.Class != string(review.SeverityMissing) {
		t.Errorf("severity lost: %+v", m)
	}
	if m.XPct != 10+2+geometry.DefaultCheckboxOffsetPct {
		t.Errorf("checkbox offset not applied: %v", m.XPct)
	}
}
