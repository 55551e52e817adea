// Package fields defines the extracted form-field model produced by the
// remote extraction pipeline and the normalization applied before any
// classification or anchoring.
package fields

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Point is a position in percentage-of-page-surface units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a bounding-box size in percentage-of-page-surface units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ExtractedField is one form field as reported by the pipeline.
//
// Confidence is nil when the pipeline did not score the field. The pipeline
// historically emits confidence as an empty string for unscored fields, so
// decoding accepts a number, a numeric string, "" or null.
type ExtractedField struct {
	FieldName  string   `json:"field_name"`
	FieldValue string   `json:"field_value"`
	FieldType  string   `json:"field_type"`
	Page       int      `json:"page"`
	Confidence *float64 `json:"confidence"`

	TopLeftPct *Point `json:"top_left_pct,omitempty"`
	CenterPct  *Point `json:"center_pct,omitempty"`
	SizePct    *Size  `json:"size_pct,omitempty"`
}

// Payload is the wire shape the pipeline uses for a field list.
type Payload struct {
	Fields []ExtractedField `json:"fields"`
}

// UnmarshalJSON decodes a field, tolerating the pipeline's loose confidence
// encoding. NaN and non-numeric values become nil.
func (f *ExtractedField) UnmarshalJSON(data []byte) error {
	type alias ExtractedField
	aux := struct {
		alias
		Confidence json.RawMessage `json:"confidence"`
	}{alias: alias(*f)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to decode field: %w", err)
	}
	*f = ExtractedField(aux.alias)
	f.Confidence = parseConfidence(aux.Confidence)
	return nil
}

func parseConfidence(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if math.IsNaN(num) {
			return nil
		}
		return &num
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(num) {
		return nil
	}
	return &num
}

// HasConfidence reports whether the field carries a usable confidence score.
func (f *ExtractedField) HasConfidence() bool {
	return f.Confidence != nil && !math.IsNaN(*f.Confidence)
}

// Anchorable reports whether the field carries enough geometry to place a
// marker. Fields without geometry stay in the data set but are never drawn.
func (f *ExtractedField) Anchorable() bool {
	return f.TopLeftPct != nil && f.SizePct != nil
}

// IsCheckboxType reports whether the free-form type tag marks a checkbox.
func (f *ExtractedField) IsCheckboxType() bool {
	return strings.Contains(strings.ToLower(f.FieldType), "checkbox")
}

// Normalize clamps all percentage coordinates into [0,100], maps the known
// upstream off-by-one page 0 to page 1 and drops NaN confidence scores.
// It mutates the slice in place and returns it for chaining.
func Normalize(fs []ExtractedField) []ExtractedField {
	for i := range fs {
		f := &fs[i]
		if f.Page <= 0 {
			f.Page = 1
		}
		if f.Confidence != nil && math.IsNaN(*f.Confidence) {
			f.Confidence = nil
		}
		if f.TopLeftPct != nil {
			f.TopLeftPct.X = ClampPct(f.TopLeftPct.X)
			f.TopLeftPct.Y = ClampPct(f.TopLeftPct.Y)
		}
		if f.CenterPct != nil {
			f.CenterPct.X = ClampPct(f.CenterPct.X)
			f.CenterPct.Y = ClampPct(f.CenterPct.Y)
		}
		if f.SizePct != nil {
			f.SizePct.W = ClampPct(f.SizePct.W)
			f.SizePct.H = ClampPct(f.SizePct.H)
		}
	}
	return fs
}

// ClampPct clamps a percentage value into [0,100]. NaN clamps to 0.
func ClampPct(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
