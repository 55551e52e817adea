// Package review partitions extracted form fields into reviewable units and
// decides which of them need human attention.
package review

import "github.com/formlens/formlens/internal/fields"

// Kind identifies the grouping shape of a review unit.
type Kind string

const (
	KindSingle       Kind = "single"
	KindCheckboxPair Kind = "checkbox_pair"
	KindDateTriplet  Kind = "date_triplet"
)

// Severity classifies why a unit is flagged.
type Severity string

const (
	SeverityMissing Severity = "missing"
	SeverityLow     Severity = "low"
)

// Label returns the marker label shown next to the field.
func (s Severity) Label() string {
	if s == SeverityMissing {
		return "Missing"
	}
	return "Low"
}

// Unit is one flaggable item: a single field, a yes/no checkbox pair or a
// day/month/year date triplet. Anchor is the member that hosts the visual
// marker.
type Unit struct {
	Kind     Kind                    `json:"kind"`
	Label    string                  `json:"label"`
	Page     int                     `json:"page"`
	Severity Severity                `json:"severity"`
	Fields   []fields.ExtractedField `json:"fields"`
	Anchor   fields.ExtractedField   `json:"anchor"`
}
