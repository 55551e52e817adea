package review

import (
	"github.com/formlens/formlens/internal/fields"
)

// DefaultThreshold is the reference confidence threshold. It is a starting
// point for configuration, never read directly by the classifier.
const DefaultThreshold = 0.85

// Classifier partitions a field list into review units. The confidence
// threshold is injected at construction so sessions can tune it
// independently.
type Classifier struct {
	Threshold float64
}

// NewClassifier creates a classifier with the given confidence threshold.
func NewClassifier(threshold float64) *Classifier {
	return &Classifier{Threshold: threshold}
}

type group struct {
	label   string
	members []fields.ExtractedField
}

// Classify partitions fields into units and returns only those that need
// review, in input order. Partitioning is first-match-wins: checkbox group,
// then date group, then single field.
func (c *Classifier) Classify(fs []fields.ExtractedField) []Unit {
	var (
		order    []func() (Unit, bool)
		checkbox = map[string]*group{}
		date     = map[string]*group{}
	)

	addCheckbox := func(key string, f fields.ExtractedField) {
		g, ok := checkbox[key]
		if !ok {
			g = &group{label: fields.TrimYesNoSuffix(f.FieldName)}
			checkbox[key] = g
			order = append(order, func() (Unit, bool) { return c.checkboxUnit(g) })
		}
		g.members = append(g.members, f)
	}

	addDate := func(key string, f fields.ExtractedField) {
		g, ok := date[key]
		if !ok {
			g = &group{label: fields.TrimDatePartSuffix(f.FieldName)}
			date[key] = g
			order = append(order, func() (Unit, bool) { return c.dateUnit(g) })
		}
		g.members = append(g.members, f)
	}

	for _, f := range fs {
		if f.IsCheckboxType() || fields.EndsWithYesNo(f.FieldName) {
			if key := fields.CheckboxBaseKey(f.FieldName); key != "" {
				addCheckbox(key, f)
				continue
			}
		}
		if key := fields.DateBaseKey(f.FieldName); key != "" {
			addDate(key, f)
			continue
		}
		f := f
		order = append(order, func() (Unit, bool) { return c.singleUnit(f) })
	}

	units := make([]Unit, 0, len(order))
	for _, build := range order {
		if u, ok := build(); ok {
			units = append(units, u)
		}
	}
	return units
}

// checkboxUnit flags a yes/no group. The second member anchors the marker
// when both options are present, keeping the chip clear of the "Yes" glyph.
func (c *Classifier) checkboxUnit(g *group) (Unit, bool) {
	anchor := g.members[0]
	if len(g.members) >= 2 {
		anchor = g.members[1]
	}

	allEmpty := true
	lowAnswered := false
	for _, m := range g.members {
		if m.FieldValue == "" {
			continue
		}
		allEmpty = false
		if m.HasConfidence() && *m.Confidence < c.Threshold {
			lowAnswered = true
		}
	}

	var severity Severity
	switch {
	case allEmpty:
		severity = SeverityMissing
	case lowAnswered:
		severity = SeverityLow
	default:
		return Unit{}, false
	}

	return Unit{
		Kind:     KindCheckboxPair,
		Label:    g.label,
		Page:     anchor.Page,
		Severity: severity,
		Fields:   g.members,
		Anchor:   anchor,
	}, true
}

// dateUnit flags a day/month/year group. Incomplete triplets are dropped
// entirely, even when individual members would be flaggable on their own.
func (c *Classifier) dateUnit(g *group) (Unit, bool) {
	if len(g.members) != 3 {
		return Unit{}, false
	}

	anchor := g.members[1]
	for _, m := range g.members {
		if fields.IsYearPart(m.FieldName) {
			anchor = m
			break
		}
	}

	anyEmpty := false
	var sum float64
	var scored int
	for _, m := range g.members {
		if m.FieldValue == "" {
			anyEmpty = true
		}
		if m.HasConfidence() {
			sum += *m.Confidence
			scored++
		}
	}

	var severity Severity
	switch {
	case anyEmpty:
		severity = SeverityMissing
	case scored > 0 && sum/float64(scored) < c.Threshold:
		severity = SeverityLow
	default:
		return Unit{}, false
	}

	return Unit{
		Kind:     KindDateTriplet,
		Label:    g.label,
		Page:     anchor.Page,
		Severity: severity,
		Fields:   g.members,
		Anchor:   anchor,
	}, true
}

func (c *Classifier) singleUnit(f fields.ExtractedField) (Unit, bool) {
	var severity Severity
	switch {
	case f.FieldValue == "":
		severity = SeverityMissing
	case f.HasConfidence() && *f.Confidence < c.Threshold:
		severity = SeverityLow
	default:
		return Unit{}, false
	}

	return Unit{
		Kind:     KindSingle,
		Label:    f.FieldName,
		Page:     f.Page,
		Severity: severity,
		Fields:   []fields.ExtractedField{f},
		Anchor:   f,
	}, true
}
