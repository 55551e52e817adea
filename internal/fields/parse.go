package fields

import (
	"regexp"
	"strings"
)

// Field names arrive as free-form strings authored by whoever built the PDF
// template. All suffix parsing is concentrated here so grouping logic never
// touches raw names.

var (
	// Trailing yes/no token with optional separator or parentheses:
	// "Smoker (Yes)", "Smoker-No", "Smoker Yes", "SmokerYes".
	yesNoSuffixRe = regexp.MustCompile(`(?i)[\s\-_]*\(?\s*(yes|no)\s*\)?\s*$`)

	// Trailing date-part suffix: "(dd)", "( mm )", "(YYYY)".
	datePartSuffixRe = regexp.MustCompile(`(?i)\(\s*(dd|mm|yyyy)\s*\)\s*$`)

	// Runs of whitespace or dashes collapse to a single space so that
	// "DOB - (dd)" and "DOB (dd)" share a base key.
	wsDashRunRe = regexp.MustCompile(`[\s\-]+`)

	quoteNormalizer = strings.NewReplacer(
		"‘", "'", "’", "'", "“", `"`, "”", `"`,
	)
)

// EndsWithYesNo reports whether the field name ends in a yes/no token.
func EndsWithYesNo(name string) bool {
	m := yesNoSuffixRe.FindStringSubmatch(name)
	return m != nil && strings.TrimSpace(name) != "" && m[1] != ""
}

// CheckboxBaseKey strips a trailing yes/no token from a field name and
// returns the normalized remainder. An empty result means the name carries
// no usable base key and the field cannot join a checkbox group.
func CheckboxBaseKey(name string) string {
	if !EndsWithYesNo(name) {
		return ""
	}
	base := yesNoSuffixRe.ReplaceAllString(name, "")
	return normalizeKey(base)
}

// DatePartSuffix returns the lower-cased date suffix ("dd", "mm" or "yyyy")
// if the name ends with one, else "".
func DatePartSuffix(name string) string {
	m := datePartSuffixRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// DateBaseKey strips a trailing (dd)/(mm)/(yyyy) suffix after normalizing
// quote characters and collapsing whitespace/dash runs. An empty result means
// the field cannot join a date group.
func DateBaseKey(name string) string {
	if DatePartSuffix(name) == "" {
		return ""
	}
	base := datePartSuffixRe.ReplaceAllString(strings.TrimSpace(name), "")
	return normalizeKey(base)
}

// IsYearPart reports whether a field name carries the year suffix. The year
// member is the preferred anchor of a date triplet.
func IsYearPart(name string) bool {
	return DatePartSuffix(name) == "yyyy"
}

// TrimYesNoSuffix returns the field name with a trailing yes/no token
// removed, preserving the original casing. Used for display labels.
func TrimYesNoSuffix(name string) string {
	return strings.TrimSpace(yesNoSuffixRe.ReplaceAllString(name, ""))
}

// TrimDatePartSuffix returns the field name with a trailing date-part suffix
// removed, preserving the original casing. Used for display labels.
func TrimDatePartSuffix(name string) string {
	return strings.TrimSpace(datePartSuffixRe.ReplaceAllString(strings.TrimSpace(name), ""))
}

func normalizeKey(s string) string {
	s = quoteNormalizer.Replace(s)
	s = wsDashRunRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
