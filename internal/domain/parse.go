package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// FieldStatus tags how a single field was normalized.
type FieldStatus string

const (
	// FieldDefaulted means the raw value was replaced with a default (0 or "").
	FieldDefaulted FieldStatus = "defaulted"
	// FieldNaN means the raw value did not parse and NaN was propagated.
	FieldNaN FieldStatus = "nan"
	// FieldMalformed means the value was kept but does not match its expected shape.
	FieldMalformed FieldStatus = "malformed"
)

// FieldIssue records a field that did not normalize cleanly.
type FieldIssue struct {
	Field  string      `json:"field"`
	Status FieldStatus `json:"status"`
	Raw    string      `json:"raw"`
	Reason string      `json:"reason"`
}

// floatPrefixRe matches the longest decimal prefix accepted by a lenient
// float parser: optional sign, digits with optional fraction, optional exponent.
var floatPrefixRe = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// trimLeadingSpace strips leading whitespace including the byte order mark.
func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, isSpaceOrBOM)
}

// trimSpace strips surrounding whitespace including the byte order mark.
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpaceOrBOM)
}

func isSpaceOrBOM(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// ParseIntPrefix parses the leading base-10 integer of s, ignoring anything
// after the digits. It returns NaN when s has no leading digits.
func ParseIntPrefix(s string) float64 {
	s = trimLeadingSpace(s)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return math.Trunc(sign * v)
}

// ParseFloatPrefix parses the longest decimal prefix of s. It returns NaN when
// no prefix parses.
func ParseFloatPrefix(s string) float64 {
	m := floatPrefixRe.FindString(trimLeadingSpace(s))
	if m == "" {
		return math.NaN()
	}
	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}

// parseCount parses a visitor count, defaulting anything unusable to 0.
func parseCount(field, raw string) (int64, *FieldIssue) {
	v := ParseIntPrefix(raw)
	switch {
	case math.IsNaN(v):
		return 0, &FieldIssue{Field: field, Status: FieldDefaulted, Raw: raw, Reason: "not an integer"}
	case v < 0:
		return 0, &FieldIssue{Field: field, Status: FieldDefaulted, Raw: raw, Reason: "negative count"}
	case v >= math.MaxInt64:
		return math.MaxInt64, &FieldIssue{Field: field, Status: FieldDefaulted, Raw: raw, Reason: "count overflows"}
	}
	return int64(v), nil
}

// parseRate parses a rate-like field, propagating NaN on failure.
func parseRate(field, raw string) (float64, *FieldIssue) {
	v := ParseFloatPrefix(raw)
	if math.IsNaN(v) {
		return v, &FieldIssue{Field: field, Status: FieldNaN, Raw: raw, Reason: "not a number"}
	}
	return v, nil
}

// orZero mirrors the `parse(x) || 0` idiom: NaN and zero both become 0.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func appendIssue(issues []FieldIssue, issue *FieldIssue) []FieldIssue {
	if issue == nil {
		return issues
	}
	return append(issues, *issue)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// slice returns s[from:to] clamped to the string length.
func slice(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
