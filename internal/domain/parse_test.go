package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10", 10},
		{"  42", 42},
		{"-7", -7},
		{"+3", 3},
		{"12.9", 12},
		{"20대", 20},
		{"\uFEFF15", 15},
		{"007", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntPrefix(tt.in))
		})
	}

	for _, bad := range []string{"", "abc", "-", "_", " .5"} {
		t.Run("nan "+bad, func(t *testing.T) {
			assert.True(t, math.IsNaN(ParseIntPrefix(bad)))
		})
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5", 1.5},
		{"30.0mm", 30},
		{"1mm 미만", 1},
		{".5", 0.5},
		{"5.", 5},
		{"-2.25", -2.25},
		{"1e3", 1000},
		{"1e", 1},
		{"  7", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseFloatPrefix(tt.in), 1e-9)
		})
	}

	assert.True(t, math.IsInf(ParseFloatPrefix("Infinity"), 1))
	assert.True(t, math.IsInf(ParseFloatPrefix("-Infinity"), -1))
	for _, bad := range []string{"", "강수없음", "abc", "+", "."} {
		assert.True(t, math.IsNaN(ParseFloatPrefix(bad)), "input %q", bad)
	}
}

func TestParseCount(t *testing.T) {
	v, issue := parseCount("touNum", "1234")
	assert.Equal(t, int64(1234), v)
	assert.Nil(t, issue)

	v, issue = parseCount("touNum", "n/a")
	assert.Equal(t, int64(0), v)
	if assert.NotNil(t, issue) {
		assert.Equal(t, FieldDefaulted, issue.Status)
		assert.Equal(t, "n/a", issue.Raw)
	}

	v, issue = parseCount("touNum", "-5")
	assert.Equal(t, int64(0), v)
	if assert.NotNil(t, issue) {
		assert.Equal(t, "negative count", issue.Reason)
	}
}

func TestClockLabel(t *testing.T) {
	assert.Equal(t, "13:00", clockLabel("1300"))
	assert.Equal(t, "09:30", clockLabel("0930"))
	assert.Equal(t, "9:", clockLabel("9"))
	assert.Equal(t, ":", clockLabel(""))
}
