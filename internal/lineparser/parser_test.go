package lineparser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInputYieldsOneLine(t *testing.T) {
	assert.Equal(t, []string{""}, Split(""))
	assert.Equal(t, 1, LineCount(""))
	assert.Equal(t, 3, LineCount("a\nb\n"))
}

func TestTokenize_FlexibleDelimiters(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"equals", "0xabc=10", []string{"0xabc", "10"}},
		{"comma", "0xabc,10", []string{"0xabc", "10"}},
		{"space", "0xabc 10", []string{"0xabc", "10"}},
		{"mixed run", "0xabc , = 10", []string{"0xabc", "10"}},
		{"leading delimiters", "  ==0xabc=10", []string{"0xabc", "10"}},
		{"trailing delimiters", "0xabc=10,, ", []string{"0xabc", "10"}},
		{"three tokens", "0xabc=10=20", []string{"0xabc", "10", "20"}},
		{"empty", "", []string{}},
		{"only delimiters", " ,= ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}

func TestTokenize_CarriageReturnStaysInToken(t *testing.T) {
	assert.Equal(t, []string{"0xabc", "10\r"}, Tokenize("0xabc=10\r"))
}

func TestParseLine_Candidate(t *testing.T) {
	line := ParseLine(4, "0xAbC=1.5=extra")

	require.NotNil(t, line.Candidate)
	assert.Equal(t, 4, line.Number)
	assert.Equal(t, "0xAbC", line.Candidate.Address)
	assert.Equal(t, "1.5", line.Candidate.Amount)
	assert.Equal(t, 1, line.ExtraTokens())
	assert.True(t, line.HasCandidate())
}

func TestParseLine_SingleTokenHasNoCandidate(t *testing.T) {
	line := ParseLine(1, "notanaddress")

	assert.Nil(t, line.Candidate)
	assert.False(t, line.HasCandidate())
	assert.Equal(t, []string{"notanaddress"}, line.Tokens)
}

func TestParse_NumbersLinesFromOne(t *testing.T) {
	lines := Parse("a=1\n\nb=2")

	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Equal(t, i+1, line.Number)
	}
	assert.NotNil(t, lines[0].Candidate)
	assert.Nil(t, lines[1].Candidate)
	assert.NotNil(t, lines[2].Candidate)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		token string
		want  float64
		ok    bool
	}{
		{"10", 10, true},
		{"0", 0, true},
		{"1.25", 1.25, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e400", 0, false},
		{".5", 0.5, true},
		{"+2", 2, true},
		{"10\r", 10, true},
		{" 7 ", 7, true},
		{"0x1p3", 0, false},
		{"0x10", 0, false},
		{"Infinity", 0, false},
		{"-Infinity", 0, false},
		{"1_000", 0, false},
		{"1e", 0, false},
		{".", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseAmount(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{15, "15"},
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1.5, "1.5"},
		{0.1 + 0.2, "0.30000000000000004"},
		{-2.25, "-2.25"},
		{123456789012, "123456789012"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.value))
		})
	}
}
