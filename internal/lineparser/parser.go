// =============================================================================
// Disperse Validator - Line Parser
// =============================================================================
//
// This module turns raw recipient text into an ordered list of lines, each
// carrying an optional (address, amount) candidate.
//
// LINE FORMAT:
//   One recipient per line. The address and the amount may be separated by
//   any run of spaces, '=' or ',' characters:
//
//     0x5a1f...c3e2=1.5
//     0x5a1f...c3e2, 1.5
//     0x5a1f...c3e2 1.5
//
// PARSING RULES:
//   - The raw text is split on '\n' literally. Carriage returns are NOT
//     stripped here; callers loading files are expected to normalize CRLF.
//   - Empty tokens are discarded.
//   - The first two tokens become the candidate; any further tokens are
//     ignored (they remain visible through Line.Tokens).
//   - A line with fewer than two tokens has no candidate.
//
// =============================================================================

package lineparser

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/disperse-validator/internal/types"
)

// delimiterPattern matches one or more field separators.
var delimiterPattern = regexp.MustCompile(`[ =,]+`)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Split splits raw text into lines on '\n'.
// An empty string yields a single empty line.
func Split(raw string) []string {
	return strings.Split(raw, "\n")
}

// Join is the inverse of Split.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// LineCount returns the number of lines a caller should display for raw.
func LineCount(raw string) int {
	return strings.Count(raw, "\n") + 1
}

// Tokenize splits a single line into its non-empty tokens.
func Tokenize(text string) []string {
	parts := delimiterPattern.Split(text, -1)

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		tokens = append(tokens, part)
	}

	return tokens
}

// ParseLine parses one line of text.
//
// PARAMETERS:
//   - number: The 1-based line number.
//   - text: The literal line content.
//
// RETURNS:
//   - A Line whose Candidate is nil when fewer than two tokens were found.
func ParseLine(number int, text string) types.Line {
	tokens := Tokenize(text)

	line := types.Line{
		Number: number,
		Text:   text,
		Tokens: tokens,
	}

	if len(tokens) >= 2 {
		line.Candidate = &types.Candidate{
			Address: tokens[0],
			Amount:  tokens[1],
		}
	}

	return line
}

// Parse splits raw text into lines and parses each of them.
// The result always has LineCount(raw) entries.
func Parse(raw string) []types.Line {
	texts := Split(raw)

	lines := make([]types.Line, len(texts))
	for i, text := range texts {
		lines[i] = ParseLine(i+1, text)
	}

	return lines
}
