// =============================================================================
// Disperse Validator - Shared Types
// =============================================================================
//
// This package contains the line-level types shared by the parser, the
// validator and the reconciler. Keeping them here avoids import cycles:
//   - lineparser produces them
//   - validation reads them
//   - reconcile reads them and rewrites raw text
//
// =============================================================================

package types

// =============================================================================
// LINE TYPES
// =============================================================================

// Candidate is the (address, amount) pair extracted from a single line.
// A line without at least two tokens has no candidate.
type Candidate struct {
	// Address is the first token of the line, in its original casing.
	Address string

	// Amount is the second token of the line, exactly as typed.
	Amount string
}

// Line is one unit of the raw input text.
type Line struct {
	// Number is the 1-based position of the line in the raw text.
	Number int

	// Text is the literal line content, without the trailing '\n'.
	Text string

	// Tokens contains every non-empty token found on the line.
	// Only the first two become the Candidate; the rest are kept so that
	// callers can see what was truncated.
	Tokens []string

	// Candidate is nil when fewer than two tokens were found.
	Candidate *Candidate
}

// HasCandidate reports whether the line produced an (address, amount) pair.
func (l Line) HasCandidate() bool {
	return l.Candidate != nil
}

// ExtraTokens returns the number of tokens ignored after the first two.
func (l Line) ExtraTokens() int {
	if len(l.Tokens) <= 2 {
		return 0
	}
	return len(l.Tokens) - 2
}
