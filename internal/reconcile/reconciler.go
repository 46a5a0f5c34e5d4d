// =============================================================================
// Disperse Validator - Reconciliation Engine
// =============================================================================
//
// This module rewrites raw recipient text to resolve duplicate recipients.
// Two policies are supported:
//
//   keep-first       Drop every line whose exact address=amount pair was
//                    already seen. Lines without an address/amount pair are
//                    kept untouched.
//
//   combine-balance  Emit one "address=total" line per distinct address (case
//                    insensitive), in order of first occurrence, where total
//                    is the sum of every amount given for that address.
//                    Lines without an address/amount pair are dropped.
//
// The asymmetry in how incomplete lines are treated is intentional product
// behavior and must be preserved.
//
// Rewriting is never the last step: Resolve always re-validates the new text
// so the caller never keeps errors that belong to the old text.
//
// =============================================================================

package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/ginjaninja78/disperse-validator/internal/lineparser"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

// =============================================================================
// POLICIES
// =============================================================================

// Policy names a reconciliation strategy.
type Policy string

const (
	// PolicyNone leaves the text untouched.
	PolicyNone Policy = "none"

	// PolicyKeepFirst drops repeated address=amount lines.
	PolicyKeepFirst Policy = "keep-first"

	// PolicyCombineBalance merges all amounts per address.
	PolicyCombineBalance Policy = "combine-balance"
)

// ParsePolicy normalizes a user-supplied policy name.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "off":
		return PolicyNone, nil
	case "keep-first", "keep_first", "keepfirst", "first":
		return PolicyKeepFirst, nil
	case "combine-balance", "combine_balance", "combinebalance", "combine", "sum":
		return PolicyCombineBalance, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy: %q", value)
	}
}

// Apply rewrites raw according to policy without re-validating.
// Most callers want Resolve instead.
func Apply(raw string, policy Policy) (string, error) {
	return apply(raw, policy, validation.NormalizeAddress)
}

func apply(raw string, policy Policy, normalize func(string) string) (string, error) {
	switch policy {
	case PolicyNone:
		return raw, nil
	case PolicyKeepFirst:
		return KeepFirst(raw), nil
	case PolicyCombineBalance:
		return combineBalance(raw, normalize), nil
	default:
		return "", fmt.Errorf("unknown duplicate policy: %q", policy)
	}
}

// =============================================================================
// KEEP FIRST
// =============================================================================

// KeepFirst removes lines repeating an address=amount pair already seen.
//
// The key is the address exactly as typed plus the raw amount token, so the
// same address with a different amount is NOT considered a repeat.
func KeepFirst(raw string) string {
	lines := lineparser.Parse(raw)

	seen := make(map[string]struct{}, len(lines))
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if !line.HasCandidate() {
			kept = append(kept, line.Text)
			continue
		}

		key := line.Candidate.Address + "=" + line.Candidate.Amount
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line.Text)
	}

	return lineparser.Join(kept)
}

// =============================================================================
// COMBINE BALANCE
// =============================================================================

// balance accumulates the amounts given for one normalized address.
type balance struct {
	address string // casing of the first occurrence
	total   float64
}

// CombineBalance merges every occurrence of an address into one line.
//
// Amounts are summed as float64 in line order. An amount that does not parse
// turns the total into NaN, which the validator then reports as an invalid
// amount on the combined line.
func CombineBalance(raw string) string {
	return combineBalance(raw, validation.NormalizeAddress)
}

// combineBalance groups addresses by normalize, which must be the key the
// re-validating Validator uses for duplicate detection.
func combineBalance(raw string, normalize func(string) string) string {
	lines := lineparser.Parse(raw)

	// Group by normalized address, keeping the order of first occurrence.
	balances := make(map[string]*balance)
	order := []string{}

	for _, line := range lines {
		if !line.HasCandidate() {
			continue
		}

		key := normalize(line.Candidate.Address)
		entry, exists := balances[key]
		if !exists {
			entry = &balance{address: line.Candidate.Address}
			balances[key] = entry
			order = append(order, key)
		}
		entry.total += amountForSum(line.Candidate.Amount)
	}

	combined := make([]string, len(order))
	for i, key := range order {
		entry := balances[key]
		combined[i] = entry.address + "=" + lineparser.FormatAmount(entry.total)
	}

	return lineparser.Join(combined)
}

func amountForSum(token string) float64 {
	value, ok := lineparser.ParseAmount(token)
	if !ok {
		return math.NaN()
	}
	return value
}

// =============================================================================
// RECONCILER
// =============================================================================

// Outcome is the result of resolving duplicates in a piece of text.
type Outcome struct {
	// Policy is the policy that was applied.
	Policy Policy `json:"policy" yaml:"policy"`

	// Text is the rewritten raw text.
	Text string `json:"text" yaml:"text"`

	// Result is the validation result for Text.
	Result validation.Result `json:"result" yaml:"result"`

	// LinesBefore is the number of lines in the original text.
	LinesBefore int `json:"linesBefore" yaml:"lines_before"`

	// LinesAfter is the number of lines in Text.
	LinesAfter int `json:"linesAfter" yaml:"lines_after"`
}

// Removed returns how many lines the policy removed.
func (o Outcome) Removed() int {
	return o.LinesBefore - o.LinesAfter
}

// Reconciler applies a policy and re-validates with a configured validator.
type Reconciler struct {
	validator *validation.Validator
}

// New creates a Reconciler. A nil validator means default options.
func New(validator *validation.Validator) *Reconciler {
	if validator == nil {
		validator = validation.New(validation.DefaultOptions())
	}
	return &Reconciler{validator: validator}
}

// Resolve rewrites raw with policy using default validation options.
func Resolve(raw string, policy Policy) (Outcome, error) {
	return New(nil).Resolve(raw, policy)
}

// Resolve rewrites raw with policy and validates the rewritten text.
//
// RETURNS:
//   - The Outcome, whose Result always describes Outcome.Text.
//   - An error only if the policy is unknown.
func (r *Reconciler) Resolve(raw string, policy Policy) (Outcome, error) {
	text, err := apply(raw, policy, r.validator.Normalizer())
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Policy:      policy,
		Text:        text,
		Result:      r.validator.Validate(text),
		LinesBefore: lineparser.LineCount(raw),
		LinesAfter:  lineparser.LineCount(text),
	}, nil
}
