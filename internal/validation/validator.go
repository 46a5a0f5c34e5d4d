// =============================================================================
// Disperse Validator - Validation Engine
// =============================================================================
//
// This module validates raw recipient text line by line. It reports:
//   - Address length problems (an address must be exactly 42 characters)
//   - Address format problems (an address must start with "0x")
//   - Invalid amounts (not a number, or negative)
//   - Lines where the address and/or the amount is missing
//   - Duplicate recipients (case-insensitive by default)
//
// ERROR HANDLING:
//   - Errors are collected, never thrown
//   - Validation never stops early; every line is checked
//   - Duplicates are reported separately from per-line errors, so a line can
//     carry a format error AND belong to a duplicate group
//
// Every call starts from an empty seen-set. The Validator holds only its
// options, so one instance may be shared between goroutines.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/disperse-validator/internal/lineparser"
	"github.com/ginjaninja78/disperse-validator/internal/types"
)

const (
	// AddressLength is the required length of an address token, prefix included.
	AddressLength = 42

	// AddressPrefix is the required prefix of an address token.
	AddressPrefix = "0x"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	AddressLengthInvalid ErrorKind = "address_length_invalid"
	AddressFormatInvalid ErrorKind = "address_format_invalid"
	AmountInvalid        ErrorKind = "amount_invalid"
	MissingFields        ErrorKind = "missing_fields"

	// ExtraFields is only reported when Options.ReportExtraFields is set.
	ExtraFields ErrorKind = "extra_fields"
)

// ValidationError is a single advisory diagnostic attached to a line.
type ValidationError struct {
	// Line is the 1-based line number.
	Line int `json:"line" yaml:"line" xml:"line,attr"`

	// Kind identifies which check failed.
	Kind ErrorKind `json:"kind" yaml:"kind" xml:"kind,attr"`

	// Message is the human-readable text shown to the user.
	Message string `json:"message" yaml:"message" xml:",chardata"`
}

// Error implements the error interface so a diagnostic can be logged or
// wrapped like any other error.
func (e ValidationError) Error() string {
	return e.Message
}

// DuplicateGroup lists every line sharing one (normalized) address.
type DuplicateGroup struct {
	// Address is the normalized key: lower-cased unless duplicates are
	// compared case-sensitively.
	Address string `json:"address" yaml:"address" xml:"address,attr"`

	// Lines holds the 1-based line numbers in ascending order. The first
	// element is the first occurrence. It always has at least two entries.
	Lines []int `json:"lines" yaml:"lines" xml:"line"`
}

// Message returns the text shown to the user for this group.
func (g DuplicateGroup) Message() string {
	numbers := make([]string, len(g.Lines))
	for i, n := range g.Lines {
		numbers[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("Duplicate addresses %s found in line %s", g.Address, strings.Join(numbers, ", "))
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the immutable outcome of one validation pass.
type Result struct {
	// Errors holds the per-line diagnostics in line order, then check order.
	Errors []ValidationError `json:"errors" yaml:"errors"`

	// Duplicates holds the duplicate groups in the order they were detected.
	Duplicates []DuplicateGroup `json:"duplicates" yaml:"duplicates"`

	// LineCount is the number of lines in the validated text.
	LineCount int `json:"lineCount" yaml:"line_count"`
}

// Valid reports whether the text has neither errors nor duplicates.
func (r Result) Valid() bool {
	return len(r.Errors) == 0 && len(r.Duplicates) == 0
}

// HasDuplicates reports whether at least one duplicate group was found.
func (r Result) HasDuplicates() bool {
	return len(r.Duplicates) > 0
}

// Group returns the duplicate group for a normalized address.
func (r Result) Group(address string) (DuplicateGroup, bool) {
	for _, group := range r.Duplicates {
		if group.Address == address {
			return group, true
		}
	}
	return DuplicateGroup{}, false
}

// Messages returns every message in display order: line errors first, then
// one message per duplicate group.
func (r Result) Messages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Duplicates))
	for _, err := range r.Errors {
		messages = append(messages, err.Message)
	}
	for _, group := range r.Duplicates {
		messages = append(messages, group.Message())
	}
	return messages
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// CaseSensitiveDuplicates compares addresses exactly as typed.
	// Default: false (addresses are lower-cased before comparison)
	CaseSensitiveDuplicates bool

	// ReportExtraFields adds an ExtraFields error for lines with more than two
	// tokens. By default the extra tokens are silently ignored.
	// Default: false
	ReportExtraFields bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{}
}

// Validator validates raw recipient text.
type Validator struct {
	options Options
}

// New creates a Validator with the given options.
func New(options Options) *Validator {
	return &Validator{options: options}
}

// Validate validates raw text with the default options.
func Validate(raw string) Result {
	return New(DefaultOptions()).Validate(raw)
}

// Validate runs every check over every line of raw.
//
// PARAMETERS:
//   - raw: The full user input; any string is accepted.
//
// RETURNS:
//   - A Result with the (possibly empty) error list and duplicate groups.
func (v *Validator) Validate(raw string) Result {
	lines := lineparser.Parse(raw)

	result := Result{
		Errors:     make([]ValidationError, 0),
		Duplicates: make([]DuplicateGroup, 0),
		LineCount:  len(lines),
	}

	tracker := newDuplicateTracker(v.Normalizer())

	for _, line := range lines {
		if !line.HasCandidate() {
			result.Errors = append(result.Errors, newError(line.Number, MissingFields))
			continue
		}

		result.Errors = append(result.Errors, v.ValidateLine(line)...)
		tracker.observe(line.Candidate.Address, line.Number)
	}

	result.Duplicates = tracker.groups()

	return result
}

// ValidateLine runs the address and amount checks on a line that has a
// candidate. Lines without a candidate yield a single MissingFields error.
func (v *Validator) ValidateLine(line types.Line) []ValidationError {
	if !line.HasCandidate() {
		return []ValidationError{newError(line.Number, MissingFields)}
	}

	var errors []ValidationError

	address := line.Candidate.Address
	if !hasAddressLength(address) {
		errors = append(errors, newError(line.Number, AddressLengthInvalid))
	}
	if !hasAddressPrefix(address) {
		errors = append(errors, newError(line.Number, AddressFormatInvalid))
	}
	if !IsValidAmount(line.Candidate.Amount) {
		errors = append(errors, newError(line.Number, AmountInvalid))
	}
	if v.options.ReportExtraFields && line.ExtraTokens() > 0 {
		errors = append(errors, newError(line.Number, ExtraFields))
	}

	return errors
}

// Normalizer returns the function used to build duplicate keys. Anything
// that merges duplicates must use it so that merging and detection agree.
// A fresh Caser is created per call because cases.Caser is stateful.
func (v *Validator) Normalizer() func(string) string {
	if v.options.CaseSensitiveDuplicates {
		return func(s string) string { return s }
	}
	caser := cases.Lower(language.Und)
	return caser.String
}

// =============================================================================
// FIELD CHECKS
// =============================================================================

// hasAddressLength counts bytes, not characters: a non-ASCII character
// counts more than once, so a 42-character address holding one fails.
func hasAddressLength(address string) bool {
	return len(address) == AddressLength
}

func hasAddressPrefix(address string) bool {
	return strings.HasPrefix(address, AddressPrefix)
}

// IsValidAmount reports whether an amount token parses to a number >= 0.
func IsValidAmount(amount string) bool {
	value, ok := lineparser.ParseAmount(amount)
	return ok && value >= 0
}

// NormalizeAddress returns the default duplicate key for an address.
func NormalizeAddress(address string) string {
	return cases.Lower(language.Und).String(address)
}

// =============================================================================
// DUPLICATE TRACKING
// =============================================================================

// duplicateTracker records first occurrences and builds groups as soon as an
// address is seen a second time.
type duplicateTracker struct {
	normalize func(string) string
	firstSeen map[string]int
	index     map[string]int
	found     []DuplicateGroup
}

func newDuplicateTracker(normalize func(string) string) *duplicateTracker {
	return &duplicateTracker{
		normalize: normalize,
		firstSeen: make(map[string]int),
		index:     make(map[string]int),
	}
}

func (t *duplicateTracker) observe(address string, lineNumber int) {
	key := t.normalize(address)

	first, seen := t.firstSeen[key]
	if !seen {
		t.firstSeen[key] = lineNumber
		return
	}

	pos, grouped := t.index[key]
	if !grouped {
		t.found = append(t.found, DuplicateGroup{Address: key, Lines: []int{first}})
		pos = len(t.found) - 1
		t.index[key] = pos
	}
	t.found[pos].Lines = append(t.found[pos].Lines, lineNumber)
}

func (t *duplicateTracker) groups() []DuplicateGroup {
	if t.found == nil {
		return make([]DuplicateGroup, 0)
	}
	return t.found
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// newError builds a ValidationError with the standard message for kind.
func newError(lineNumber int, kind ErrorKind) ValidationError {
	return ValidationError{
		Line:    lineNumber,
		Kind:    kind,
		Message: fmt.Sprintf("Line %d: %s", lineNumber, kindMessage(kind)),
	}
}

func kindMessage(kind ErrorKind) string {
	switch kind {
	case AddressLengthInvalid:
		return fmt.Sprintf("Ethereum address is not %d characters long.", AddressLength)
	case AddressFormatInvalid:
		return "Invalid Ethereum address format."
	case AmountInvalid:
		return "Invalid amount. Please enter a valid amount."
	case MissingFields:
		return "Ethereum address and amount must be specified."
	case ExtraFields:
		return "Only an address and an amount are allowed; extra values were ignored."
	default:
		return string(kind)
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats a validation result for display or logging.
func FormatErrors(result Result) string {
	if result.Valid() {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s) and %d duplicate address(es):\n\n",
		len(result.Errors), len(result.Duplicates)))

	for i, message := range result.Messages() {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, message))
	}

	return builder.String()
}
