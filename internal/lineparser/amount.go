package lineparser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalPattern is the only amount syntax accepted: an optional sign,
// digits with an optional fraction, and an optional exponent. Hex forms,
// underscores, "Inf" and "NaN" never match.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParseAmount parses an amount token as a float64.
//
// Surrounding whitespace (a trailing "\r" from CRLF input included) is
// ignored. The rest must be a plain decimal number; values that overflow to
// an infinity are rejected. Negative values parse successfully; the sign
// check belongs to the validator.
func ParseAmount(token string) (float64, bool) {
	token = strings.TrimSpace(token)
	if !decimalPattern.MatchString(token) {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// FormatAmount renders a number the way a JavaScript number-to-string
// conversion does: the shortest decimal that round-trips, switching to
// exponent notation below 1e-6 and from 1e21 upwards.
func FormatAmount(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	}

	abs := math.Abs(value)
	if abs >= 1e21 || abs < 1e-6 {
		formatted := strconv.FormatFloat(value, 'e', -1, 64)
		mantissa, exponent, _ := strings.Cut(formatted, "e")
		sign, digits := exponent[:1], strings.TrimLeft(exponent[1:], "0")
		return mantissa + "e" + sign + digits
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}
