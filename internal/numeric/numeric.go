// Package numeric converts loosely typed input into numbers using the same
// rules a browser applies for Number(value). Form fields and remote JSON
// documents both feed through here, so "42", " 4.2e1 " and 42 all agree.
package numeric

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Parse converts text to a number. Unparseable text yields NaN.
//
// Rules:
//   - leading/trailing whitespace is ignored
//   - empty (or all-whitespace) text is 0
//   - decimal literals with optional sign and exponent, including ".5" and "5."
//   - "Infinity" with optional sign
//   - unsigned 0x/0o/0b integer literals
func Parse(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		if base := radix(s[1]); base != 0 {
			return parseRadix(s[2:], base)
		}
	}

	if !isDecimalLiteral(s) {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range literals still carry the right sign.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// FromJSON converts a raw JSON value to a number.
// Numbers pass through, strings go through Parse, true is 1, false and null
// are 0, and arrays or objects are NaN. Missing values are NaN.
func FromJSON(raw json.RawMessage) float64 {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return math.NaN()
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return math.NaN()
		}
		return Parse(s)
	case 't':
		return 1
	case 'f', 'n':
		return 0
	case '[', '{':
		return math.NaN()
	}

	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func radix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	default:
		return 0
	}
}

func parseRadix(digits string, base int) float64 {
	if digits == "" {
		return math.NaN()
	}
	n, err := strconv.ParseUint(digits, base, 64)
	if err == nil {
		return float64(n)
	}
	if !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}

	// Past uint64 the value is still finite for Number(); round it once.
	wide, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(wide).Float64()
	return f
}

// isDecimalLiteral rejects forms strconv accepts but Number does not,
// such as "inf", "nan", hex floats and underscores.
func isDecimalLiteral(s string) bool {
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
