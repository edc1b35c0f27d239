// Package arith implements the number drills: counting multiples and
// negatives among a few inputs, and filtering a range by parity and remainder.
package arith

import (
	"math"

	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
	"github.com/labdesk/labdesk-server/internal/numeric"
)

// Task1Divisor is the divisor used by the three-number drill.
const Task1Divisor = 27

// maxExact is the largest magnitude at which stepping by one stays exact.
const maxExact = 1 << 53

// MultiplesResult is the answer to the three-number drill.
type MultiplesResult struct {
	Multiples int
	Negatives int
}

// CountMultiples counts inputs that parse to a number divisible by divisor.
// Empty input parses as zero and therefore counts.
func CountMultiples(values []string, divisor float64) int {
	count := 0
	for _, v := range values {
		n := numeric.Parse(v)
		if math.IsNaN(n) {
			continue
		}
		if math.Mod(n, divisor) == 0 {
			count++
		}
	}
	return count
}

// CountNegatives counts inputs that parse to a negative number.
func CountNegatives(values []string) int {
	count := 0
	for _, v := range values {
		n := numeric.Parse(v)
		if !math.IsNaN(n) && n < 0 {
			count++
		}
	}
	return count
}

// Multiples27 answers the three-number drill.
func Multiples27(first, second, third string) MultiplesResult {
	values := []string{first, second, third}
	return MultiplesResult{
		Multiples: CountMultiples(values, Task1Divisor),
		Negatives: CountNegatives(values),
	}
}

// EvenRemainderTwo lists the numbers in [start, end] that are even and leave
// remainder 2 when divided by 3. The bounds may be given in either order.
// Stepping starts at the lower bound, so a fractional bound walks fractional
// values and matches nothing. Spans wider than maxSpan are rejected.
func EvenRemainderTwo(start, end string, maxSpan float64) ([]float64, error) {
	a := numeric.Parse(start)
	b := numeric.Parse(end)
	if math.IsNaN(a) || math.IsNaN(b) {
		return nil, domainerrors.Validation("please enter valid numbers for the range [a, b]")
	}

	from, to := a, b
	if from > to {
		from, to = to, from
	}
	if math.Abs(from) > maxExact || math.Abs(to) > maxExact {
		return nil, domainerrors.Validation("range bounds are too large")
	}
	if to-from > maxSpan {
		return nil, domainerrors.Validationf("range [a, b] must span at most %g numbers", maxSpan)
	}

	selected := []float64{}
	for current := from; current <= to; current++ {
		if isEven(current) && hasRemainderTwo(current) {
			selected = append(selected, current)
		}
	}
	return selected, nil
}

func isEven(n float64) bool {
	return math.Mod(n, 2) == 0
}

// hasRemainderTwo follows the sign of the dividend, so negatives never match.
func hasRemainderTwo(n float64) bool {
	return math.Mod(n, 3) == 2
}
