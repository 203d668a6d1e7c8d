package forecast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RoundCents rounds half away from zero to two decimal places. Rounding is
// applied to the shortest decimal form of v, so 1.005 becomes 1.01 even
// though its binary value sits just below the midpoint.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	whole, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
	if len(frac) <= 2 {
		return v
	}

	cents, err := strconv.ParseFloat(whole+frac[:2], 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	if frac[2] >= '5' {
		cents++
	}
	if cents == 0 {
		return 0
	}
	return math.Copysign(cents/100, v)
}

// FormatResult renders the user-facing forecast sentence. value is in
// millions of dollars.
func FormatResult(month string, value float64) string {
	return fmt.Sprintf("This film is predicted to gross $%.2f million if released in: %s", RoundCents(value), month)
}
