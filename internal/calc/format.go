package calc

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of decimal places results are rounded to.
const DefaultPrecision = 10

// Round rounds v half away from zero to precision decimal places. Values
// decimal cannot represent exactly, and non-finite values, pass through.
func Round(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e15 {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(int32(precision)).Float64()
	return f
}

// Format renders v rounded to precision decimal places with trailing zeros
// trimmed. Very large and very small magnitudes use exponent notation.
func Format(v float64, precision int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	abs := math.Abs(v)
	if abs >= 1e15 || (abs != 0 && abs < math.Pow(10, -float64(precision))) {
		return strconv.FormatFloat(v, 'g', precision, 64)
	}
	d := decimal.NewFromFloat(v).Round(int32(precision))
	if d.IsZero() {
		return "0"
	}
	return d.String()
}
