package fee

import "github.com/shopspring/decimal"

// CeilingRound rounds value up to the next unit of the scale-th fraction digit
// and formats it with exactly scale fraction digits.
//
// The value is biased by half a unit and then rounded half-down, so values
// already on the grid are kept: 1.00 stays "1.00", 1.001 becomes "1.01".
func CeilingRound(value decimal.Decimal, scale int32) string {
	biased := value.Add(halfUnit(scale))
	return roundHalfDown(biased, scale).StringFixed(scale)
}

// roundHalfDown rounds d to scale digits, sending exact halves toward zero.
func roundHalfDown(d decimal.Decimal, scale int32) decimal.Decimal {
	truncated := d.Truncate(scale)
	if d.Sub(truncated).Abs().LessThanOrEqual(halfUnit(scale)) {
		return truncated
	}

	unit := decimal.New(1, -scale)
	if d.IsNegative() {
		return truncated.Sub(unit)
	}
	return truncated.Add(unit)
}

func halfUnit(scale int32) decimal.Decimal {
	return decimal.New(5, -(scale + 1))
}
