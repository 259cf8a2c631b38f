package currency

import (
	"context"
	"strings"

	"commission/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultRates are the fixed EUR rates used when no rate source is configured.
var DefaultRates = map[string]decimal.Decimal{
	models.CurrencyUSD: decimal.RequireFromString("1.1497"),
	models.CurrencyJPY: decimal.RequireFromString("129.53"),
}

// StaticRates serves rates from a fixed table.
type StaticRates map[string]decimal.Decimal

// NewStaticRates copies rates into a StaticRates table with upper-cased codes.
func NewStaticRates(rates map[string]decimal.Decimal) StaticRates {
	out := make(StaticRates, len(rates))
	for code, rate := range rates {
		out[strings.ToUpper(code)] = rate
	}
	return out
}

func (s StaticRates) Rate(_ context.Context, code string) (decimal.Decimal, error) {
	rate, ok := s[strings.ToUpper(code)]
	if !ok {
		return decimal.Zero, ErrUnknownCurrency
	}
	return rate, nil
}
