package currency

import (
	"context"
	"fmt"
	"strings"

	"commission/internal/models"

	"github.com/shopspring/decimal"
)

// RateProvider returns how many units of code one unit of the base currency
// buys.
type RateProvider interface {
	Rate(ctx context.Context, code string) (decimal.Decimal, error)
}

// Converter converts amounts through the base currency using a RateProvider.
type Converter struct {
	base     string
	provider RateProvider
}

// NewConverter creates a converter quoting rates against base.
func NewConverter(base string, provider RateProvider) *Converter {
	if provider == nil {
		panic("rate provider is required")
	}
	if base == "" {
		base = models.BaseCurrency
	}
	return &Converter{
		base:     strings.ToUpper(base),
		provider: provider,
	}
}

// Convert converts amount from one currency to another and rounds the result
// half away from zero to scale fraction digits.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, scale int32) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount.Round(scale), nil
	}

	fromRate, err := c.rate(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := c.rate(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Div(fromRate).Mul(toRate).Round(scale), nil
}

func (c *Converter) rate(ctx context.Context, code string) (decimal.Decimal, error) {
	if code == c.base {
		return decimal.NewFromInt(1), nil
	}

	rate, err := c.provider.Rate(ctx, code)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get %s rate: %w", code, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s=%s", ErrInvalidRate, code, rate)
	}
	return rate, nil
}
