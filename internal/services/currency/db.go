package currency

import (
	"context"
	"errors"
	"strings"

	"commission/internal/models"
	"commission/internal/repositories"

	"github.com/shopspring/decimal"
)

// RateRepository looks up stored exchange rates.
type RateRepository interface {
	GetByCode(ctx context.Context, code string) (*models.ExchangeRate, error)
}

// DBRates serves rates from the exchange_rates table.
type DBRates struct {
	repo RateRepository
}

func NewDBRates(repo RateRepository) *DBRates {
	if repo == nil {
		panic("repo is required")
	}
	return &DBRates{repo: repo}
}

func (d *DBRates) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	rate, err := d.repo.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, repositories.ErrRateNotFound) {
			return decimal.Zero, ErrUnknownCurrency
		}
		return decimal.Zero, err
	}
	return rate.Rate, nil
}
