package repositories

import (
	"context"
	"errors"

	"commission/internal/models"
)

var (
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrInvalidRateData = errors.New("invalid exchange rate data")
)

// ExchangeRateRepository defines the interface for exchange rate storage
type ExchangeRateRepository interface {
	GetByCode(ctx context.Context, code string) (*models.ExchangeRate, error)
	List(ctx context.Context) ([]models.ExchangeRate, error)
	Upsert(ctx context.Context, rate *models.ExchangeRate) error
}
