package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"commission/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type exchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepository{
		db: db,
	}
}

func (r *exchangeRateRepository) GetByCode(ctx context.Context, code string) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return &rate, nil
}

func (r *exchangeRateRepository) List(ctx context.Context) ([]models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	if err := r.db.WithContext(ctx).Order("code").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}

func (r *exchangeRateRepository) Upsert(ctx context.Context, rate *models.ExchangeRate) error {
	if rate == nil || rate.Code == "" || !rate.Rate.IsPositive() {
		return ErrInvalidRateData
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(rate)
	if result.Error != nil {
		return fmt.Errorf("failed to save exchange rate: %w", result.Error)
	}
	return nil
}
