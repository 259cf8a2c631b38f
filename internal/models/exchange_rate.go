package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExchangeRate is the number of Code units bought by one unit of the base
// currency.
type ExchangeRate struct {
	ID        uint            `gorm:"primarykey"`
	Code      string          `gorm:"size:3;uniqueIndex;not null"`
	Rate      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *ExchangeRate) BeforeSave(tx *gorm.DB) error {
	e.Code = strings.ToUpper(e.Code)
	return nil
}
