package fee

import (
	"time"

	"commission/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config holds the allowance settings of an Engine.
type Config struct {
	// FreeCredit is the weekly fee-free withdrawal amount per private client,
	// in BaseCurrency.
	FreeCredit decimal.Decimal
	// FreeWithdraw is the number of withdrawals per week the free credit
	// applies to.
	FreeWithdraw int
	BaseCurrency string
}

// DefaultConfig returns the standard allowance: 1000.00 EUR over three
// withdrawals a week.
func DefaultConfig() Config {
	return Config{
		FreeCredit:   DefaultFreeCredit,
		FreeWithdraw: DefaultFreeWithdraw,
		BaseCurrency: models.BaseCurrency,
	}
}

// RunSummary describes a finished or aborted Run.
type RunSummary struct {
	RunID     uuid.UUID
	Read      int
	Processed int
	Skipped   int
	Duration  time.Duration
}
