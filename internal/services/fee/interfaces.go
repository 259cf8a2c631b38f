package fee

import (
	"context"
	"time"

	"commission/internal/models"

	"github.com/shopspring/decimal"
)

// CurrencyConverter converts amount between two currency codes and rounds the
// result to scale fraction digits.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string, scale int32) (decimal.Decimal, error)
}

// RecordSource yields ledger records in order and io.EOF once exhausted.
type RecordSource interface {
	Next(ctx context.Context) (models.TransactionRecord, error)
}

// ResultSink receives formatted fees in order.
type ResultSink interface {
	Write(ctx context.Context, fee string) error
}

// MetricsCollector defines the interface for collecting engine metrics
type MetricsCollector interface {
	RecordFee(kind string)
	RecordSkipped(reason string)
	RecordConversion(from, to string)
	RecordOverage()
	RecordRunDuration(duration time.Duration)
	RecordError(operation, errType string)
}
