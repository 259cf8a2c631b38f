package fee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"commission/internal/logging"
	"commission/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine computes fees for one ordered run of transactions. It is not safe
// for concurrent use.
type Engine struct {
	config    Config
	converter CurrencyConverter
	metrics   MetricsCollector
	logger    *logging.Logger
	ledger    *ledger
	runID     uuid.UUID
}

// NewEngine creates an engine with an empty ledger.
func NewEngine(
	config Config,
	converter CurrencyConverter,
	metrics MetricsCollector,
	logger *logging.Logger,
) *Engine {
	if converter == nil {
		panic("converter is required")
	}

	// A zero FreeCredit or FreeWithdraw is a valid setting, only the
	// currency gets a default.
	if config.BaseCurrency == "" {
		config.BaseCurrency = models.BaseCurrency
	}

	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if logger == nil {
		logger = logging.L()
	}

	runID := uuid.New()
	return &Engine{
		config:    config,
		converter: converter,
		metrics:   metrics,
		logger:    logger.Named("fee").With(zap.String("run_id", runID.String())),
		ledger:    newLedger(config.FreeCredit),
		runID:     runID,
	}
}

// RunID identifies this engine's run in logs.
func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// Client returns a copy of the ledger state of a private client, if any.
func (e *Engine) Client(clientID string) (ClientState, bool) {
	state, ok := e.ledger.lookup(clientID)
	if !ok {
		return ClientState{}, false
	}
	return *state, true
}

// Calculate returns the formatted fee for rec. ok is false when the record
// matches no fee rule; such records leave the engine untouched.
func (e *Engine) Calculate(ctx context.Context, rec models.TransactionRecord) (string, bool, error) {
	switch rec.Operation {
	case models.OperationDeposit:
		// Deposits are charged for every client type, listed or not.
		rate := models.DepositRate
		if structure, ok := models.FeeStructures[rec.ClientType]; ok {
			rate = structure.DepositRate
		}
		e.metrics.RecordFee(KindDeposit)
		return commission(rec.Amount, rate), true, nil

	case models.OperationWithdraw:
		structure, ok := models.FeeStructures[rec.ClientType]
		if !ok {
			e.metrics.RecordSkipped(SkipUnknownClientType)
			return "", false, nil
		}

		if !structure.FreeAllowance {
			e.metrics.RecordFee(KindBusinessWithdraw)
			return commission(rec.Amount, structure.WithdrawRate), true, nil
		}

		fee, err := e.privateWithdraw(ctx, rec, structure.WithdrawRate)
		if err != nil {
			return "", false, err
		}
		e.metrics.RecordFee(KindPrivateWithdraw)
		return fee, true, nil

	case models.OperationUnknown:
	}

	e.metrics.RecordSkipped(SkipUnknownOperation)
	return "", false, nil
}

func (e *Engine) privateWithdraw(ctx context.Context, rec models.TransactionRecord, withdrawRate decimal.Decimal) (string, error) {
	base := e.config.BaseCurrency
	converted := !strings.EqualFold(rec.Currency, base)

	// Convert before touching the ledger so a failed lookup leaves it as is.
	amount := rec.Amount
	if converted {
		var err error
		amount, err = e.convert(ctx, rec.Amount, rec.Currency, base)
		if err != nil {
			return "", err
		}
	}

	state := e.ledger.client(rec.ClientID)
	creditLimit := state.openWindow(rec.Date, e.config.FreeCredit)

	chargeable := amount
	rate := decimal.Zero

	switch {
	case state.WithdrawalsInWeek > e.config.FreeWithdraw:
		// Allowance used up: the whole converted amount is charged.
		rate = withdrawRate
		state.CreditRemaining = state.CreditRemaining.Sub(amount)

	case amount.GreaterThanOrEqual(creditLimit):
		chargeable = amount.Sub(creditLimit)
		if converted {
			var err error
			chargeable, err = e.convert(ctx, chargeable, base, rec.Currency)
			if err != nil {
				return "", err
			}
		}
		rate = withdrawRate
		state.CreditRemaining = decimal.Zero
		e.metrics.RecordOverage()

		e.logger.Debug("free credit exceeded",
			zap.String("client_id", rec.ClientID),
			zap.String("date", rec.Date.String()),
			zap.String("credit_limit", creditLimit.String()),
			zap.String("chargeable", chargeable.String()),
			zap.String("currency", rec.Currency),
		)

	default:
		state.CreditRemaining = state.CreditRemaining.Sub(amount)
	}

	state.touch(rec.Date)
	return commission(chargeable, rate), nil
}

func (e *Engine) convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	out, err := e.converter.Convert(ctx, amount, from, to, models.FeeScale)
	if err != nil {
		e.metrics.RecordError("convert", "conversion_failed")
		return decimal.Zero, fmt.Errorf("%w: %s to %s: %w", ErrConversionFailed, from, to, err)
	}
	e.metrics.RecordConversion(from, to)
	return out, nil
}

// Run folds every record of source into sink in order. It stops at the first
// error; fees already written stay written.
func (e *Engine) Run(ctx context.Context, source RecordSource, sink ResultSink) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{RunID: e.runID}
	defer func() {
		summary.Duration = time.Since(start)
		e.metrics.RecordRunDuration(summary.Duration)
	}()

	e.logger.Info("run started")

	for {
		rec, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.metrics.RecordError("run", "read_failed")
			return summary, fmt.Errorf("%w %d: %w", ErrReadFailed, summary.Read+1, err)
		}
		summary.Read++

		fee, ok, err := e.Calculate(ctx, rec)
		if err != nil {
			e.logger.Error("fee calculation failed",
				zap.Int("record", summary.Read),
				zap.String("client_id", rec.ClientID),
				zap.Error(err),
			)
			return summary, fmt.Errorf("record %d: %w", summary.Read, err)
		}
		if !ok {
			summary.Skipped++
			continue
		}

		if err := sink.Write(ctx, fee); err != nil {
			e.metrics.RecordError("run", "write_failed")
			return summary, fmt.Errorf("%w for record %d: %w", ErrWriteFailed, summary.Read, err)
		}
		summary.Processed++
	}

	e.logger.Info("run finished",
		zap.Int("read", summary.Read),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// commission applies a percent rate to amount and rounds the result.
func commission(amount, rate decimal.Decimal) string {
	return CeilingRound(amount.Mul(rate).Mul(percent), models.FeeScale)
}
