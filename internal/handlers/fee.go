package handlers

import (
	"bytes"
	"errors"

	"commission/internal/logging"
	"commission/internal/records"
	"commission/internal/services/currency"
	"commission/internal/services/fee"
	"commission/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FeeHandler struct {
	config    fee.Config
	converter fee.CurrencyConverter
	metrics   fee.MetricsCollector
	logger    *logging.Logger
}

func NewFeeHandler(
	config fee.Config,
	converter fee.CurrencyConverter,
	metrics fee.MetricsCollector,
	logger *logging.Logger,
) *FeeHandler {
	if converter == nil {
		panic("converter is required")
	}
	if logger == nil {
		logger = logging.L()
	}
	return &FeeHandler{
		config:    config,
		converter: converter,
		metrics:   metrics,
		logger:    logger.Named("fee_handler"),
	}
}

// CalculateFees runs a CSV ledger posted as the request body through a fresh
// engine. Each request is its own run with its own weekly ledger.
func (h *FeeHandler) CalculateFees(c *fiber.Ctx) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return response.BadRequest(c, "request body must be a CSV ledger")
	}

	engine := fee.NewEngine(h.config, h.converter, h.metrics, h.logger)
	sink := &records.SliceSink{}

	summary, err := engine.Run(c.UserContext(), records.NewCSVSource(bytes.NewReader(body)), sink)
	if err != nil {
		h.logger.Warn("fee run failed",
			zap.String("run_id", engine.RunID().String()),
			zap.Error(err),
		)
		return feeError(c, err)
	}

	fees := sink.Fees
	if fees == nil {
		fees = []string{}
	}

	return c.JSON(fiber.Map{
		"run_id":  summary.RunID.String(),
		"fees":    fees,
		"skipped": summary.Skipped,
	})
}

func feeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, records.ErrMalformedRecord):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, currency.ErrRatesUnavailable):
		return response.ServiceUnavailable(c, "exchange rates unavailable")
	case errors.Is(err, currency.ErrUnknownCurrency), errors.Is(err, currency.ErrInvalidRate):
		return response.UnprocessableEntity(c, err.Error())
	default:
		return response.ServerError(c, "failed to calculate fees")
	}
}
