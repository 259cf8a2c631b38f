package currency

import (
	"context"
	"strings"
	"time"

	"commission/internal/logging"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateCache stores rates between runs.
type RateCache interface {
	GetRate(ctx context.Context, code string) (decimal.Decimal, bool, error)
	SetRate(ctx context.Context, code string, rate decimal.Decimal, ttl time.Duration) error
}

// CachedRates serves rates from a RateCache and falls back to the wrapped
// provider on a miss. Cache failures are logged and never fail a lookup.
type CachedRates struct {
	next   RateProvider
	cache  RateCache
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedRates(next RateProvider, cache RateCache, ttl time.Duration, logger *logging.Logger) *CachedRates {
	if next == nil {
		panic("rate provider is required")
	}
	if cache == nil {
		panic("rate cache is required")
	}
	if logger == nil {
		logger = logging.L()
	}
	return &CachedRates{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("rate_cache"),
	}
}

func (c *CachedRates) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(code)

	cached, found, err := c.cache.GetRate(ctx, code)
	if err != nil {
		c.logger.Warn("rate cache read failed", zap.String("code", code), zap.Error(err))
	} else if found {
		return cached, nil
	}

	rate, err := c.next.Rate(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.cache.SetRate(ctx, code, rate, c.ttl); err != nil {
		c.logger.Warn("rate cache write failed", zap.String("code", code), zap.Error(err))
	}
	return rate, nil
}
