// Package bootstrap assembles the rate provider stack from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"commission/internal/config"
	"commission/internal/logging"
	"commission/internal/repositories"
	"commission/internal/repositories/cache"
	"commission/internal/services/currency"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker is anything the health endpoint can probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Rates is a configured rate provider plus the connections backing it.
type Rates struct {
	Provider currency.RateProvider
	Checks   map[string]HealthChecker

	redis *redis.Client
	db    bool
}

// NewRates builds the provider chosen by cfg.RateSource and, when redis is
// configured, wraps it with a redis cache.
func NewRates(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Rates, error) {
	r := &Rates{Checks: make(map[string]HealthChecker)}

	switch cfg.RateSource {
	case config.RateSourceStatic, "":
		r.Provider = currency.NewStaticRates(currency.DefaultRates)

	case config.RateSourceHTTP:
		if cfg.RatesURL == "" {
			return nil, errors.New("RATES_URL is required for the http rate source")
		}
		httpConfig := currency.DefaultHTTPConfig(cfg.RatesURL)
		httpConfig.Base = cfg.BaseCurrency
		httpConfig.RequestsPerSecond = cfg.RatesPerSecond
		httpConfig.TTL = cfg.RatesTTL
		r.Provider = currency.NewHTTPRates(httpConfig, nil, logger)

	case config.RateSourceDB:
		if err := repositories.InitDB(cfg.Database); err != nil {
			return nil, err
		}
		r.db = true
		r.Provider = currency.NewDBRates(repositories.NewExchangeRateRepository(repositories.DB))
		r.Checks["database"] = dbCheck{}

	default:
		return nil, fmt.Errorf("unknown rate source %q", cfg.RateSource)
	}

	if cfg.Redis.Enabled() {
		r.redis = cache.NewRedisClient(&cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rateCache := cache.NewRedisRateCache(r.redis)
		if err := rateCache.HealthCheck(ctx); err != nil {
			// The cache is optional; lookups fall through to the provider.
			logger.Warn("redis unavailable, continuing", zap.Error(err))
		}
		r.Provider = currency.NewCachedRates(r.Provider, rateCache, cfg.RatesTTL, logger)
		r.Checks["redis"] = rateCache
	}

	logger.Info("rate provider ready",
		zap.String("source", cfg.RateSource),
		zap.Bool("redis", cfg.Redis.Enabled()),
	)
	return r, nil
}

// Close releases the redis and database connections, if any were opened.
func (r *Rates) Close() error {
	var errs []error
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	if r.db {
		errs = append(errs, repositories.CloseDB())
	}
	return errors.Join(errs...)
}

type dbCheck struct{}

func (dbCheck) HealthCheck(ctx context.Context) error {
	if repositories.DB == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := repositories.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
