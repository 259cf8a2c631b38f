// Command seed_rates stores the default exchange rates in the database so the
// db rate source has something to serve.
package main

import (
	"context"
	"time"

	"commission/internal/config"
	"commission/internal/logging"
	"commission/internal/models"
	"commission/internal/repositories"
	"commission/internal/services/currency"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger, err := logging.NewLogger(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := repositories.InitDB(cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repositories.CloseDB(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repositories.NewExchangeRateRepository(repositories.DB)
	for code, rate := range currency.DefaultRates {
		if err := repo.Upsert(ctx, &models.ExchangeRate{Code: code, Rate: rate}); err != nil {
			logger.Fatal("failed to seed rate", zap.String("code", code), zap.Error(err))
		}
		logger.Info("seeded rate", zap.String("code", code), zap.String("rate", rate.String()))
	}
}
