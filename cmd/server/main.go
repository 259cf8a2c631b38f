// Package main is the entry point for the HTTP fee service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commission/internal/bootstrap"
	"commission/internal/config"
	"commission/internal/handlers"
	"commission/internal/logging"
	"commission/internal/metrics"
	"commission/internal/middleware"
	"commission/internal/routes"
	"commission/internal/services/currency"
	"commission/internal/services/fee"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !config.IsProduction(),
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logging.SetGlobal(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rates, err := bootstrap.NewRates(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up rate provider", zap.Error(err))
	}
	defer func() {
		if err := rates.Close(); err != nil {
			logger.Warn("failed to close rate backends", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheusCollector("commission")
	if err := collector.Register(reg); err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	feeHandler := handlers.NewFeeHandler(
		fee.Config{
			FreeCredit:   cfg.FreeCredit,
			FreeWithdraw: cfg.FreeWithdraw,
			BaseCurrency: cfg.BaseCurrency,
		},
		currency.NewConverter(cfg.BaseCurrency, rates.Provider),
		collector,
		logger,
	)

	app := fiber.New(fiber.Config{
		BodyLimit:             16 * 1024 * 1024,
		DisableStartupMessage: config.IsProduction(),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Use("/api/fees", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("FEES_PER_MINUTE", 60),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Fee:      feeHandler,
		Health:   handlers.NewHealthHandler(rates.Checks),
		Gatherer: reg,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("rate_source", cfg.RateSource))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
