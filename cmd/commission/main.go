// Command commission reads a CSV ledger and prints one fee per line.
//
// Usage:
//
//	commission [input.csv]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"commission/internal/bootstrap"
	"commission/internal/config"
	"commission/internal/logging"
	"commission/internal/records"
	"commission/internal/services/currency"
	"commission/internal/services/fee"

	"go.uber.org/zap"
)

const defaultInput = "input.csv"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "commission:", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv()
	cfg := config.Load()

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	logging.SetGlobal(logger)

	path := defaultInput
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	rates, err := bootstrap.NewRates(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rates.Close(); err != nil {
			logger.Warn("failed to close rate backends", zap.Error(err))
		}
	}()

	engine := fee.NewEngine(
		fee.Config{
			FreeCredit:   cfg.FreeCredit,
			FreeWithdraw: cfg.FreeWithdraw,
			BaseCurrency: cfg.BaseCurrency,
		},
		currency.NewConverter(cfg.BaseCurrency, rates.Provider),
		nil,
		logger,
	)

	sink := records.NewLineSink(os.Stdout)
	_, runErr := engine.Run(ctx, records.NewCSVSource(file), sink)

	// Fees computed before a failure are still printed.
	if err := sink.Flush(); err != nil {
		return err
	}
	return runErr
}
