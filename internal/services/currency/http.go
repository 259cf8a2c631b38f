package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"commission/internal/logging"
	"commission/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPConfig configures an HTTPRates provider.
type HTTPConfig struct {
	URL string
	// Base is the currency the endpoint must quote against.
	Base              string
	RequestsPerSecond float64
	RequestTimeout    time.Duration
	// TTL is how long a fetched rate table is served before refetching.
	TTL time.Duration
}

// DefaultHTTPConfig returns a configuration polling url at most once a second.
func DefaultHTTPConfig(url string) HTTPConfig {
	return HTTPConfig{
		URL:               url,
		Base:              models.BaseCurrency,
		RequestsPerSecond: 1,
		RequestTimeout:    10 * time.Second,
		TTL:               time.Hour,
	}
}

type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// HTTPRates fetches a rate table from a JSON endpoint shaped like
// {"base": "EUR", "rates": {"USD": 1.1497}} and memoises it for TTL.
type HTTPRates struct {
	config  HTTPConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger

	mu        sync.Mutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
	now       func() time.Time
}

// NewHTTPRates creates an HTTP backed provider.
func NewHTTPRates(config HTTPConfig, client *http.Client, logger *logging.Logger) *HTTPRates {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1
	}
	if config.Base == "" {
		config.Base = models.BaseCurrency
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: config.RequestTimeout}
	}
	if logger == nil {
		logger = logging.L()
	}
	logger = logger.Named("rates")

	return &HTTPRates{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "exchange-rates",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		logger: logger,
		now:    time.Now,
	}
}

func (h *HTTPRates) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rates == nil || h.now().Sub(h.fetchedAt) >= h.config.TTL {
		if err := h.refresh(ctx); err != nil {
			return decimal.Zero, err
		}
	}

	value, ok := h.rates[strings.ToUpper(code)]
	if !ok {
		return decimal.Zero, ErrUnknownCurrency
	}
	return value, nil
}

func (h *HTTPRates) refresh(ctx context.Context) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRatesUnavailable, err)
	}

	result, err := h.breaker.Execute(func() (interface{}, error) {
		return h.fetch(ctx)
	})
	if err != nil {
		h.logger.Error("failed to fetch exchange rates", zap.String("url", h.config.URL), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrRatesUnavailable, err)
	}

	h.rates = result.(map[string]decimal.Decimal)
	h.fetchedAt = h.now()
	h.logger.Info("exchange rates refreshed", zap.Int("currencies", len(h.rates)))
	return nil
}

func (h *HTTPRates) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.config.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	if body.Base != "" && !strings.EqualFold(body.Base, h.config.Base) {
		return nil, fmt.Errorf("rates quoted against %s, want %s", body.Base, h.config.Base)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("empty rate table")
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for code, value := range body.Rates {
		rates[strings.ToUpper(code)] = value
	}
	return rates, nil
}
