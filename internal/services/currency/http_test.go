package currency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatesServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testHTTPConfig(url string) HTTPConfig {
	cfg := DefaultHTTPConfig(url)
	cfg.RequestsPerSecond = 1000
	return cfg
}

func TestHTTPRates_Rate(t *testing.T) {
	srv, hits := newRatesServer(t, http.StatusOK, `{"base":"EUR","rates":{"USD":1.1497,"jpy":"129.53"}}`)
	rates := NewHTTPRates(testHTTPConfig(srv.URL), srv.Client(), nil)

	usd, err := rates.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "1.1497", usd.String())

	jpy, err := rates.Rate(context.Background(), "JPY")
	require.NoError(t, err)
	assert.Equal(t, "129.53", jpy.String())

	_, err = rates.Rate(context.Background(), "GBP")
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestHTTPRates_RefreshesAfterTTL(t *testing.T) {
	srv, hits := newRatesServer(t, http.StatusOK, `{"base":"EUR","rates":{"USD":1.1497}}`)
	rates := NewHTTPRates(testHTTPConfig(srv.URL), srv.Client(), nil)

	now := time.Date(2016, 1, 5, 12, 0, 0, 0, time.UTC)
	rates.now = func() time.Time { return now }

	_, err := rates.Rate(context.Background(), "USD")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = rates.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	now = now.Add(time.Minute)
	_, err = rates.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestHTTPRates_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"server error", http.StatusBadGateway, `oops`, "unexpected status 502"},
		{"bad json", http.StatusOK, `{"rates":`, "failed to decode rates"},
		{"empty table", http.StatusOK, `{"base":"EUR","rates":{}}`, "empty rate table"},
		{"wrong base", http.StatusOK, `{"base":"USD","rates":{"EUR":0.87}}`, "rates quoted against USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newRatesServer(t, tt.status, tt.body)
			rates := NewHTTPRates(testHTTPConfig(srv.URL), srv.Client(), nil)

			_, err := rates.Rate(context.Background(), "USD")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRatesUnavailable)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestHTTPRates_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv, hits := newRatesServer(t, http.StatusInternalServerError, ``)
	rates := NewHTTPRates(testHTTPConfig(srv.URL), srv.Client(), nil)

	for i := 0; i < 5; i++ {
		_, err := rates.Rate(context.Background(), "USD")
		require.Error(t, err)
	}

	// Three failures trip the breaker; later calls never reach the server.
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}
