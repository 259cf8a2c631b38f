package fee

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"commission/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, scale int32) (decimal.Decimal, error) {
	args := m.Called(amount.String(), from, to, scale)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordFee(kind string) {
	m.Called(kind)
}

func (m *MockMetrics) RecordSkipped(reason string) {
	m.Called(reason)
}

func (m *MockMetrics) RecordConversion(from, to string) {
	m.Called(from, to)
}

func (m *MockMetrics) RecordOverage() {
	m.Called()
}

func (m *MockMetrics) RecordRunDuration(duration time.Duration) {
	m.Called(duration)
}

func (m *MockMetrics) RecordError(operation, errType string) {
	m.Called(operation, errType)
}

// rateConverter quotes every currency per one EUR.
type rateConverter map[string]decimal.Decimal

func (r rateConverter) Convert(_ context.Context, amount decimal.Decimal, from, to string, scale int32) (decimal.Decimal, error) {
	fromRate, ok := r[from]
	if !ok {
		return decimal.Zero, errors.New("unknown currency " + from)
	}
	toRate, ok := r[to]
	if !ok {
		return decimal.Zero, errors.New("unknown currency " + to)
	}
	return amount.Div(fromRate).Mul(toRate).Round(scale), nil
}

var testRates = rateConverter{
	"EUR": decimal.NewFromInt(1),
	"USD": decimal.RequireFromString("1.1497"),
	"JPY": decimal.RequireFromString("129.53"),
}

type sliceSource struct {
	records []models.TransactionRecord
	err     error
}

func (s *sliceSource) Next(context.Context) (models.TransactionRecord, error) {
	if len(s.records) == 0 {
		if s.err != nil {
			return models.TransactionRecord{}, s.err
		}
		return models.TransactionRecord{}, io.EOF
	}
	rec := s.records[0]
	s.records = s.records[1:]
	return rec, nil
}

type sliceSink struct {
	fees []string
}

func (s *sliceSink) Write(_ context.Context, fee string) error {
	s.fees = append(s.fees, fee)
	return nil
}

func record(day, clientID, clientType, operation, amount, currency string) models.TransactionRecord {
	return models.TransactionRecord{
		Date:       date(day),
		ClientID:   clientID,
		ClientType: models.ParseClientType(clientType),
		Operation:  models.ParseOperationType(operation),
		Amount:     decimal.RequireFromString(amount),
		Currency:   currency,
	}
}

func newTestEngine(converter CurrencyConverter) *Engine {
	return NewEngine(DefaultConfig(), converter, nil, nil)
}

func TestEngine_Run_SampleLedger(t *testing.T) {
	source := &sliceSource{records: []models.TransactionRecord{
		record("2014-12-31", "4", "private", "withdraw", "1200.00", "EUR"),
		record("2015-01-01", "4", "private", "withdraw", "1000.00", "EUR"),
		record("2016-01-05", "4", "private", "withdraw", "1000.00", "EUR"),
		record("2016-01-05", "1", "private", "deposit", "200.00", "EUR"),
		record("2016-01-06", "2", "business", "withdraw", "300.00", "EUR"),
		record("2016-01-06", "1", "private", "withdraw", "30000", "JPY"),
		record("2016-01-07", "1", "private", "withdraw", "1000.00", "EUR"),
		record("2016-01-07", "1", "private", "withdraw", "100.00", "USD"),
		record("2016-01-10", "1", "private", "withdraw", "100.00", "EUR"),
		record("2016-01-10", "2", "business", "deposit", "10000.00", "EUR"),
		record("2016-01-10", "3", "private", "withdraw", "1000.00", "EUR"),
		record("2016-02-15", "1", "private", "withdraw", "300.00", "EUR"),
		record("2016-02-19", "5", "private", "withdraw", "3000000", "JPY"),
	}}
	sink := &sliceSink{}

	engine := newTestEngine(testRates)
	summary, err := engine.Run(context.Background(), source, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0.60", "3.00", "0.00", "0.06", "1.50", "0.00", "0.70",
		"0.30", "0.30", "3.00", "0.00", "0.00", "8611.42",
	}, sink.fees)
	assert.Equal(t, 13, summary.Read)
	assert.Equal(t, 13, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, engine.RunID(), summary.RunID)
}

func TestEngine_Calculate_Deposit(t *testing.T) {
	tests := []struct {
		name       string
		clientType string
		amount     string
		want       string
	}{
		{"private", "private", "200.00", "0.06"},
		{"business", "business", "10000.00", "3.00"},
		{"unknown client type", "government", "1000.00", "0.30"},
		{"rounds up", "private", "1.00", "0.01"},
		{"zero", "private", "0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converter := new(MockConverter)
			engine := newTestEngine(converter)

			fee, ok, err := engine.Calculate(context.Background(),
				record("2016-01-05", "1", tt.clientType, "deposit", tt.amount, "USD"))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, fee)

			_, tracked := engine.Client("1")
			assert.False(t, tracked)
			converter.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestEngine_Calculate_BusinessWithdraw(t *testing.T) {
	converter := new(MockConverter)
	engine := newTestEngine(converter)

	for _, amount := range []string{"300.00", "300.00", "300.00", "300.00"} {
		fee, ok, err := engine.Calculate(context.Background(),
			record("2016-01-06", "2", "business", "withdraw", amount, "JPY"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1.50", fee)
	}

	_, tracked := engine.Client("2")
	assert.False(t, tracked)
	converter.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Calculate_PrivateAllowance(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(testRates)

	fee, ok, err := engine.Calculate(ctx, record("2016-01-04", "1", "private", "withdraw", "500.00", "EUR"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0.00", fee)

	state, tracked := engine.Client("1")
	require.True(t, tracked)
	assert.Equal(t, "500", state.CreditRemaining.String())
	assert.Equal(t, 1, state.WithdrawalsInWeek)

	fee, _, err = engine.Calculate(ctx, record("2016-01-06", "1", "private", "withdraw", "700.00", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "0.60", fee)

	state, _ = engine.Client("1")
	assert.True(t, state.CreditRemaining.IsZero())
	assert.Equal(t, 2, state.WithdrawalsInWeek)
	assert.Equal(t, date("2016-01-06"), state.LastTransactionDate)

	// Next Monday opens a fresh allowance.
	fee, _, err = engine.Calculate(ctx, record("2016-01-11", "1", "private", "withdraw", "999.99", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", fee)

	state, _ = engine.Client("1")
	assert.Equal(t, "0.01", state.CreditRemaining.String())
	assert.Equal(t, 1, state.WithdrawalsInWeek)
}

func TestEngine_Calculate_FourthWithdrawalIsCharged(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(testRates)

	for _, day := range []string{"2016-01-04", "2016-01-05", "2016-01-06"} {
		fee, _, err := engine.Calculate(ctx, record(day, "1", "private", "withdraw", "100.00", "EUR"))
		require.NoError(t, err)
		assert.Equal(t, "0.00", fee)
	}

	fee, _, err := engine.Calculate(ctx, record("2016-01-10", "1", "private", "withdraw", "100.00", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "0.30", fee)

	state, _ := engine.Client("1")
	assert.Equal(t, 4, state.WithdrawalsInWeek)
	assert.Equal(t, "600", state.CreditRemaining.String())
}

func TestEngine_Calculate_FourthWithdrawalChargesConvertedAmount(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(testRates)

	for i := 0; i < 3; i++ {
		_, _, err := engine.Calculate(ctx, record("2016-01-04", "1", "private", "withdraw", "10.00", "EUR"))
		require.NoError(t, err)
	}

	// 100000 JPY is 772.02 EUR, charged at 0.3% = 2.31606
	fee, _, err := engine.Calculate(ctx, record("2016-01-05", "1", "private", "withdraw", "100000", "JPY"))
	require.NoError(t, err)
	assert.Equal(t, "2.32", fee)

	state, _ := engine.Client("1")
	assert.Equal(t, "197.98", state.CreditRemaining.String())
}

func TestEngine_Calculate_ConvertsOverageBack(t *testing.T) {
	converter := new(MockConverter)
	converter.On("Convert", "5000", "USD", "EUR", int32(2)).Return(decimal.RequireFromString("4348.96"), nil).Once()
	converter.On("Convert", "3348.96", "EUR", "USD", int32(2)).Return(decimal.RequireFromString("3850.30"), nil).Once()

	engine := newTestEngine(converter)
	fee, ok, err := engine.Calculate(context.Background(),
		record("2016-01-05", "9", "private", "withdraw", "5000", "USD"))

	require.NoError(t, err)
	assert.True(t, ok)
	// 3850.30 * 0.3% = 11.5509
	assert.Equal(t, "11.56", fee)
	converter.AssertExpectations(t)
}

func TestEngine_Calculate_ConversionFailure(t *testing.T) {
	converter := new(MockConverter)
	converter.On("Convert", "100", "XYZ", "EUR", int32(2)).Return(decimal.Zero, errors.New("no rate"))

	metrics := new(MockMetrics)
	metrics.On("RecordError", "convert", "conversion_failed").Return()

	engine := NewEngine(DefaultConfig(), converter, metrics, nil)
	_, ok, err := engine.Calculate(context.Background(),
		record("2016-01-05", "9", "private", "withdraw", "100", "XYZ"))

	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.Contains(t, err.Error(), "no rate")

	_, tracked := engine.Client("9")
	assert.False(t, tracked)
	metrics.AssertExpectations(t)
}

func TestEngine_Calculate_RatesComeFromFeeStructures(t *testing.T) {
	saved := models.FeeStructures
	t.Cleanup(func() { models.FeeStructures = saved })

	models.FeeStructures = map[models.ClientType]models.FeeStructure{
		models.ClientTypePrivate: {
			DepositRate:  decimal.RequireFromString("0.1"),
			WithdrawRate: decimal.RequireFromString("1"),
		},
		models.ClientTypeBusiness: {
			DepositRate:   decimal.RequireFromString("0.2"),
			WithdrawRate:  decimal.RequireFromString("2"),
			FreeAllowance: true,
		},
	}

	ctx := context.Background()
	engine := newTestEngine(testRates)

	tests := []struct {
		name string
		rec  models.TransactionRecord
		want string
	}{
		{"private deposit", record("2016-01-05", "1", "private", "deposit", "100", "EUR"), "0.10"},
		{"unlisted deposit falls back", record("2016-01-05", "3", "government", "deposit", "1000", "EUR"), "0.30"},
		{"private without allowance", record("2016-01-05", "1", "private", "withdraw", "100", "EUR"), "1.00"},
		{"business inside allowance", record("2016-01-05", "2", "business", "withdraw", "100", "EUR"), "0.00"},
		{"business over allowance", record("2016-01-06", "2", "business", "withdraw", "1000", "EUR"), "2.00"},
	}

	for _, tt := range tests {
		fee, ok, err := engine.Calculate(ctx, tt.rec)
		require.NoError(t, err, tt.name)
		assert.True(t, ok, tt.name)
		assert.Equal(t, tt.want, fee, tt.name)
	}

	_, tracked := engine.Client("1")
	assert.False(t, tracked)
	_, tracked = engine.Client("2")
	assert.True(t, tracked)
}

func TestEngine_Calculate_SkipsUnmatchedRecords(t *testing.T) {
	tests := []struct {
		name   string
		rec    models.TransactionRecord
		reason string
	}{
		{
			name:   "unknown operation",
			rec:    record("2016-01-05", "1", "private", "transfer", "100", "EUR"),
			reason: SkipUnknownOperation,
		},
		{
			name:   "withdraw with unknown client type",
			rec:    record("2016-01-05", "1", "government", "withdraw", "100", "EUR"),
			reason: SkipUnknownClientType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := new(MockMetrics)
			metrics.On("RecordSkipped", tt.reason).Return().Once()

			engine := NewEngine(DefaultConfig(), testRates, metrics, nil)
			fee, ok, err := engine.Calculate(context.Background(), tt.rec)

			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, fee)
			_, tracked := engine.Client("1")
			assert.False(t, tracked)
			metrics.AssertExpectations(t)
		})
	}
}

func TestEngine_Run_SkippedRecordsProduceNoOutput(t *testing.T) {
	source := &sliceSource{records: []models.TransactionRecord{
		record("2016-01-05", "1", "private", "deposit", "200.00", "EUR"),
		record("2016-01-05", "1", "private", "refund", "200.00", "EUR"),
		record("2016-01-06", "2", "unknown", "withdraw", "300.00", "EUR"),
		record("2016-01-06", "2", "business", "withdraw", "300.00", "EUR"),
	}}
	sink := &sliceSink{}

	summary, err := newTestEngine(testRates).Run(context.Background(), source, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"0.06", "1.50"}, sink.fees)
	assert.Equal(t, 4, summary.Read)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)
}

func TestEngine_Run_StopsOnError(t *testing.T) {
	t.Run("source error", func(t *testing.T) {
		source := &sliceSource{
			records: []models.TransactionRecord{record("2016-01-05", "1", "private", "deposit", "200.00", "EUR")},
			err:     errors.New("bad row"),
		}
		sink := &sliceSink{}

		summary, err := newTestEngine(testRates).Run(context.Background(), source, sink)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrReadFailed)
		assert.Equal(t, []string{"0.06"}, sink.fees)
		assert.Equal(t, 1, summary.Processed)
	})

	t.Run("conversion error", func(t *testing.T) {
		source := &sliceSource{records: []models.TransactionRecord{
			record("2016-01-05", "1", "private", "withdraw", "200.00", "GBP"),
			record("2016-01-05", "1", "private", "deposit", "200.00", "EUR"),
		}}
		sink := &sliceSink{}

		summary, err := newTestEngine(testRates).Run(context.Background(), source, sink)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConversionFailed)
		assert.Empty(t, sink.fees)
		assert.Equal(t, 1, summary.Read)
	})
}

func TestEngine_IndependentRuns(t *testing.T) {
	rec := record("2016-01-05", "1", "private", "withdraw", "1500.00", "EUR")

	first := newTestEngine(testRates)
	second := newTestEngine(testRates)

	fee, _, err := first.Calculate(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "1.50", fee)

	// The second engine has its own ledger.
	fee, _, err = second.Calculate(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "1.50", fee)
	assert.NotEqual(t, first.RunID(), second.RunID())
}

func TestNewEngine_RequiresConverter(t *testing.T) {
	assert.Panics(t, func() {
		NewEngine(DefaultConfig(), nil, nil, nil)
	})
}

func TestNewEngine_CustomAllowance(t *testing.T) {
	engine := NewEngine(Config{FreeCredit: decimal.NewFromInt(100), FreeWithdraw: 1}, testRates, nil, nil)
	ctx := context.Background()

	fee, _, err := engine.Calculate(ctx, record("2016-01-05", "1", "private", "withdraw", "50.00", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", fee)

	fee, _, err = engine.Calculate(ctx, record("2016-01-05", "1", "private", "withdraw", "10.00", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "0.03", fee)
}
