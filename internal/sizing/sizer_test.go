package sizing

import (
	"context"
	"testing"

	"hooktrade/internal/account"
	"hooktrade/internal/catalog"
	"hooktrade/internal/core"
	"hooktrade/internal/mock"
	apperrors "hooktrade/pkg/errors"
	"hooktrade/pkg/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSizer(t *testing.T, exchange *mock.Exchange, riskFraction float64) *Sizer {
	t.Helper()
	logger := logging.NewNop()
	accounts := account.NewReader(exchange, "USDT", logger)
	cat := catalog.New(exchange, logger)
	return New(accounts, cat, exchange, riskFraction, logger)
}

func TestSizeOrder(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		price    string
		step     string
		risk     float64
		expected string
	}{
		// 1000 * 0.05 / 50 = 1.00
		{"whole result", "1000", "50", "0.01", 0.05, "1"},
		// 1000 * 0.05 / 3 = 16.666..., truncated to step
		{"truncated to step", "1000", "3", "0.01", 0.05, "16.66"},
		{"coarse step", "1000", "3", "1", 0.05, "16"},
		{"small balance fine step", "37.5", "0.8214", "1", 0.05, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exchange := &mock.Exchange{}
			exchange.On("GetAvailableBalance", tmock.Anything, "USDT").Return(d(tt.balance), nil)
			exchange.On("GetLatestPrice", tmock.Anything, "FETUSDT").Return(d(tt.price), nil)
			exchange.On("GetInstrument", tmock.Anything, "FETUSDT").Return(&core.InstrumentSpec{
				Symbol:   "FETUSDT",
				StepSize: d(tt.step),
				TickSize: d("0.0001"),
			}, nil)

			sizer := newSizer(t, exchange, tt.risk)

			quantity, err := sizer.SizeOrder(context.Background(), "FETUSDT")
			require.NoError(t, err)
			assert.True(t, quantity.Equal(d(tt.expected)), "got %s, want %s", quantity, tt.expected)
		})
	}
}

func TestSizeOrderMonotonicInBalance(t *testing.T) {
	size := func(balance string) decimal.Decimal {
		exchange := &mock.Exchange{}
		exchange.On("GetAvailableBalance", tmock.Anything, "USDT").Return(d(balance), nil)
		exchange.On("GetLatestPrice", tmock.Anything, "FETUSDT").Return(d("2.5"), nil)
		exchange.On("GetInstrument", tmock.Anything, "FETUSDT").Return(&core.InstrumentSpec{
			Symbol:   "FETUSDT",
			StepSize: d("0.01"),
			TickSize: d("0.0001"),
		}, nil)

		quantity, err := newSizer(t, exchange, 0.05).SizeOrder(context.Background(), "FETUSDT")
		require.NoError(t, err)
		return quantity
	}

	assert.True(t, size("500").LessThanOrEqual(size("1000")))
	assert.True(t, size("1000").LessThanOrEqual(size("2000")))
}

func TestSizeOrderMonotonicInPrice(t *testing.T) {
	size := func(price string) decimal.Decimal {
		exchange := &mock.Exchange{}
		exchange.On("GetAvailableBalance", tmock.Anything, "USDT").Return(d("1000"), nil)
		exchange.On("GetLatestPrice", tmock.Anything, "FETUSDT").Return(d(price), nil)
		exchange.On("GetInstrument", tmock.Anything, "FETUSDT").Return(&core.InstrumentSpec{
			Symbol:   "FETUSDT",
			StepSize: d("0.01"),
			TickSize: d("0.0001"),
		}, nil)

		quantity, err := newSizer(t, exchange, 0.05).SizeOrder(context.Background(), "FETUSDT")
		require.NoError(t, err)
		return quantity
	}

	// A higher price never yields a larger quantity
	assert.True(t, size("100").LessThanOrEqual(size("50")))
	assert.True(t, size("50").LessThanOrEqual(size("25")))
}

func TestSizeOrderInvalidQuantity(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		price   string
		step    string
	}{
		{"zero balance", "0", "50", "0.01"},
		{"negative balance", "-10", "50", "0.01"},
		{"zero price", "1000", "0", "0.01"},
		{"rounds to zero", "10", "1000", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exchange := &mock.Exchange{}
			exchange.On("GetAvailableBalance", tmock.Anything, "USDT").Return(d(tt.balance), nil)
			exchange.On("GetLatestPrice", tmock.Anything, "FETUSDT").Return(d(tt.price), nil)
			exchange.On("GetInstrument", tmock.Anything, "FETUSDT").Return(&core.InstrumentSpec{
				Symbol:   "FETUSDT",
				StepSize: d(tt.step),
				TickSize: d("0.0001"),
			}, nil)

			_, err := newSizer(t, exchange, 0.05).SizeOrder(context.Background(), "FETUSDT")
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
		})
	}
}

func TestSizeOrderBalanceFailurePropagates(t *testing.T) {
	exchange := &mock.Exchange{}
	exchange.On("GetAvailableBalance", tmock.Anything, "USDT").
		Return(decimal.Zero, apperrors.ErrExchangeUnavailable)

	_, err := newSizer(t, exchange, 0.05).SizeOrder(context.Background(), "FETUSDT")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExchangeUnavailable)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidQuantity)
}
