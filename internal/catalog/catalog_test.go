package catalog

import (
	"context"
	"testing"

	"hooktrade/internal/core"
	"hooktrade/internal/mock"
	apperrors "hooktrade/pkg/errors"
	"hooktrade/pkg/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tmock "github.com/stretchr/testify/mock"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		step     string
		expected string
	}{
		{"truncates below step multiple", "1.2345", "0.01", "1.23"},
		{"never rounds up", "1.999", "0.01", "1.99"},
		{"exact multiple unchanged", "1.23", "0.01", "1.23"},
		{"whole step", "7.9", "1", "7"},
		{"quantity below step is zero", "0.004", "0.01", "0"},
		{"coarse step", "123.45", "0.5", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundToStep(d(tt.quantity), d(tt.step))
			assert.True(t, got.Equal(d(tt.expected)), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestRoundToStepIdempotent(t *testing.T) {
	step := d("0.001")
	once := RoundToStep(d("3.14159"), step)
	twice := RoundToStep(once, step)
	assert.True(t, once.Equal(twice))
}

func TestRoundToStepInvalidStep(t *testing.T) {
	assert.True(t, RoundToStep(d("1.5"), decimal.Zero).IsZero())
	assert.True(t, RoundToStep(d("1.5"), d("-0.01")).IsZero())
}

func TestRoundToTick(t *testing.T) {
	assert.True(t, RoundToTick(d("97.993"), d("0.01")).Equal(d("97.99")))
	assert.True(t, RoundToTick(d("97.996"), d("0.01")).Equal(d("98")))
	// A non-positive tick leaves the price untouched
	assert.True(t, RoundToTick(d("97.993"), decimal.Zero).Equal(d("97.993")))
}

func TestSpecCachesAfterFirstFetch(t *testing.T) {
	exchange := &mock.Exchange{}
	spec := &core.InstrumentSpec{Symbol: "FETUSDT", StepSize: d("0.01"), TickSize: d("0.0001")}
	exchange.On("GetInstrument", tmock.Anything, "FETUSDT").Return(spec, nil).Once()

	cat := New(exchange, logging.NewNop())

	first, err := cat.Spec(context.Background(), "FETUSDT")
	require.NoError(t, err)
	second, err := cat.Spec(context.Background(), "FETUSDT")
	require.NoError(t, err)

	assert.Same(t, first, second)
	exchange.AssertExpectations(t)
}

func TestSpecPropagatesLookupFailure(t *testing.T) {
	exchange := &mock.Exchange{}
	exchange.On("GetInstrument", tmock.Anything, "NOPEUSDT").
		Return(nil, apperrors.ErrInstrumentNotFound)

	cat := New(exchange, logging.NewNop())

	_, err := cat.Spec(context.Background(), "NOPEUSDT")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInstrumentNotFound)
}

func TestRefreshForcesRefetch(t *testing.T) {
	exchange := &mock.Exchange{}
	spec := &core.InstrumentSpec{Symbol: "FETUSDT", StepSize: d("0.01"), TickSize: d("0.0001")}
	exchange.On("GetInstrument", tmock.Anything, "FETUSDT").Return(spec, nil).Twice()

	cat := New(exchange, logging.NewNop())

	_, err := cat.Spec(context.Background(), "FETUSDT")
	require.NoError(t, err)

	cat.Refresh()

	_, err = cat.Spec(context.Background(), "FETUSDT")
	require.NoError(t, err)
	exchange.AssertExpectations(t)
}

func TestStepSize(t *testing.T) {
	exchange := &mock.Exchange{}
	spec := &core.InstrumentSpec{Symbol: "DOTUSDT", StepSize: d("0.1"), TickSize: d("0.001")}
	exchange.On("GetInstrument", tmock.Anything, "DOTUSDT").Return(spec, nil)

	cat := New(exchange, logging.NewNop())

	step, err := cat.StepSize(context.Background(), "DOTUSDT")
	require.NoError(t, err)
	assert.True(t, step.Equal(d("0.1")))
}
