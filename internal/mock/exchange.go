// Package mock provides test doubles for the engine's interfaces
package mock

import (
	"context"

	"hooktrade/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Exchange is a testify mock of core.IExchange
type Exchange struct {
	mock.Mock
}

func (m *Exchange) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *Exchange) CheckHealth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Exchange) GetAvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *Exchange) GetPosition(ctx context.Context, symbol string) (*core.PositionSnapshot, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.PositionSnapshot), args.Error(1)
}

func (m *Exchange) GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *Exchange) GetInstrument(ctx context.Context, symbol string) (*core.InstrumentSpec, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.InstrumentSpec), args.Error(1)
}

func (m *Exchange) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	args := m.Called(ctx, symbol, leverage)
	return args.Error(0)
}

func (m *Exchange) PlaceOrder(ctx context.Context, req *core.OrderRequest) (*core.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}
