package mock

import (
	"context"

	"hooktrade/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// OrderExecutor is a testify mock of core.IOrderExecutor
type OrderExecutor struct {
	mock.Mock
}

func (m *OrderExecutor) Submit(ctx context.Context, req *core.OrderRequest) (*core.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}

func (m *OrderExecutor) PlaceEntry(ctx context.Context, symbol string, side core.Side, quantity decimal.Decimal) (*core.Order, error) {
	args := m.Called(ctx, symbol, side, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}

func (m *OrderExecutor) PlaceStopLoss(ctx context.Context, symbol string, entrySide core.Side, quantity, entryPrice decimal.Decimal) (*core.Order, error) {
	args := m.Called(ctx, symbol, entrySide, quantity, entryPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}

// Reconciler is a testify mock of core.IReconciler
type Reconciler struct {
	mock.Mock
}

func (m *Reconciler) Flatten(ctx context.Context, symbol string) (bool, error) {
	args := m.Called(ctx, symbol)
	return args.Bool(0), args.Error(1)
}

// Sizer is a testify mock of core.ISizer
type Sizer struct {
	mock.Mock
}

func (m *Sizer) SizeOrder(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
