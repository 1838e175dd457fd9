// Package core defines the domain types and interfaces for the signal
// execution engine.
package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IExchange defines the outbound exchange operations the engine depends on.
// The engine depends only on these semantics, not on the transport behind
// them.
type IExchange interface {
	// Identity
	GetName() string
	CheckHealth(ctx context.Context) error

	// Account operations, fetched fresh per signal
	GetAvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	GetPosition(ctx context.Context, symbol string) (*PositionSnapshot, error)

	// Market data
	GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetInstrument(ctx context.Context, symbol string) (*InstrumentSpec, error)

	// Account settings
	SetLeverage(ctx context.Context, symbol string, leverage int) error

	// Order submission
	PlaceOrder(ctx context.Context, req *OrderRequest) (*Order, error)
}

// IOrderExecutor places orders against the exchange with bounded retry on
// transient failure.
type IOrderExecutor interface {
	Submit(ctx context.Context, req *OrderRequest) (*Order, error)
	PlaceEntry(ctx context.Context, symbol string, side Side, quantity decimal.Decimal) (*Order, error)
	PlaceStopLoss(ctx context.Context, symbol string, entrySide Side, quantity, entryPrice decimal.Decimal) (*Order, error)
}

// IReconciler flattens any open position before a new entry is allowed
type IReconciler interface {
	Flatten(ctx context.Context, symbol string) (bool, error)
}

// ISizer computes an order quantity from the account balance and the
// instrument's precision constraints.
type ISizer interface {
	SizeOrder(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// IDeduplicator admits each distinct signal id at most once
type IDeduplicator interface {
	Admit(signalID string) bool
}

// ICoordinator sequences the execution pipeline for one inbound signal
type ICoordinator interface {
	Execute(ctx context.Context, sig Signal) ExecutionOutcome
}

// IAuditSink records one structured entry per processed signal
type IAuditSink interface {
	Record(event AuditEvent)
}

// ILogger defines the interface for logging
type ILogger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
	WithField(key string, value interface{}) ILogger
	WithFields(fields map[string]interface{}) ILogger
}
