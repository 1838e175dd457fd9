// Package reconcile enforces one-way mode by flattening any open position
// before a new entry is allowed.
package reconcile

import (
	"context"
	"fmt"

	"hooktrade/internal/account"
	"hooktrade/internal/core"
	apperrors "hooktrade/pkg/errors"
)

// Reconciler implements core.IReconciler
type Reconciler struct {
	accounts *account.Reader
	executor core.IOrderExecutor
	logger   core.ILogger
}

// New creates a new position reconciler
func New(accounts *account.Reader, executor core.IOrderExecutor, logger core.ILogger) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		executor: executor,
		logger:   logger.WithField("component", "reconciler"),
	}
}

// Flatten closes any open position for symbol with a reduce-only market
// order on the opposite side. Returns whether an order was submitted. A
// failed flatten must abort any subsequent entry: opening on top of an
// unflattened position violates the one-way invariant.
func (r *Reconciler) Flatten(ctx context.Context, symbol string) (bool, error) {
	snapshot, err := r.accounts.Position(ctx, symbol)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrReconcileFailed, err)
	}

	if snapshot.Flat() {
		r.logger.Debug("position already flat", "symbol", symbol)
		return false, nil
	}

	side := core.SideSell
	if snapshot.SignedQty.Sign() < 0 {
		side = core.SideBuy
	}

	req := &core.OrderRequest{
		Symbol:     symbol,
		Side:       side,
		Type:       core.OrderTypeMarket,
		Quantity:   snapshot.SignedQty.Abs(),
		ReduceOnly: true,
	}

	if _, err := r.executor.Submit(ctx, req); err != nil {
		return false, fmt.Errorf("%w: flatten %s %s %s: %v",
			apperrors.ErrReconcileFailed, symbol, side, req.Quantity.String(), err)
	}

	r.logger.Info("position flattened",
		"symbol", symbol,
		"closed_qty", snapshot.SignedQty.String())

	return true, nil
}

var _ core.IReconciler = (*Reconciler)(nil)
