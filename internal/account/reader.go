// Package account reads balance and position state from the exchange.
// Snapshots are fetched fresh per signal and never cached: the balance
// changes after every fill.
package account

import (
	"context"
	"fmt"

	"hooktrade/internal/core"

	"github.com/shopspring/decimal"
)

// Reader queries account state for the configured quote asset
type Reader struct {
	exchange   core.IExchange
	quoteAsset string
	logger     core.ILogger
}

// NewReader creates a new account reader
func NewReader(exchange core.IExchange, quoteAsset string, logger core.ILogger) *Reader {
	return &Reader{
		exchange:   exchange,
		quoteAsset: quoteAsset,
		logger:     logger.WithField("component", "account"),
	}
}

// AvailableBalance returns the quote-asset balance available for new orders
func (r *Reader) AvailableBalance(ctx context.Context) (decimal.Decimal, error) {
	balance, err := r.exchange.GetAvailableBalance(ctx, r.quoteAsset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("available balance: %w", err)
	}
	return balance, nil
}

// Position returns the current signed position for a symbol
func (r *Reader) Position(ctx context.Context, symbol string) (*core.PositionSnapshot, error) {
	snapshot, err := r.exchange.GetPosition(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", symbol, err)
	}
	return snapshot, nil
}
