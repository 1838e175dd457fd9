// Package sizing computes order quantities from the account balance, a fixed
// risk fraction, the current price, and instrument precision.
package sizing

import (
	"context"
	"fmt"

	"hooktrade/internal/account"
	"hooktrade/internal/catalog"
	"hooktrade/internal/core"
	apperrors "hooktrade/pkg/errors"

	"github.com/shopspring/decimal"
)

// Sizer implements core.ISizer
type Sizer struct {
	accounts     *account.Reader
	catalog      *catalog.Catalog
	exchange     core.IExchange
	riskFraction decimal.Decimal
	logger       core.ILogger
}

// New creates a new position sizer. riskFraction is the fraction of the
// available balance committed per entry.
func New(accounts *account.Reader, cat *catalog.Catalog, exchange core.IExchange, riskFraction float64, logger core.ILogger) *Sizer {
	return &Sizer{
		accounts:     accounts,
		catalog:      cat,
		exchange:     exchange,
		riskFraction: decimal.NewFromFloat(riskFraction),
		logger:       logger.WithField("component", "sizer"),
	}
}

// SizeOrder computes the entry quantity for a symbol:
// balance * riskFraction / price, rounded down to the instrument step size.
// A non-positive balance, price, or rounded quantity yields
// ErrInvalidQuantity; callers must treat that as "do not place an order".
func (s *Sizer) SizeOrder(ctx context.Context, symbol string) (decimal.Decimal, error) {
	balance, err := s.accounts.AvailableBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive balance %s: %w", balance.String(), apperrors.ErrInvalidQuantity)
	}

	price, err := s.exchange.GetLatestPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if price.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive price %s: %w", price.String(), apperrors.ErrInvalidQuantity)
	}

	step, err := s.catalog.StepSize(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	investment := balance.Mul(s.riskFraction)
	quantity := catalog.RoundToStep(investment.Div(price), step)

	if quantity.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("quantity rounds to zero (investment=%s price=%s step=%s): %w",
			investment.String(), price.String(), step.String(), apperrors.ErrInvalidQuantity)
	}

	s.logger.Debug("sized order",
		"symbol", symbol,
		"balance", balance.String(),
		"price", price.String(),
		"quantity", quantity.String())

	return quantity, nil
}
