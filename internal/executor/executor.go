// Package executor provides order execution with rate limiting and bounded
// retry at the exchange-call boundary.
package executor

import (
	"context"
	"fmt"
	"strings"

	"hooktrade/internal/catalog"
	"hooktrade/internal/core"
	"hooktrade/internal/metrics"
	apperrors "hooktrade/pkg/errors"
	"hooktrade/pkg/retry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Config holds executor tuning parameters
type Config struct {
	StopLossFraction float64
	Retry            retry.Policy
	RateLimit        rate.Limit
	RateBurst        int
}

// DefaultConfig mirrors the exchange's documented order-rate headroom
func DefaultConfig() Config {
	return Config{
		Retry:     retry.DefaultPolicy,
		RateLimit: 25,
		RateBurst: 30,
	}
}

// Executor implements core.IOrderExecutor
type Executor struct {
	exchange core.IExchange
	catalog  *catalog.Catalog
	logger   core.ILogger
	metrics  *metrics.Metrics

	limiter          *rate.Limiter
	policy           retry.Policy
	stopLossFraction decimal.Decimal
}

// New creates a new order executor instance
func New(exchange core.IExchange, cat *catalog.Catalog, m *metrics.Metrics, logger core.ILogger, cfg Config) *Executor {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 25
		cfg.RateBurst = 30
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = retry.DefaultPolicy
	}

	return &Executor{
		exchange:         exchange,
		catalog:          cat,
		logger:           logger.WithField("component", "order_executor"),
		metrics:          m,
		limiter:          rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		policy:           cfg.Retry,
		stopLossFraction: decimal.NewFromFloat(cfg.StopLossFraction),
	}
}

// Submit places a single order with rate limiting and retry. Only transient
// exchange failures are retried; validation failures surface immediately.
func (e *Executor) Submit(ctx context.Context, req *core.OrderRequest) (*core.Order, error) {
	if req.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("quantity %s: %w", req.Quantity.String(), apperrors.ErrInvalidQuantity)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	attempts := 0
	order, err := retry.Do(ctx, e.policy, apperrors.IsTransient, func() (*core.Order, error) {
		attempts++
		placed, placeErr := e.exchange.PlaceOrder(ctx, req)
		if placeErr != nil {
			e.logger.Warn("order placement failed",
				"symbol", req.Symbol,
				"side", req.Side,
				"type", req.Type,
				"attempt", attempts,
				"error", placeErr.Error())
		}
		return placed, placeErr
	})

	if attempts > 1 {
		e.metrics.RetriesTotal.Add(float64(attempts - 1))
	}
	if err != nil {
		return nil, err
	}

	e.metrics.OrdersTotal.WithLabelValues(orderKind(req), string(req.Side)).Inc()
	e.logger.Info("order placed",
		"symbol", req.Symbol,
		"side", req.Side,
		"type", req.Type,
		"quantity", req.Quantity.String(),
		"reduce_only", req.ReduceOnly,
		"order_id", order.OrderID)

	return order, nil
}

// PlaceEntry submits a market entry order
func (e *Executor) PlaceEntry(ctx context.Context, symbol string, side core.Side, quantity decimal.Decimal) (*core.Order, error) {
	return e.Submit(ctx, &core.OrderRequest{
		Symbol:        symbol,
		Side:          side,
		Type:          core.OrderTypeMarket,
		Quantity:      quantity,
		ClientOrderID: newClientOrderID(),
	})
}

// PlaceStopLoss submits the dependent reduce-only stop-market order
// protecting an entry: stopPrice = entryPrice * (1 - fraction) for a long
// entry, (1 + fraction) for a short entry.
func (e *Executor) PlaceStopLoss(ctx context.Context, symbol string, entrySide core.Side, quantity, entryPrice decimal.Decimal) (*core.Order, error) {
	if e.stopLossFraction.Sign() <= 0 {
		return nil, nil
	}

	one := decimal.NewFromInt(1)
	factor := one.Sub(e.stopLossFraction)
	if entrySide == core.SideSell {
		factor = one.Add(e.stopLossFraction)
	}
	stopPrice := entryPrice.Mul(factor)

	spec, err := e.catalog.Spec(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("stop price precision: %w", err)
	}
	stopPrice = catalog.RoundToTick(stopPrice, spec.TickSize)

	// The intended stop price appears in the error so an operator can
	// recreate the protection by hand.
	order, err := e.Submit(ctx, &core.OrderRequest{
		Symbol:        symbol,
		Side:          entrySide.Opposite(),
		Type:          core.OrderTypeStopMarket,
		Quantity:      quantity,
		StopPrice:     stopPrice,
		ReduceOnly:    true,
		ClientOrderID: newClientOrderID(),
	})
	if err != nil {
		return nil, fmt.Errorf("stop price %s: %w", stopPrice.String(), err)
	}
	return order, nil
}

func orderKind(req *core.OrderRequest) string {
	switch {
	case req.Type == core.OrderTypeStopMarket:
		return "stop_loss"
	case req.ReduceOnly:
		return "flatten"
	default:
		return "entry"
	}
}

// newClientOrderID generates a compact id within the exchange's 36-char limit
func newClientOrderID() string {
	return "ht" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

var _ core.IOrderExecutor = (*Executor)(nil)
