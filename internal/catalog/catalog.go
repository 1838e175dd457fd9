// Package catalog caches per-symbol instrument precision and provides
// precision-aware quantity rounding.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"hooktrade/internal/core"

	"github.com/shopspring/decimal"
)

// Catalog lazily fetches instrument specs and caches them for the process
// lifetime. Exchange instrument metadata changes rarely; Refresh provides a
// manual invalidation path for operational use.
type Catalog struct {
	exchange core.IExchange
	logger   core.ILogger

	mu    sync.RWMutex
	specs map[string]*core.InstrumentSpec
}

// New creates a new instrument catalog
func New(exchange core.IExchange, logger core.ILogger) *Catalog {
	return &Catalog{
		exchange: exchange,
		logger:   logger.WithField("component", "catalog"),
		specs:    make(map[string]*core.InstrumentSpec),
	}
}

// Spec returns the cached instrument spec for a symbol, fetching it from the
// exchange on first use. A failed lookup propagates as a distinguishable
// error; there is no default precision fallback.
func (c *Catalog) Spec(ctx context.Context, symbol string) (*core.InstrumentSpec, error) {
	c.mu.RLock()
	spec, ok := c.specs[symbol]
	c.mu.RUnlock()
	if ok {
		return spec, nil
	}

	fetched, err := c.exchange.GetInstrument(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("resolve instrument %s: %w", symbol, err)
	}

	c.mu.Lock()
	// Another request may have populated the entry while we fetched
	if cached, ok := c.specs[symbol]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.specs[symbol] = fetched
	c.mu.Unlock()

	c.logger.Info("cached instrument spec",
		"symbol", symbol,
		"step_size", fetched.StepSize.String(),
		"tick_size", fetched.TickSize.String())

	return fetched, nil
}

// StepSize returns the minimum tradable quantity increment for a symbol
func (c *Catalog) StepSize(ctx context.Context, symbol string) (decimal.Decimal, error) {
	spec, err := c.Spec(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return spec.StepSize, nil
}

// Refresh drops all cached specs so they are re-fetched on next use
func (c *Catalog) Refresh() {
	c.mu.Lock()
	c.specs = make(map[string]*core.InstrumentSpec)
	c.mu.Unlock()
	c.logger.Info("instrument cache cleared")
}

// RoundToStep rounds a quantity toward zero to the nearest multiple of step.
// Truncation, never nearest-rounding: the result must not exceed the sized
// amount.
func RoundToStep(quantity, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 {
		return decimal.Zero
	}
	return quantity.Div(step).Floor().Mul(step)
}

// RoundToTick rounds a price to the nearest multiple of tick
func RoundToTick(price, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		return price
	}
	return price.Div(tick).Round(0).Mul(tick)
}
