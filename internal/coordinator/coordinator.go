// Package coordinator sequences the execution pipeline for each inbound
// signal: dedup gate, validation, reconciliation, sizing, entry, stop-loss.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hooktrade/internal/alert"
	"hooktrade/internal/core"
	"hooktrade/internal/metrics"
	apperrors "hooktrade/pkg/errors"
)

// Config holds the static trading parameters the coordinator enforces
type Config struct {
	AllowedSymbols []string
	Leverage       int
	OneWayMode     bool
}

// Coordinator implements core.ICoordinator. All collaborators are injected;
// nothing here is package-level state.
type Coordinator struct {
	cfg        Config
	allowed    map[string]struct{}
	dedup      core.IDeduplicator
	exchange   core.IExchange
	reconciler core.IReconciler
	sizer      core.ISizer
	executor   core.IOrderExecutor
	audit      core.IAuditSink
	alerts     *alert.Manager
	metrics    *metrics.Metrics
	logger     core.ILogger

	// Serializes reconcile -> size -> submit per symbol so two
	// near-simultaneous entries for the same symbol cannot both pass
	// reconciliation before either enters.
	symbolMu map[string]*sync.Mutex
	mu       sync.Mutex
}

// New creates a new execution coordinator
func New(
	cfg Config,
	dedup core.IDeduplicator,
	exchange core.IExchange,
	reconciler core.IReconciler,
	sizer core.ISizer,
	executor core.IOrderExecutor,
	auditSink core.IAuditSink,
	alerts *alert.Manager,
	m *metrics.Metrics,
	logger core.ILogger,
) *Coordinator {
	allowed := make(map[string]struct{}, len(cfg.AllowedSymbols))
	for _, s := range cfg.AllowedSymbols {
		allowed[core.NormalizeSymbol(s)] = struct{}{}
	}

	return &Coordinator{
		cfg:        cfg,
		allowed:    allowed,
		dedup:      dedup,
		exchange:   exchange,
		reconciler: reconciler,
		sizer:      sizer,
		executor:   executor,
		audit:      auditSink,
		alerts:     alerts,
		metrics:    m,
		logger:     logger.WithField("component", "coordinator"),
	}
}

// Execute runs one signal through the pipeline and produces its terminal
// outcome. Exactly one audit event and one metrics observation are recorded
// per call.
func (c *Coordinator) Execute(ctx context.Context, sig core.Signal) core.ExecutionOutcome {
	start := time.Now()
	outcome := c.execute(ctx, sig)

	c.metrics.SignalsTotal.WithLabelValues(string(sig.Action), string(outcome.Status)).Inc()
	c.metrics.SignalDuration.Observe(time.Since(start).Seconds())

	c.audit.Record(core.AuditEvent{
		Time:     start,
		SignalID: sig.ID,
		Symbol:   core.NormalizeSymbol(sig.Symbol),
		Action:   string(sig.Action),
		Status:   outcome.Status,
		Detail:   outcome.Detail,
	})

	c.logger.Info("signal processed",
		"signal_id", sig.ID,
		"symbol", sig.Symbol,
		"action", sig.Action,
		"status", outcome.Status,
		"detail", outcome.Detail,
		"elapsed", time.Since(start).String())

	return outcome
}

func (c *Coordinator) execute(ctx context.Context, sig core.Signal) core.ExecutionOutcome {
	// Dedup gate first: a replayed signal must produce no side effects,
	// not even validation noise.
	if !c.dedup.Admit(sig.ID) {
		return core.ExecutionOutcome{
			Status: core.StatusDuplicate,
			Detail: fmt.Sprintf("signal %s already processed", sig.ID),
		}
	}

	// Validation gate
	symbol := core.NormalizeSymbol(sig.Symbol)
	if _, ok := c.allowed[symbol]; !ok {
		return core.ExecutionOutcome{
			Status: core.StatusRejected,
			Detail: fmt.Sprintf("symbol %s not allow-listed: %v", symbol, apperrors.ErrInvalidSymbol),
		}
	}
	if !sig.Action.Valid() {
		return core.ExecutionOutcome{
			Status: core.StatusRejected,
			Detail: fmt.Sprintf("action %q: %v", sig.Action, apperrors.ErrUnknownAction),
		}
	}

	lock := c.lockFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	// Leverage is an exchange-side account setting, applied once per
	// signal before reconciliation.
	if c.cfg.Leverage > 0 {
		if err := c.exchange.SetLeverage(ctx, symbol, c.cfg.Leverage); err != nil {
			return core.ExecutionOutcome{
				Status: core.StatusExchangeError,
				Detail: fmt.Sprintf("set leverage: %v", err),
			}
		}
	}

	// Flatten-before-flip: unconditional in one-way mode, and the entire
	// behavior of an exit signal. A take-profit terminates through the same
	// path; in one-way mode the flatten is what realizes the profit.
	if c.cfg.OneWayMode || sig.Action.IsExit() {
		flattened, err := c.reconciler.Flatten(ctx, symbol)
		if err != nil {
			return core.ExecutionOutcome{
				Status: core.StatusExchangeError,
				Detail: err.Error(),
			}
		}
		if !sig.Action.IsEntry() {
			detail := "no open position"
			if flattened {
				detail = "position closed"
			}
			return core.ExecutionOutcome{Status: core.StatusOK, Detail: detail}
		}
	}

	if sig.Action == core.ActionTakeProfit {
		// Outside one-way mode nothing is configured to act on it
		return core.ExecutionOutcome{Status: core.StatusOK, Detail: "take-profit acknowledged, no action configured"}
	}

	// Entry path
	quantity, err := c.sizer.SizeOrder(ctx, symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidQuantity) {
			return core.ExecutionOutcome{
				Status: core.StatusInvalidQuantity,
				Detail: err.Error(),
			}
		}
		return core.ExecutionOutcome{
			Status: core.StatusExchangeError,
			Detail: fmt.Sprintf("sizing: %v", err),
		}
	}

	side := sig.Action.EntrySide()
	entry, err := c.executor.PlaceEntry(ctx, symbol, side, quantity)
	if err != nil {
		return core.ExecutionOutcome{
			Status: core.StatusExchangeError,
			Detail: fmt.Sprintf("entry order: %v", err),
		}
	}

	// The entry is the side effect of record; the stop-loss is best-effort
	// protection. Its failure degrades the outcome detail but stays OK.
	if detail := c.placeStopLoss(ctx, symbol, side, entry); detail != "" {
		return core.ExecutionOutcome{Status: core.StatusOK, Detail: detail}
	}

	return core.ExecutionOutcome{
		Status: core.StatusOK,
		Detail: fmt.Sprintf("entry %s %s qty=%s order_id=%d", side, symbol, quantity.String(), entry.OrderID),
	}
}

// placeStopLoss submits the protective stop and returns a degraded-outcome
// detail string when the entry is left unprotected.
func (c *Coordinator) placeStopLoss(ctx context.Context, symbol string, side core.Side, entry *core.Order) string {
	entryPrice := entry.AvgPrice
	if entryPrice.Sign() <= 0 {
		// Market order acks can carry a zero average price before the
		// fill is reported; fall back to the latest traded price.
		price, err := c.exchange.GetLatestPrice(ctx, symbol)
		if err != nil {
			return c.stopLossFailed(ctx, symbol, entry, fmt.Sprintf("stop-loss skipped, no reference price: %v", err))
		}
		entryPrice = price
	}

	stop, err := c.executor.PlaceStopLoss(ctx, symbol, side, entry.Quantity, entryPrice)
	if err != nil {
		return c.stopLossFailed(ctx, symbol, entry, fmt.Sprintf("entry order_id=%d filled but stop-loss failed: %v", entry.OrderID, err))
	}
	if stop != nil {
		c.logger.Info("stop-loss placed",
			"symbol", symbol,
			"stop_price", stop.StopPrice.String(),
			"order_id", stop.OrderID)
	}
	return ""
}

func (c *Coordinator) stopLossFailed(ctx context.Context, symbol string, entry *core.Order, detail string) string {
	c.metrics.StopLossFailed.Inc()
	c.logger.Error("position open without stop-loss protection",
		"symbol", symbol,
		"entry_order_id", entry.OrderID,
		"detail", detail)
	c.alerts.Alert(ctx, "Unprotected position", detail, alert.Critical, map[string]string{
		"symbol":         symbol,
		"entry_order_id": fmt.Sprintf("%d", entry.OrderID),
		"quantity":       entry.Quantity.String(),
	})
	return detail
}

func (c *Coordinator) lockFor(symbol string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.symbolMu == nil {
		c.symbolMu = make(map[string]*sync.Mutex)
	}
	lock, ok := c.symbolMu[symbol]
	if !ok {
		lock = &sync.Mutex{}
		c.symbolMu[symbol] = lock
	}
	return lock
}

var _ core.ICoordinator = (*Coordinator)(nil)
