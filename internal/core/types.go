package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is an order direction
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the opposing side
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Action is the closed set of recognized signal actions, decided once at the
// validation gate.
type Action string

const (
	ActionBuy        Action = "BUY"
	ActionSell       Action = "SELL"
	ActionExitBuy    Action = "EXIT_BUY"
	ActionExitSell   Action = "EXIT_SELL"
	ActionTakeProfit Action = "TAKE_PROFIT"
)

// ParseAction normalizes a raw action string. TradingView templates emit
// either space- or underscore-separated spellings ("EXIT BUY" / "EXIT_BUY").
// An unrecognized string yields the empty Action.
func ParseAction(raw string) Action {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch Action(normalized) {
	case ActionBuy, ActionSell, ActionExitBuy, ActionExitSell, ActionTakeProfit:
		return Action(normalized)
	}
	return ""
}

// Valid reports whether the action belongs to the recognized set
func (a Action) Valid() bool {
	return ParseAction(string(a)) == a && a != ""
}

// IsEntry reports whether the action opens a new position
func (a Action) IsEntry() bool {
	return a == ActionBuy || a == ActionSell
}

// IsExit reports whether the action only closes an existing position
func (a Action) IsExit() bool {
	return a == ActionExitBuy || a == ActionExitSell
}

// EntrySide maps an entry action to its order side
func (a Action) EntrySide() Side {
	if a == ActionSell {
		return SideSell
	}
	return SideBuy
}

// NormalizeSymbol converts an inbound symbol to the exchange representation.
// TradingView appends a perpetual-contract marker (".P" or "_PERP") that the
// exchange API does not know about. The configured allow-list is normalized
// with the same function so the two representations cannot drift apart.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".P")
	s = strings.TrimSuffix(s, "_PERP")
	return s
}

// Signal is one inbound webhook signal. Immutable once constructed.
type Signal struct {
	ID         string
	Symbol     string
	Action     Action
	Raw        json.RawMessage
	ReceivedAt time.Time
}

// OrderType is the subset of exchange order types the executor submits
type OrderType string

const (
	OrderTypeMarket     OrderType = "MARKET"
	OrderTypeStopMarket OrderType = "STOP_MARKET"
)

// OrderRequest is a sized, fully-specified order ready for submission
type OrderRequest struct {
	Symbol        string
	Side          Side
	Type          OrderType
	Quantity      decimal.Decimal
	StopPrice     decimal.Decimal
	ReduceOnly    bool
	ClientOrderID string
}

// Order is the exchange's acknowledgement of a submitted order
type Order struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Side          Side
	Type          OrderType
	Quantity      decimal.Decimal
	AvgPrice      decimal.Decimal
	StopPrice     decimal.Decimal
	Status        string
	CreatedAt     time.Time
}

// InstrumentSpec holds the per-symbol precision constraints extracted from
// exchange metadata.
type InstrumentSpec struct {
	Symbol   string
	StepSize decimal.Decimal
	TickSize decimal.Decimal
}

// PositionSnapshot is the current position for a symbol. The sign of
// SignedQty encodes direction: positive long, negative short, zero flat.
type PositionSnapshot struct {
	Symbol    string
	SignedQty decimal.Decimal
}

// Flat reports whether there is no open position
func (p *PositionSnapshot) Flat() bool {
	return p == nil || p.SignedQty.IsZero()
}

// Status is the terminal outcome classification for a processed signal
type Status string

const (
	StatusOK              Status = "OK"
	StatusDuplicate       Status = "DUPLICATE"
	StatusRejected        Status = "REJECTED"
	StatusInvalidQuantity Status = "INVALID_QUANTITY"
	StatusExchangeError   Status = "EXCHANGE_ERROR"
)

// ExecutionOutcome is produced exactly once per signal
type ExecutionOutcome struct {
	Status Status
	Detail string
}

// AuditEvent is one structured entry in the append-only signal log
type AuditEvent struct {
	Time     time.Time `json:"time"`
	SignalID string    `json:"signal_id,omitempty"`
	Symbol   string    `json:"symbol"`
	Action   string    `json:"action"`
	Status   Status    `json:"status"`
	Detail   string    `json:"detail,omitempty"`
}
