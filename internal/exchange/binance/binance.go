// Package binance provides Binance USDT-M futures connectivity
package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hooktrade/internal/config"
	"hooktrade/internal/core"
	apperrors "hooktrade/pkg/errors"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

// Exchange implements core.IExchange against the Binance futures REST API
type Exchange struct {
	client      *futures.Client
	logger      core.ILogger
	callTimeout time.Duration
}

// New creates a new Binance futures exchange instance
func New(cfg *config.ExchangeConfig, logger core.ILogger) *Exchange {
	if cfg.Testnet {
		futures.UseTestnet = true
	}

	return &Exchange{
		client:      gobinance.NewFuturesClient(cfg.APIKey, cfg.SecretKey),
		logger:      logger.WithField("component", "binance"),
		callTimeout: time.Duration(cfg.CallTimeoutSeconds) * time.Second,
	}
}

func (e *Exchange) GetName() string {
	return "binance"
}

// callContext bounds every exchange call so no request can hang a signal
func (e *Exchange) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.callTimeout)
}

// CheckHealth verifies REST connectivity
func (e *Exchange) CheckHealth(ctx context.Context) error {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	if err := e.client.NewPingService().Do(ctx); err != nil {
		return e.mapError(err)
	}
	return nil
}

// GetAvailableBalance returns the available balance for one asset
func (e *Exchange) GetAvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	balances, err := e.client.NewGetBalanceService().Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch account balance: %w", e.mapError(err))
	}

	for _, b := range balances {
		if b.Asset != asset {
			continue
		}
		available, err := decimal.NewFromString(b.AvailableBalance)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse available balance %q: %w", b.AvailableBalance, err)
		}
		return available, nil
	}

	return decimal.Zero, fmt.Errorf("asset %s: %w", asset, apperrors.ErrAssetNotFound)
}

// GetPosition returns the current signed position for a symbol. An absent
// position response is a valid flat position, not an error.
func (e *Exchange) GetPosition(ctx context.Context, symbol string) (*core.PositionSnapshot, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	positions, err := e.client.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch position %s: %w", symbol, e.mapError(err))
	}

	signed := decimal.Zero
	for _, p := range positions {
		amt, err := decimal.NewFromString(p.PositionAmt)
		if err != nil {
			return nil, fmt.Errorf("parse position amount %q: %w", p.PositionAmt, err)
		}
		signed = signed.Add(amt)
	}

	return &core.PositionSnapshot{Symbol: symbol, SignedQty: signed}, nil
}

// GetLatestPrice returns the latest traded price for a symbol
func (e *Exchange) GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	prices, err := e.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch price %s: %w", symbol, e.mapError(err))
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("price %s: %w", symbol, apperrors.ErrInstrumentNotFound)
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", prices[0].Price, err)
	}
	return price, nil
}

// GetInstrument fetches exchange metadata for a symbol and extracts the
// LOT_SIZE step and PRICE_FILTER tick. A missing filter is a distinguishable
// error, never a defaulted precision.
func (e *Exchange) GetInstrument(ctx context.Context, symbol string) (*core.InstrumentSpec, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	info, err := e.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch exchange info: %w", e.mapError(err))
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}

		var stepSize, tickSize decimal.Decimal
		for _, filter := range s.Filters {
			switch filter["filterType"] {
			case "LOT_SIZE":
				stepSize, err = parseFilterValue(filter, "stepSize")
			case "PRICE_FILTER":
				tickSize, err = parseFilterValue(filter, "tickSize")
			}
			if err != nil {
				return nil, fmt.Errorf("instrument %s: %w", symbol, err)
			}
		}

		if stepSize.IsZero() {
			return nil, fmt.Errorf("instrument %s has no LOT_SIZE filter: %w", symbol, apperrors.ErrFilterMissing)
		}
		if tickSize.IsZero() {
			return nil, fmt.Errorf("instrument %s has no PRICE_FILTER filter: %w", symbol, apperrors.ErrFilterMissing)
		}

		return &core.InstrumentSpec{Symbol: symbol, StepSize: stepSize, TickSize: tickSize}, nil
	}

	return nil, fmt.Errorf("instrument %s: %w", symbol, apperrors.ErrInstrumentNotFound)
}

func parseFilterValue(filter map[string]interface{}, key string) (decimal.Decimal, error) {
	raw, ok := filter[key].(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("filter value %s absent: %w", key, apperrors.ErrFilterMissing)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse filter value %s=%q: %w", key, raw, err)
	}
	return value, nil
}

// SetLeverage applies the configured leverage as an exchange-side account
// setting.
func (e *Exchange) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	_, err := e.client.NewChangeLeverageService().Symbol(symbol).Leverage(leverage).Do(ctx)
	if err != nil {
		return fmt.Errorf("set leverage %s x%d: %w", symbol, leverage, e.mapError(err))
	}
	return nil
}

// PlaceOrder submits an order and converts the acknowledgement
func (e *Exchange) PlaceOrder(ctx context.Context, req *core.OrderRequest) (*core.Order, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	svc := e.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(mapOrderType(req.Type)).
		Quantity(req.Quantity.String())

	if req.ReduceOnly {
		svc = svc.ReduceOnly(true)
	}
	if req.Type == core.OrderTypeStopMarket {
		svc = svc.StopPrice(req.StopPrice.String()).WorkingType(futures.WorkingTypeMarkPrice)
	}
	if req.ClientOrderID != "" {
		svc = svc.NewClientOrderID(req.ClientOrderID)
	}

	res, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("place %s %s %s: %w", req.Type, req.Side, req.Symbol, e.mapError(err))
	}

	avgPrice := decimal.Zero
	if res.AvgPrice != "" {
		if parsed, parseErr := decimal.NewFromString(res.AvgPrice); parseErr == nil {
			avgPrice = parsed
		}
	}

	return &core.Order{
		OrderID:       res.OrderID,
		ClientOrderID: res.ClientOrderID,
		Symbol:        res.Symbol,
		Side:          req.Side,
		Type:          req.Type,
		Quantity:      req.Quantity,
		AvgPrice:      avgPrice,
		StopPrice:     req.StopPrice,
		Status:        string(res.Status),
		CreatedAt:     time.UnixMilli(res.UpdateTime),
	}, nil
}

func mapOrderType(t core.OrderType) futures.OrderType {
	if t == core.OrderTypeStopMarket {
		return futures.OrderTypeStopMarket
	}
	return futures.OrderTypeMarket
}

// mapError converts Binance API errors to the standardized taxonomy.
// Transport-level failures map to ErrExchangeUnavailable so the retry
// classifier treats them as transient.
func (e *Exchange) mapError(err error) error {
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		// Network errors, timeouts, cancellation
		return fmt.Errorf("%w: %v", apperrors.ErrExchangeUnavailable, err)
	}

	switch apiErr.Code {
	case -2014, -2015:
		return fmt.Errorf("%w: %s", apperrors.ErrAuthenticationFailed, apiErr.Message)
	case -2010, -2019:
		return fmt.Errorf("%w: %s", apperrors.ErrInsufficientFunds, apiErr.Message)
	case -1003:
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimitExceeded, apiErr.Message)
	case -1121:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidSymbol, apiErr.Message)
	case -1111, -4164:
		return fmt.Errorf("%w: %s", apperrors.ErrOrderRejected, apiErr.Message)
	}

	return fmt.Errorf("binance error %d: %s", apiErr.Code, apiErr.Message)
}
