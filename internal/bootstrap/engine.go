package bootstrap

import (
	"fmt"
	"time"

	"hooktrade/internal/account"
	"hooktrade/internal/alert"
	"hooktrade/internal/audit"
	"hooktrade/internal/catalog"
	"hooktrade/internal/coordinator"
	"hooktrade/internal/core"
	"hooktrade/internal/dedup"
	"hooktrade/internal/exchange/binance"
	"hooktrade/internal/executor"
	"hooktrade/internal/metrics"
	"hooktrade/internal/reconcile"
	"hooktrade/internal/server"
	"hooktrade/internal/sizing"
	"hooktrade/pkg/retry"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine bundles the constructed execution pipeline
type Engine struct {
	Server *server.Server
	Audit  *audit.Log
}

// BuildEngine constructs the full pipeline from configuration. All
// collaborators are injected explicitly; there are no package-level
// singletons to reach into.
func (a *App) BuildEngine() (*Engine, error) {
	cfg := a.Cfg

	exchange, err := createExchange(cfg.Exchange.Name, a)
	if err != nil {
		return nil, err
	}

	auditLog, err := audit.Open(cfg.Audit.Path, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	alerts := alert.NewManager(a.Logger)
	if cfg.Alert.TelegramBotToken != "" {
		alerts.AddChannel(alert.NewTelegramChannel(cfg.Alert.TelegramBotToken, cfg.Alert.TelegramChatID))
	}

	m := metrics.New(prometheus.NewRegistry())

	instruments := catalog.New(exchange, a.Logger)
	accounts := account.NewReader(exchange, cfg.Exchange.QuoteAsset, a.Logger)

	exec := executor.New(exchange, instruments, m, a.Logger, executor.Config{
		StopLossFraction: cfg.Trading.StopLossFraction,
		Retry: retry.Policy{
			MaxAttempts: cfg.Trading.MaxRetries,
			Delay:       time.Duration(cfg.Trading.RetryDelayMS) * time.Millisecond,
		},
		RateLimit: executor.DefaultConfig().RateLimit,
		RateBurst: executor.DefaultConfig().RateBurst,
	})

	sizer := sizing.New(accounts, instruments, exchange, cfg.Trading.RiskFraction, a.Logger)
	reconciler := reconcile.New(accounts, exec, a.Logger)

	coord := coordinator.New(
		coordinator.Config{
			AllowedSymbols: cfg.Trading.AllowedSymbols,
			Leverage:       cfg.Trading.Leverage,
			OneWayMode:     cfg.Trading.OneWayMode,
		},
		dedup.NewRegistry(),
		exchange,
		reconciler,
		sizer,
		exec,
		auditLog,
		alerts,
		m,
		a.Logger,
	)

	srv := server.New(
		server.Config{ListenAddr: cfg.Server.ListenAddr},
		coord,
		exchange,
		instruments,
		m.Handler(),
		a.Logger,
	)

	return &Engine{Server: srv, Audit: auditLog}, nil
}

// createExchange creates an exchange adapter by name. The mock exchange is
// test-only and cannot be built here.
func createExchange(name string, a *App) (core.IExchange, error) {
	switch name {
	case "binance":
		return binance.New(&a.Cfg.Exchange, a.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", name)
	}
}
