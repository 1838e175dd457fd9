// Package server is the thin HTTP ingress in front of the execution engine
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"hooktrade/internal/core"

	"github.com/gin-gonic/gin"
)

// Config holds HTTP server settings
type Config struct {
	ListenAddr string
}

// InstrumentRefresher drops cached instrument metadata so it is re-fetched
// on next use.
type InstrumentRefresher interface {
	Refresh()
}

// Server exposes the webhook endpoint plus health, stats, metrics, and the
// instrument cache refresh hook.
type Server struct {
	cfg         Config
	coordinator core.ICoordinator
	exchange    core.IExchange
	instruments InstrumentRefresher
	metrics     http.Handler
	logger      core.ILogger

	statsMu sync.Mutex
	stats   map[core.Status]int64

	srv *http.Server
}

// webhookRequest is the inbound TradingView-style payload. Both "signal"
// (the original field name) and "action" are accepted.
type webhookRequest struct {
	Symbol   string `json:"symbol"`
	Signal   string `json:"signal"`
	Action   string `json:"action"`
	SignalID string `json:"signalId"`
}

// New creates the HTTP server
func New(cfg Config, coordinator core.ICoordinator, exchange core.IExchange, instruments InstrumentRefresher, metricsHandler http.Handler, logger core.ILogger) *Server {
	return &Server{
		cfg:         cfg,
		coordinator: coordinator,
		exchange:    exchange,
		instruments: instruments,
		metrics:     metricsHandler,
		logger:      logger.WithField("component", "server"),
		stats:       make(map[core.Status]int64),
	}
}

// Router builds the gin engine. Exposed separately so tests can drive it
// with httptest without binding a port.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/webhook", s.handleWebhook)
	router.GET("/healthz", s.handleHealth)
	router.GET("/stats", s.handleStats)
	if s.instruments != nil {
		router.POST("/refresh", s.handleRefresh)
	}
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook server listening", "addr", s.cfg.ListenAddr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unreadable body"})
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid JSON payload"})
		return
	}

	action := req.Signal
	if action == "" {
		action = req.Action
	}

	sig := core.Signal{
		ID:         req.SignalID,
		Symbol:     req.Symbol,
		Action:     core.ParseAction(action),
		Raw:        raw,
		ReceivedAt: time.Now(),
	}

	// Execution is detached from the request context: webhook senders use
	// short timeouts, and a dropped connection must not abort the pipeline
	// between entry and stop-loss. Per-call timeouts still bound every
	// exchange call.
	outcome := s.coordinator.Execute(context.WithoutCancel(c.Request.Context()), sig)

	s.statsMu.Lock()
	s.stats[outcome.Status]++
	s.statsMu.Unlock()

	c.JSON(httpStatusFor(outcome.Status), gin.H{
		"status":  string(outcome.Status),
		"message": outcome.Detail,
	})
}

// httpStatusFor maps terminal outcomes onto the webhook contract: success
// and duplicates are 200, local rejections 400, exchange failures 500.
func httpStatusFor(status core.Status) int {
	switch status {
	case core.StatusOK, core.StatusDuplicate:
		return http.StatusOK
	case core.StatusRejected, core.StatusInvalidQuantity:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.exchange.CheckHealth(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleRefresh is the operational hook for re-fetching instrument metadata
// after an exchange filter change.
func (s *Server) handleRefresh(c *gin.Context) {
	s.instruments.Refresh()
	s.logger.Info("instrument cache refresh requested")
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "instrument cache cleared"})
}

func (s *Server) handleStats(c *gin.Context) {
	s.statsMu.Lock()
	snapshot := make(map[string]int64, len(s.stats))
	for status, count := range s.stats {
		snapshot[string(status)] = count
	}
	s.statsMu.Unlock()

	c.JSON(http.StatusOK, gin.H{"signals": snapshot})
}
