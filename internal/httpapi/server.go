// Package httpapi provides the HTTP API for linkd's serve mode.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/config"
	"github.com/fyrsmithlabs/linkd/internal/contract"
	"github.com/fyrsmithlabs/linkd/internal/extraction"
	"github.com/fyrsmithlabs/linkd/internal/linkage"
	"github.com/fyrsmithlabs/linkd/internal/report"
)

// Server exposes the discovered contract set and on-demand invoice
// classification over HTTP.
type Server struct {
	echo      *echo.Echo
	extractor *extraction.InvoiceExtractor
	logger    *zap.Logger
	config    config.ServerConfig

	mu        sync.RWMutex
	discovery *report.Discovery
	detector  *linkage.Detector
}

// NewServer creates the HTTP server. The contract set starts empty;
// call SetDiscovery once discovery has run.
func NewServer(cfg config.ServerConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	if cfg.RateLimit > 0 {
		e.Use(RateLimitMiddleware(cfg.RateLimit, cfg.Burst, logger))
	}

	s := &Server{
		echo:      e,
		extractor: extraction.NewInvoiceExtractor(),
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	return s, nil
}

// SetDiscovery swaps in a freshly discovered contract set. The detector
// is rebuilt so subsequent link requests classify against the new set.
func (s *Server) SetDiscovery(disc *report.Discovery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovery = disc
	s.detector = linkage.NewDetector(disc.Contracts, s.logger.Named("linkage"))

	s.logger.Info("contract set updated",
		zap.String("run_id", disc.RunID),
		zap.Int("contracts", len(disc.Contracts)),
	)
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/contracts", s.handleContracts)
	v1.POST("/link", s.handleLink)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Contracts int    `json:"contracts"`
}

// ContractsResponse is the response body for GET /api/v1/contracts.
type ContractsResponse struct {
	RunID     string               `json:"run_id"`
	Contracts []*contract.Contract `json:"contracts"`
}

// LinkRequest is the request body for POST /api/v1/link. Exactly one of
// Text and Fields must be set: raw invoice text goes through field
// extraction first, a pre-extracted field bag is classified as-is.
type LinkRequest struct {
	Text   string                    `json:"text,omitempty"`
	Fields *extraction.InvoiceFields `json:"fields,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	s.mu.RLock()
	n := 0
	if s.discovery != nil {
		n = len(s.discovery.Contracts)
	}
	s.mu.RUnlock()

	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Contracts: n})
}

func (s *Server) handleContracts(c echo.Context) error {
	s.mu.RLock()
	disc := s.discovery
	s.mu.RUnlock()

	if disc == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "contract discovery has not completed")
	}

	return c.JSON(http.StatusOK, ContractsResponse{
		RunID:     disc.RunID,
		Contracts: disc.Contracts,
	})
}

func (s *Server) handleLink(c echo.Context) error {
	var req LinkRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid link request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" && req.Fields == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "either text or fields is required")
	}
	if req.Text != "" && req.Fields != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "text and fields are mutually exclusive")
	}

	s.mu.RLock()
	detector := s.detector
	s.mu.RUnlock()

	if detector == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "contract discovery has not completed")
	}

	fields := extraction.InvoiceFields{}
	if req.Fields != nil {
		fields = *req.Fields
		if fields.Currency == "" {
			fields.Currency = extraction.DefaultCurrency
		}
	} else {
		fields = s.extractor.Extract(req.Text)
	}

	result := detector.Detect(fields)
	return c.JSON(http.StatusOK, result)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
