// Package http provides the HTTP API for habitlens.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/logging"
	"github.com/fyrsmithlabs/habitlens/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HealthChecker reports telemetry health for GET /health.
type HealthChecker interface {
	Health() telemetry.HealthStatus
}

// Server provides HTTP endpoints for habitlens.
type Server struct {
	echo    *echo.Echo
	svc     *analysis.Service
	health  HealthChecker
	logger  *logging.Logger
	config  *Config
	metrics *HTTPMetrics
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64
	RateBurst int
	// MaxBatch caps the subjects in one batch request.
	MaxBatch  int
	BodyLimit string
	Version   string
}

// NewDefaultConfig returns the configuration used when none is given.
func NewDefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      9090,
		RateLimit: 20,
		RateBurst: 40,
		MaxBatch:  500,
		BodyLimit: "8M",
	}
}

// NewServer creates a new HTTP server. health may be nil.
func NewServer(svc *analysis.Service, health HealthChecker, logger *logging.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, errors.New("analysis service cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = NewDefaultConfig().MaxBatch
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = NewDefaultConfig().BodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		svc:     svc,
		health:  health,
		logger:  logger,
		config:  cfg,
		metrics: NewHTTPMetrics(logger),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.metrics.MetricsMiddleware())
	e.Use(s.requestContext)
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	s.registerRoutes()

	return s, nil
}

// requestContext carries the request ID into the request context and logs
// each request.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		ctx := req.Context()
		if id := c.Response().Header().Get(echo.HeaderXRequestID); logging.ValidID(id) {
			ctx = logging.WithRequestID(ctx, id)
			c.SetRequest(req.WithContext(ctx))
		}

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.logger.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/analyze/batch", s.handleBatch)
	v1.POST("/prompts", s.handlePrompts)
}

// handleHealth reports liveness plus telemetry state.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.config.Version,
	}
	for _, v := range s.svc.Engine().Lexicon().Vocabularies() {
		resp.Vocabulary = append(resp.Vocabulary, VocabularyStatus{
			Name: v.Name, Version: v.Version, Keywords: len(v.Keywords),
		})
	}
	if s.health != nil {
		th := s.health.Health()
		resp.Telemetry = &th
		if th.Degraded {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleAnalyze analyzes one document.
func (s *Server) handleAnalyze(c echo.Context) error {
	var doc insight.Document
	if err := c.Bind(&doc); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid analyze request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.svc.Analyze(c.Request().Context(), doc)
	if err != nil {
		return s.analysisError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleBatch analyzes each subject of a batch independently.
func (s *Server) handleBatch(c echo.Context) error {
	var batch insight.Batch
	if err := c.Bind(&batch); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid batch request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(batch.Subjects) > s.config.MaxBatch {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d subjects exceeds limit of %d", len(batch.Subjects), s.config.MaxBatch))
	}

	results, err := s.svc.AnalyzeBatch(c.Request().Context(), batch.Subjects)
	if err != nil {
		return s.analysisError(c, err)
	}
	return c.JSON(http.StatusOK, BatchResponse{Results: results})
}

// handlePrompts returns only the conversational prompts for a document.
func (s *Server) handlePrompts(c echo.Context) error {
	var doc insight.Document
	if err := c.Bind(&doc); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid prompts request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.svc.Analyze(c.Request().Context(), doc)
	if err != nil {
		return s.analysisError(c, err)
	}
	return c.JSON(http.StatusOK, PromptsResponse{ID: res.ID, UserID: res.UserID, Prompts: res.Prompts})
}

func (s *Server) analysisError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, analysis.ErrEmptyBatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "analysis cancelled")
	}
	s.logger.Error(c.Request().Context(), "analysis failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", s.Addr()))
	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
