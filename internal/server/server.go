// Package server exposes the diagnoser over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/logdoctor/logdoctor-go/internal/ingest"
	"github.com/logdoctor/logdoctor-go/internal/metrics"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for logdoctor.
type Server struct {
	echo      *echo.Echo
	diagnoser *logdoctor.Diagnoser
	reader    *ingest.Reader
	logger    *slog.Logger
	config    *Config
	metrics   *metrics.Observer
	gatherer  prometheus.Gatherer
}

// Config holds HTTP server configuration.
type Config struct {
	Addr        string
	BodyLimit   int64
	ReadTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics counts rejected inputs on obs and serves g on GET /metrics.
func WithMetrics(obs *metrics.Observer, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = obs
		s.gatherer = g
	}
}

// NewServer creates a new HTTP server.
func NewServer(d *logdoctor.Diagnoser, r *ingest.Reader, logger *slog.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if d == nil {
		return nil, fmt.Errorf("diagnoser cannot be nil")
	}
	if r == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Addr: "127.0.0.1:8080"}
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 4 << 20
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.BodyLimit, 10)))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http request",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().RequestURI),
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	})

	s := &Server{
		echo:      e,
		diagnoser: d,
		reader:    r,
		logger:    logger,
		config:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")
	v1.POST("/diagnose", s.handleDiagnose)
	v1.GET("/rules", s.handleRules)
}

// DiagnoseRequest is the JSON request body for POST /api/v1/diagnose.
type DiagnoseRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// RuleInfo is one entry of GET /api/v1/rules.
type RuleInfo struct {
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleRules(c echo.Context) error {
	rules := s.diagnoser.Rules()
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		info := RuleInfo{Name: r.Name()}
		if sum, ok := r.(check.Summarizer); ok {
			info.Summary = sum.Summary()
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

// handleDiagnose accepts either a JSON DiagnoseRequest or the raw log as the
// body. Raw bodies may be gzip compressed and take their name from ?name=.
func (s *Server) handleDiagnose(c echo.Context) error {
	var (
		src ingest.Source
		err error
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req DiagnoseRequest
		if err := c.Bind(&req); err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
				return he
			}
			s.logger.Warn("invalid diagnose request", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Content == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "content field is required")
		}
		if req.Name == "" {
			req.Name = "request"
		}
		src, err = s.reader.Text(req.Name, req.Content)
	} else {
		name := c.QueryParam("name")
		if name == "" {
			name = "request.log"
		}
		src, err = s.reader.Read(name, c.Request().Body)
	}
	if err != nil {
		return s.ingestError(err)
	}
	if src.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "log is empty")
	}

	env := logdoctor.NewEnvironment(src.Text)
	reports := s.diagnoser.Diagnose(src.Text, env)

	s.logger.Debug("diagnosed request",
		slog.String("source", src.Name),
		slog.String("digest", src.Digest),
		slog.Int("reports", len(reports)),
	)

	return c.JSON(http.StatusOK, logdoctor.NewResult(src.Name, src.Digest, env, reports))
}

func (s *Server) ingestError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	reason := ingest.Reason(err)
	if s.metrics != nil {
		s.metrics.ObserveIngestError(reason)
	}
	s.logger.Warn("rejected input", slog.String("reason", reason), slog.Any("error", err))

	switch reason {
	case "too_large":
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case "not_text":
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting http server", slog.String("addr", s.config.Addr))
	return s.echo.Start(s.config.Addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
