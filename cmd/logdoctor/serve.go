package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/logdoctor/logdoctor-go/internal/metrics"
	"github.com/logdoctor/logdoctor-go/internal/server"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	// serve flags
	serveAddr    string
	serveRules   []string
	serveOff     []string
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagnoser over HTTP",
	Long: `Serve the diagnoser over HTTP.

Endpoints:
  GET  /health            liveness check
  GET  /api/v1/rules      effective rule catalogue
  POST /api/v1/diagnose   JSON {"name", "content"} or a raw (optionally gzip) log body
  GET  /metrics           Prometheus metrics

Examples:
  logdoctor serve --addr :8080
  curl --data-binary @latest.log 'localhost:8080/api/v1/diagnose?name=latest.log'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (default server.addr)")
	serveCmd.Flags().StringSliceVarP(&serveRules, "rules", "r", nil,
		"YAML rule files or globs to add to the builtin rules")
	serveCmd.Flags().StringSliceVar(&serveOff, "disable", nil,
		"Rule names to skip (comma-separated)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true,
		"Expose Prometheus metrics on /metrics")

	registerCatalogueCompletions(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		dopts []logdoctor.Option
		sopts []server.Option
	)
	if serveMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		obs := metrics.New(reg)
		dopts = append(dopts, logdoctor.WithObserver(obs))
		sopts = append(sopts, server.WithMetrics(obs, reg))
	}

	opts := catalogueOptions{ruleFiles: serveRules, disabled: serveOff}
	d, err := buildDiagnoser(opts.merged(cfg.Rules), logger, dopts...)
	if err != nil {
		return err
	}
	reader, err := newReader(cfg.Ingest)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv, err := server.NewServer(d, reader, logger, &server.Config{
		Addr:        addr,
		BodyLimit:   cfg.Server.BodyLimit,
		ReadTimeout: cfg.Server.ReadTimeout,
	}, sopts...)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.Any("error", err))
		return err
	}
	return nil
}
