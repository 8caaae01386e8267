package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/pior/arith"
	"github.com/pior/arith/internal/config"
	"github.com/pior/arith/internal/logging"
)

func main() {
	fs := pflag.NewFlagSet("arith-server", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "Path to a YAML config file")
	addr := fs.StringP("addr", "a", "", "TCP address to listen on (default :1234)")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus metrics (disabled if empty)")
	readTimeout := fs.Duration("read-timeout", 0, "Max wait for each request line (0 = no limit)")
	maxSessions := fs.Int32("max-sessions", 0, "Max concurrent sessions")
	rps := fs.Float64("rps", 0, "Per-session request rate limit (0 = unlimited)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: text or json")
	fs.Parse(os.Args[1:])

	cfg := config.DefaultServer()
	if err := config.LoadServer(*configPath, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags set on the command line win over file and environment
	if fs.Changed("addr") {
		cfg.Addr = *addr
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = *metricsAddr
	}
	if fs.Changed("read-timeout") {
		cfg.ReadTimeout = *readTimeout
	}
	if fs.Changed("max-sessions") {
		cfg.MaxSessions = *maxSessions
	}
	if fs.Changed("rps") {
		cfg.RequestsPerSecond = *rps
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = *logFormat
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("arith-server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, logger *slog.Logger) error {
	server, err := arith.NewServer(arith.ServerConfig{
		Addr:              cfg.Addr,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		MaxSessions:       cfg.MaxSessions,
		RequestsPerSecond: cfg.RequestsPerSecond,
		RequestBurst:      cfg.RequestBurst,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})

	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			arith.NewMetricsCollector(server),
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		httpServer := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("arith: serving metrics", "addr", cfg.MetricsAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("arith: stopped", "stats", server.Stats())
	return err
}
