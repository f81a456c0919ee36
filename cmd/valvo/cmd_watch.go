package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yairfalse/valvo/internal/daemon"
	"github.com/yairfalse/valvo/internal/emitter"
	"github.com/yairfalse/valvo/telemetry"
)

var (
	watchInterval     time.Duration
	watchMetricsAddr  string
	watchOTELEndpoint string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously re-evaluate checks and expose compliance metrics",
	Long: `Watch runs evaluation passes on an interval and serves Prometheus
metrics with per-check compliance status. Snapshots are re-read each pass, so
external collectors can refresh them independently.`,
	Example: `  valvo watch                          # Interval and metrics addr from config
  valvo watch --interval 1m            # Override pass interval
  valvo watch --metrics :2112          # Override metrics address`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Evaluation interval (default from config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics", "", "Metrics server address (default from config)")
	watchCmd.Flags().StringVar(&watchOTELEndpoint, "otel-endpoint", "", "OTLP endpoint for traces and metrics")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "valvo",
		ServiceVersion: version,
		OTELEndpoint:   watchOTELEndpoint,
		Insecure:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	s, err := setup(ctx)
	if err != nil {
		return err
	}

	interval := s.cfg.Watch.Interval
	if watchInterval > 0 {
		interval = watchInterval
	}
	metricsAddr := s.cfg.Watch.MetricsAddr
	if watchMetricsAddr != "" {
		metricsAddr = watchMetricsAddr
	}

	emit, err := emitter.NewPrometheusEmitter()
	if err != nil {
		return fmt.Errorf("failed to create emitter: %w", err)
	}
	defer func() { _ = emit.Close() }()

	d := daemon.NewDaemon(daemon.Config{
		Interval:   interval,
		Checks:     s.registry.Checks(),
		Connectors: s.connectors,
		Engine:     s.engine,
		Emitter:    emit,
	})

	log.Info().
		Dur("interval", interval).
		Str("metrics_addr", metricsAddr).
		Int("checks", s.registry.Len()).
		Msg("valvo watch starting")

	var g run.Group

	// Signal handling
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	g.Add(func() error {
		return server.ListenAndServe()
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	// Evaluation loop
	loopCtx, cancelLoop := context.WithCancel(ctx)
	g.Add(func() error {
		return d.Start(loopCtx)
	}, func(error) {
		cancelLoop()
	})

	err = g.Run()
	if _, ok := err.(run.SignalError); ok {
		log.Info().Msg("shutting down")
		return nil
	}
	return err
}
