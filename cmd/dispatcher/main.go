package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snow-ghost/listroutines/dispatch"
	"github.com/snow-ghost/listroutines/enumerator"
	"github.com/snow-ghost/listroutines/generator"
	"github.com/snow-ghost/listroutines/pkg/config"
	"github.com/snow-ghost/listroutines/pkg/logging"
	"github.com/snow-ghost/listroutines/pkg/metrics"
	"github.com/snow-ghost/listroutines/pkg/tracing"
	"github.com/snow-ghost/listroutines/registry"
	"github.com/snow-ghost/listroutines/registry/builtins"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(logging.Config{
		Level:     cfg.LogLevel,
		Format:    "json",
		Output:    "stderr",
		AddCaller: false,
	})
	if err != nil {
		log.Fatalf("dispatcher: init logger: %v", err)
	}
	defer logger.Sync()
	slog.SetDefault(logger.GetSlog())

	fsys := os.DirFS(cfg.RoutinesDir)
	reg, warnings, err := registry.LoadFS(fsys, builtins.Table())
	if err != nil {
		log.Fatalf("dispatcher: load registry: %v", err)
	}
	for _, w := range warnings {
		logger.Warn("registry warning", "detail", w)
	}
	logger.Info("registry loaded", "subroutines", len(reg.Names()))

	promMetrics := metrics.NewPrometheusMetrics()

	var tracer *tracing.Tracer
	if cfg.JaegerEndpoint != "" {
		tracer, err = tracing.NewTracer(tracing.Config{
			ServiceName:    "listroutines-dispatcher",
			ServiceVersion: "dev",
			JaegerEndpoint: cfg.JaegerEndpoint,
			Environment:    "local",
		})
		if err != nil {
			logger.Warn("tracing disabled: failed to init", "error", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()

	rng := rand.New(rand.NewSource(cfg.EnumerateSeed))

	d := &dispatch.Dispatcher{
		Registry:              reg,
		Generator:             generator.New(reg, cfg.GeneratorRetries),
		Enumerator:            enumerator.New(reg, rng),
		Logger:                logger,
		Metrics:               promMetrics,
		Tracer:                tracer,
		Rand:                  rng,
		DefaultEnumerateBound: cfg.EnumerateBound,
	}

	logger.Info("dispatcher ready", "metrics_addr", cfg.MetricsAddr)
	if err := d.Run(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Fatalf("dispatcher: request loop: %v", err)
	}
}
