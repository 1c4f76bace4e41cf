package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/config"
	"github.com/aluiziolira/go-stock-locator/directory"
	"github.com/aluiziolira/go-stock-locator/orchestrator"
	"github.com/aluiziolira/go-stock-locator/product"
	"github.com/aluiziolira/go-stock-locator/render"
	"github.com/aluiziolira/go-stock-locator/scraper"
	"github.com/aluiziolira/go-stock-locator/stock"
)

type app struct {
	metrics      *scraper.Metrics
	orchestrator *orchestrator.Orchestrator
}

func newApp(c *config.Config, cmd *cobra.Command) (*app, error) {
	metrics := scraper.NewMetrics()
	fetcher := scraper.NewFetcher(c.HTTP, metrics)

	renderer := render.NewChromeRenderer(c.Render, c.HTTP.UserAgent, metrics)
	resolver, err := product.NewResolver(renderer, c.Product.CacheSize)
	if err != nil {
		return nil, err
	}

	dir := directory.New(c.Directory, fetcher, c.Cache.Path, metrics)
	stockClient := stock.NewClient(c.Stock.BaseURL, fetcher, metrics)

	return &app{
		metrics:      metrics,
		orchestrator: orchestrator.New(resolver, dir, stockClient, cmd.InOrStdin(), cmd.OutOrStdout()),
	}, nil
}

// withApp builds the app, serves metrics when configured and runs fn under a
// signal-aware context.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cfg, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	if srv := startMetricsServer(cfg.Metrics.Addr, a.metrics); srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	return fn(a)
}

func startMetricsServer(addr string, metrics *scraper.Metrics) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("metrics server failed", zap.Error(err))
		}
	}()
	zap.L().Info("metrics server enabled", zap.String("addr", addr))
	return srv
}
