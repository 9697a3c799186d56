// Command server runs the ledgergate financial-data query gateway.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/drewjst/ledgergate/internal/api"
	"github.com/drewjst/ledgergate/internal/cache"
	"github.com/drewjst/ledgergate/internal/config"
	"github.com/drewjst/ledgergate/internal/coordinator"
	"github.com/drewjst/ledgergate/internal/equity"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/lookup"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := erp.NewClient(erp.Config{
		AccountID:         cfg.AccountID,
		ConsumerKey:       cfg.ConsumerKey,
		ConsumerSecret:    cfg.ConsumerSecret,
		TokenID:           cfg.TokenID,
		TokenSecret:       cfg.TokenSecret,
		BaseURL:           cfg.BaseURL,
		MaxPageRows:       cfg.MaxPageRows,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	builder := sqlbuilder.New()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	book := lookup.Bootstrap(bootstrapCtx, client, builder)
	bootstrapCancel()
	slog.Info("lookup bootstrap complete",
		"subsidiaries", len(book.Subsidiaries()),
		"consolidation_root", book.ConsolidationRoot(),
	)

	balanceCache := cache.New(cache.DefaultTTL)
	coalescer := cache.NewCoalescer()

	coord := coordinator.New(client, builder, balanceCache, coalescer, book)
	equityEngine := equity.New(client, builder, balanceCache, coalescer, book)

	handler := api.NewHandler(coord, equityEngine, client, builder, book, balanceCache, coalescer, cfg.AccountID)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	return gracefulShutdown(srv)
}

func gracefulShutdown(srv *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}
