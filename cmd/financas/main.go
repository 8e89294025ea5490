package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cli"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/services"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	store, closeStore, err := cli.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", log.NewFields().WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		os.Exit(1)
	}
	defer closeStore()

	views, closeViews, err := cli.OpenViewCache(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open view cache", log.NewFields().WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		os.Exit(1)
	}
	defer closeViews()

	issuer, err := cli.NewIssuer(cfg)
	if err != nil {
		logger.Error("Failed to create token issuer", log.NewFields().WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}

	// Events are optional: without a broker, writes only invalidate the
	// local cache.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.NewFields().WithError(err, log.ErrorTypeNetwork).ToSlice()...)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled, transaction events are not published")
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Accounts: services.NewAccountService(store, issuer),
		Ledger:   services.NewLedgerService(store, views, events),
		Reports:  services.NewReportService(store, cli.NewEngine(cfg), views),
		Issuer:   issuer,
		Store:    store,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financas server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.NewFields().WithError(err, log.ErrorTypeInternal).ToSlice()...)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
