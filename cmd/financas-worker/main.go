package main

import (
	"os"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/log"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	views, closeViews, err := cli.OpenViewCache(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open view cache", log.NewFields().WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		os.Exit(1)
	}
	defer closeViews()
	if cfg.RedisURL == "" {
		logger.Warn("No REDIS_URL set, the worker invalidates its own cache only")
	}

	mirror, err := cli.OpenMirror(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", log.NewFields().WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}
	if mirror != nil {
		logger.Info("Mirroring transactions to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.NewFields().WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("Starting financas-worker", "queue", cfg.AMQPQueue)
	if err := worker.NewSyncWorker(views, mirror).Run(ctx, client, cfg.WorkerStatsInterval); err != nil {
		logger.Error("Worker failed", log.NewFields().WithError(err, log.ErrorTypeInternal).ToSlice()...)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
