package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/parliyanto/Cash-Tracker/internal/amqp"
	"github.com/parliyanto/Cash-Tracker/internal/cli"
	"github.com/parliyanto/Cash-Tracker/internal/export"
	"github.com/parliyanto/Cash-Tracker/internal/log"
	"github.com/parliyanto/Cash-Tracker/internal/storage"
	"github.com/parliyanto/Cash-Tracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting cashtracker-worker")

	db := cli.OpenDatabase(logger, cfg.SQLiteDBPath)
	defer db.Close()

	transactionRepo := storage.NewTransactionRepository(db)
	snapshotter := export.NewSnapshotter(transactionRepo, cfg.ExportDir)
	exportWorker := worker.NewExportWorker(snapshotter)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Rebuild every snapshot before consuming, to cover events missed while
	// the worker was down.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot check failed", "error", err)
		// Keep going - the scheduled run will retry.
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeLedgerEvents(gctx, exportWorker.HandleLedgerEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled - running scheduled snapshots only")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SnapshotSchedule, func() {
		exportWorker.ScheduledSnapshot(gctx)
	}); err != nil {
		logger.Error("Invalid snapshot schedule", "error", err, "schedule", cfg.SnapshotSchedule)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Snapshot schedule active", "schedule", cfg.SnapshotSchedule)

	g.Go(func() error {
		<-gctx.Done()
		stopCtx := scheduler.Stop()
		// Let an in-flight scheduled snapshot finish.
		<-stopCtx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
