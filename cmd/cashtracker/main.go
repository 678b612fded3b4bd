package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parliyanto/Cash-Tracker/internal/amqp"
	"github.com/parliyanto/Cash-Tracker/internal/auth"
	"github.com/parliyanto/Cash-Tracker/internal/cli"
	apphttp "github.com/parliyanto/Cash-Tracker/internal/http"
	"github.com/parliyanto/Cash-Tracker/internal/log"
	"github.com/parliyanto/Cash-Tracker/internal/services"
	"github.com/parliyanto/Cash-Tracker/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	db := cli.OpenDatabase(logger, cfg.SQLiteDBPath)
	defer db.Close()

	transactionRepo := storage.NewTransactionRepository(db)
	settingsRepo := storage.NewSettingsRepository(db)
	userRepo := storage.NewUserRepository(db)

	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)
	authSvc := auth.NewService(userRepo, tokens)

	// The event pipeline is optional; without a broker mutations still work,
	// only the CSV exports stop updating between scheduled runs.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP event pipeline enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	transactionSvc := services.NewTransactionService(transactionRepo, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, transactionSvc, settingsRepo, authSvc, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting cashtracker server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
