package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/app"
	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/reports"
	"github.com/warungpos/warungpos/internal/transactions"
	"github.com/warungpos/warungpos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	transactionsRepo := transactions.NewRepository(pool)
	transactionsService := transactions.NewService(transactionsRepo, nil, nil, logger)
	receiptJob := jobs.NewReceiptEmailJob(transactionsService, logger)

	reportsRepo := reports.NewRepository(pool)
	recapJob := jobs.NewSalesRecapJob(reportsRepo, logger)

	recapTask, err := jobs.NewSalesRecapTask(jobs.SalesRecapPayload{})
	if err != nil {
		logger.Error("build recap task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeReceiptEmail, Handler: receiptJob.Handle},
			{Type: jobs.TaskTypeSalesRecap, Handler: recapJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: recapTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
