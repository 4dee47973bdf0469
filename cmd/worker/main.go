package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/veritrack/veritrack/internal/app"
	"github.com/veritrack/veritrack/jobs"
	"github.com/veritrack/veritrack/report"
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

	gotenberg := report.NewClient(cfg.GotenbergURL)
	reportJob := jobs.NewReportBuildJob(cfg.APIBaseURL, cfg.ReportOutputDir, gotenberg, logger, nil)
	warmupJob := jobs.NewCacheWarmupJob(cfg.APIBaseURL, logger, nil)

	warmupTask, err := jobs.NewCacheWarmupTask(jobs.CacheWarmupPayload{CompanyID: cfg.DefaultCompanyID})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeReportBuild, Handler: reportJob.Handle},
			{Type: jobs.TaskTypeCacheWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
