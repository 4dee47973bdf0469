package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/veritrack/veritrack/internal/app"
	"github.com/veritrack/veritrack/internal/appeal"
	"github.com/veritrack/veritrack/internal/auth"
	"github.com/veritrack/veritrack/internal/observability"
	"github.com/veritrack/veritrack/internal/shared"
	"github.com/veritrack/veritrack/internal/verification"
	verificationhttp "github.com/veritrack/veritrack/internal/verification/http"
	"github.com/veritrack/veritrack/internal/view"
	"github.com/veritrack/veritrack/jobs"
	"github.com/veritrack/veritrack/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "veritrack_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	location := cfg.Location()

	authRepo := auth.NewPGRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	verificationRepo := verification.NewRepository(dbpool)
	verificationCache := verification.NewCache(redisClient, time.Minute)
	verificationService := verification.NewService(verificationRepo, verificationCache)
	verificationHandler := verificationhttp.NewHandler(logger, verificationService, templates, location, cfg.DefaultCompanyID)

	appealRepo := appeal.NewRepository(dbpool)
	appealService := appeal.NewService(appealRepo)
	appealHandler := appeal.NewHandler(logger, appealService, templates, location, cfg.DefaultCompanyID)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	reportClient := report.NewClient(cfg.GotenbergURL)
	enqueueReport := func(ctx context.Context, companyID int64, reportType string, filters map[string]string) (string, error) {
		return jobClient.EnqueueReportBuild(ctx, jobs.ReportBuildPayload{
			CompanyID:  companyID,
			ReportType: reportType,
			Filters:    filters,
		})
	}
	reportHandler := report.NewHandler(logger, reportClient, verificationService, enqueueReport, cfg.DefaultCompanyID)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Templates:           templates,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		VerificationHandler: verificationHandler,
		AppealHandler:       appealHandler,
		ReportHandler:       reportHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
