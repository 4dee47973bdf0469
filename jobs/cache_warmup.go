package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/veritrack/veritrack/internal/apiclient"
	jobmetrics "github.com/veritrack/veritrack/internal/jobs"
	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/verification"
)

// CacheWarmupJob requests the first unfiltered page of each list so the
// Redis cache is hot before the morning shift opens the app.
type CacheWarmupJob struct {
	APIBaseURL string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics

	newClient func(baseURL string, companyID int64) listPager
}

type listPager interface {
	ListEntries(ctx context.Context, filters listview.FilterSet, page, limit int) (verification.ListResult, error)
}

// NewCacheWarmupJob wires dependencies for the warmup handler.
func NewCacheWarmupJob(apiBaseURL string, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheWarmupJob {
	return &CacheWarmupJob{
		APIBaseURL: apiBaseURL,
		Logger:     logger,
		Metrics:    metrics,
		newClient: func(baseURL string, companyID int64) listPager {
			return apiclient.NewClient(baseURL, companyID)
		},
	}
}

// Handle processes cache warmup tasks.
func (j *CacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cache warmup: handler not configured")
	}
	var payload CacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CompanyID < 1 {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeCacheWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	client := j.newClient(j.APIBaseURL, payload.CompanyID)
	result, err := client.ListEntries(warmCtx, nil, listview.DefaultPage, listview.DefaultLimit)
	if err != nil {
		resultErr = err
		j.logger().Error("warm entry list", slog.Int64("company_id", payload.CompanyID), slog.Any("error", err))
		return resultErr
	}

	j.logger().Info("completed cache warmup",
		slog.Int64("company_id", payload.CompanyID),
		slog.Int("entries", len(result.Items)),
		slog.Int("total", result.TotalEntries))
	return resultErr
}

func (j *CacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeCacheWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTypeCacheWarmup))
}

func (j *CacheWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
