package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/veritrack/veritrack/internal/apiclient"
	jobmetrics "github.com/veritrack/veritrack/internal/jobs"
	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/verification"
	"github.com/veritrack/veritrack/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportBuildJob exports the filtered verification list to files on
// disk, fetching entries through the JSON API so the worker never needs
// a database connection.
type ReportBuildJob struct {
	APIBaseURL string
	OutputDir  string
	Gotenberg  *report.Client
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics

	newClient func(baseURL string, companyID int64) entryPager
}

type entryPager interface {
	ListEntries(ctx context.Context, filters listview.FilterSet, page, limit int) (verification.ListResult, error)
}

// NewReportBuildJob wires dependencies for the report export handler.
func NewReportBuildJob(apiBaseURL, outputDir string, gotenberg *report.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportBuildJob {
	return &ReportBuildJob{
		APIBaseURL: apiBaseURL,
		OutputDir:  outputDir,
		Gotenberg:  gotenberg,
		Logger:     logger,
		Metrics:    metrics,
		newClient: func(baseURL string, companyID int64) entryPager {
			return apiclient.NewClient(baseURL, companyID)
		},
	}
}

// Handle processes report build tasks.
func (j *ReportBuildJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("report build: handler not configured")
	}
	var payload ReportBuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CompanyID < 1 || payload.JobID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeReportBuild)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("job_id", payload.JobID), slog.Int64("company_id", payload.CompanyID))
	logger.Info("starting report build", slog.String("report_type", payload.ReportType))

	entries, err := j.fetchAll(ctx, payload)
	if err != nil {
		resultErr = err
		logger.Error("fetch entries", slog.Any("error", err))
		return resultErr
	}

	if resultErr = j.writeOutputs(ctx, payload, entries); resultErr != nil {
		logger.Error("write report files", slog.Any("error", resultErr))
		return resultErr
	}

	j.metrics().AddExportedEntries(payload.ReportType, payload.CompanyID, len(entries))
	logger.Info("completed report build", slog.Int("entries", len(entries)))
	return resultErr
}

func (j *ReportBuildJob) fetchAll(ctx context.Context, payload ReportBuildPayload) ([]verification.Entry, error) {
	client := j.newClient(j.APIBaseURL, payload.CompanyID)
	filters := listview.FilterSet{}
	for key, value := range payload.Filters {
		filters = filters.With(key, value)
	}

	var entries []verification.Entry
	for page := 1; ; page++ {
		pageCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		result, err := client.ListEntries(pageCtx, filters, page, 100)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		entries = append(entries, result.Items...)
		if page >= result.TotalPages {
			break
		}
	}
	return entries, nil
}

// writeOutputs renders the requested formats concurrently. "both" is
// accepted so one task can produce the CSV and the PDF in a single pass
// over the API.
func (j *ReportBuildJob) writeOutputs(ctx context.Context, payload ReportBuildPayload, entries []verification.Entry) error {
	if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
		return err
	}

	wantCSV := payload.ReportType == "csv" || payload.ReportType == "both" || payload.ReportType == ""
	wantPDF := payload.ReportType == "pdf" || payload.ReportType == "both"

	g, gctx := errgroup.WithContext(ctx)
	if wantCSV {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := report.WriteEntriesCSV(&buf, entries); err != nil {
				return err
			}
			return os.WriteFile(j.outputPath(payload.JobID, "csv"), buf.Bytes(), 0o644)
		})
	}
	if wantPDF {
		g.Go(func() error {
			if j.Gotenberg == nil {
				return errors.New("report build: gotenberg client not configured")
			}
			html, err := report.EntriesHTML(entries, time.Now())
			if err != nil {
				return err
			}
			pdf, err := j.Gotenberg.RenderHTML(gctx, html)
			if err != nil {
				return err
			}
			return os.WriteFile(j.outputPath(payload.JobID, "pdf"), pdf, 0o644)
		})
	}
	return g.Wait()
}

func (j *ReportBuildJob) outputPath(jobID, ext string) string {
	return filepath.Join(j.OutputDir, jobID+"."+ext)
}

func (j *ReportBuildJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeReportBuild))
	}
	return slog.Default().With(slog.String("job", TaskTypeReportBuild))
}

func (j *ReportBuildJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
