package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReportBuild builds a CSV/PDF export of the filtered entry list.
	TaskTypeReportBuild = "report:build"
	// TaskTypeCacheWarmup pre-populates the list cache for a company.
	TaskTypeCacheWarmup = "cache:warmup"
)

// ReportBuildPayload describes one report export request.
type ReportBuildPayload struct {
	JobID      string            `json:"job_id"`
	CompanyID  int64             `json:"company_id"`
	ReportType string            `json:"report_type"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// NewReportBuildTask constructs an Asynq task, assigning a job id when
// the caller did not.
func NewReportBuildTask(payload ReportBuildPayload) (*asynq.Task, error) {
	if payload.JobID == "" {
		payload.JobID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportBuild, data), nil
}

// CacheWarmupPayload selects the company whose first list page is warmed.
type CacheWarmupPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewCacheWarmupTask constructs an Asynq task.
func NewCacheWarmupTask(payload CacheWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCacheWarmup, data), nil
}
