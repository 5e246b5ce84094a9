package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/BookRAG/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"

	IngestInit       InternalStatus = "IngestInit"
	IngestClearing   InternalStatus = "IngestClearing"
	IngestProcessing InternalStatus = "IngestProcessing"
	Complete         InternalStatus = "Complete"
)

// Job is an asynchronous corpus ingestion request.
type Job struct {
	Id          string                      `json:"id"`
	TraceId     string                      `json:"trace_id"`
	Request     commonModels.IngestRequest  `json:"request"`
	Summary     *commonModels.IngestSummary `json:"summary,omitempty"`
	Error       JobError                    `json:"error,omitempty"`
	CreatedTime time.Time                   `json:"created_time"`
	EndTime     time.Time                   `json:"end_time,omitempty"`
	Status      JobStatus                   `json:"status"`
	CurrentStep InternalStatus              `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobStore keeps job state for status polling. Saving an existing id
// replaces it.
type JobStore interface {
	SaveJob(ctx context.Context, job Job) error
	// GetJob returns appErrors.NotFound for unknown or expired ids.
	GetJob(ctx context.Context, jobId string) (Job, error)
	DeleteJob(ctx context.Context, jobId string) error
	// ListJobs returns up to limit jobs, newest first.
	ListJobs(ctx context.Context, limit int) ([]Job, error)
}
