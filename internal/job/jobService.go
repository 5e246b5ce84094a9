package job

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/google/uuid"
)

// Runner executes one ingestion request. *ingest.Ingestor satisfies it.
type Runner interface {
	Run(ctx context.Context, req commonModels.IngestRequest) (commonModels.IngestSummary, error)
}

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	if cfg.JobChannel == nil {
		cfg.JobChannel = make(chan jobModel.Job, config.BufferLimit)
	}
	if cfg.DispatcherChannel == nil {
		cfg.DispatcherChannel = make(chan bool, config.MaxWorkerCount)
	}
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records a QUEUED job and hands it to the worker pool. The send
// blocks while the queue is full so a burst of requests cannot pile up.
func (s *Service) Enqueue(ctx context.Context, req commonModels.IngestRequest) (jobModel.Job, error) {
	if strings.TrimSpace(req.DocsPath) == "" {
		return jobModel.Job{}, appErrors.Validation("docs path is required")
	}

	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	j := jobModel.Job{
		Id:          uuid.NewString(),
		TraceId:     traceId,
		Request:     req,
		CreatedTime: time.Now().UTC(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}
	log := s.logger.FromContext(ctx).With("jobId", j.Id)

	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		return jobModel.Job{}, err
	}

	select {
	case s.JobChannel <- j:
	case <-ctx.Done():
		if err := s.JobStore.DeleteJob(context.WithoutCancel(ctx), j.Id); err != nil {
			log.Error("Could not remove unqueued job", "err", err)
		}
		return jobModel.Job{}, ctx.Err()
	}
	metrics.IncrementJobsInQueue()
	log.Info("Queued ingestion job", "docsPath", req.DocsPath, "clear", req.ClearExisting)

	// ingestion is long-running, so every job asks for another worker; the
	// dispatcher caps the pool and idle workers retire on their own
	count := atomic.AddInt64(&s.RequestCount, 1)
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
		log.Debug("Signalled dispatcher", "requestCount", count)
	default:
	}
	return j, nil
}

func (s *Service) Get(ctx context.Context, id string) (jobModel.Job, error) {
	if id == "" {
		return jobModel.Job{}, appErrors.Validation("job id is required")
	}
	return s.JobStore.GetJob(ctx, id)
}

// List returns the most recent jobs, newest first. limit <= 0 uses the
// default listing size.
func (s *Service) List(ctx context.Context, limit int) ([]jobModel.Job, error) {
	if limit <= 0 {
		limit = config.DefaultJobListLimit
	}
	return s.JobStore.ListJobs(ctx, limit)
}
