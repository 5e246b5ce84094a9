package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
	"github.com/akolanti/BookRAG/internal/metrics"
)

func (p *Pool) executeJob(j jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureExecutionMetrics(metrics.IngestJob, time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, j.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.jobTimeout)
	defer cancel()
	log := p.logger.FromContext(ctx).With("jobId", j.Id)
	log.Info("Processing ingestion job", "docsPath", j.Request.DocsPath)

	j.Status = jobModel.JobStatusRunning
	j.CurrentStep = jobModel.IngestProcessing
	if j.Request.ClearExisting {
		j.CurrentStep = jobModel.IngestClearing
	}
	p.saveJobState(ctx, j)

	summary, err := p.runner.Run(ctx, j.Request)
	if summary.TotalFiles > 0 || err == nil {
		j.Summary = &summary
	}
	j.EndTime = time.Now().UTC()

	if err != nil {
		log.Error("Ingestion job failed", "err", err)
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{
			Code:    appErrors.StatusCode(err),
			Message: err.Error(),
			Retry:   appErrors.IsUpstream(err) || ctx.Err() != nil,
		}
	} else {
		log.Info("Ingestion job complete", "ingested", summary.Ingested, "failed", summary.Failed)
		j.Status = jobModel.JobStatusComplete
		j.CurrentStep = jobModel.Complete
	}

	// the run context may have expired, the final state must still land
	p.saveJobState(context.WithoutCancel(ctx), j)
}

// removeWorker is called by a worker on its way out. Idle retirement has
// already released its slot in tryRetire.
func (p *Pool) removeWorker(reason string, slotReleased bool) {
	if !slotReleased {
		atomic.AddInt64(&p.currentWorkerCount, -1)
	}
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
	p.workerWaitGroup.Done()
}

func (p *Pool) saveJobState(ctx context.Context, j jobModel.Job) {
	if err := p.jobs.JobStore.SaveJob(ctx, j); err != nil {
		p.logger.FromContext(ctx).Error("Failed to save job state", "jobId", j.Id, "status", j.Status, "err", err)
	}
}
