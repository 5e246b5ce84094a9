package store

import (
	"context"
	"sort"
	"sync"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

// InMemoryJobStore never expires jobs; the process lifetime bounds it.
type InMemoryJobStore struct {
	lock   sync.RWMutex
	jobs   map[string]jobModel.Job
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]jobModel.Job),
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.jobs[job.Id] = job
	store.logger.FromContext(ctx).Debug("Saved job", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(_ context.Context, jobId string) (jobModel.Job, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	job, ok := store.jobs[jobId]
	if !ok {
		return job, appErrors.NotFound("job %s", jobId)
	}
	return job, nil
}

func (store *InMemoryJobStore) DeleteJob(_ context.Context, jobId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	delete(store.jobs, jobId)
	return nil
}

func (store *InMemoryJobStore) ListJobs(_ context.Context, limit int) ([]jobModel.Job, error) {
	if limit <= 0 {
		return []jobModel.Job{}, nil
	}
	store.lock.RLock()
	out := make([]jobModel.Job, 0, len(store.jobs))
	for _, job := range store.jobs {
		out = append(out, job)
	}
	store.lock.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedTime.After(out[j].CreatedTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
