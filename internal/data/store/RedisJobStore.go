package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/data/redisStore"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Key layout:
//
//	ingest_job:<id>  JSON Job, expires after RedisJobStoreTTL
//	ingest_jobs      sorted set of ids scored by creation time
const (
	jobKeyPrefix = "ingest_job:"
	jobIndexKey  = "ingest_jobs"
)

func jobKey(id string) string { return jobKeyPrefix + id }

type RedisJobStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		ttl:    config.RedisJobStoreTTL,
		logger: logger_i.NewLogger("JobStore"),
	}
}

// SaveJob writes the job and refreshes its expiry. Index entries older than
// the TTL are pruned in the same transaction.
func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.Id, err)
	}
	cutoff := time.Now().Add(-s.ttl).UnixMicro()

	err = s.store.Tx(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jobKey(job.Id), data, s.ttl)
		pipe.ZAdd(ctx, jobIndexKey, redis.Z{Score: float64(job.CreatedTime.UnixMicro()), Member: job.Id})
		pipe.ZRemRangeByScore(ctx, jobIndexKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.Id, err)
	}
	s.logger.FromContext(ctx).Debug("Saved job", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, error) {
	var job jobModel.Job
	val, err := s.store.Get(ctx, jobKey(jobId))
	if s.store.IsNil(err) {
		return job, appErrors.NotFound("job %s", jobId)
	} else if err != nil {
		return job, fmt.Errorf("get job %s: %w", jobId, err)
	}
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return job, fmt.Errorf("decode job %s: %w", jobId, err)
	}
	return job, nil
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobId string) error {
	err := s.store.Tx(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, jobKey(jobId))
		pipe.ZRem(ctx, jobIndexKey, jobId)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete job %s: %w", jobId, err)
	}
	return nil
}

func (s *RedisJobStore) ListJobs(ctx context.Context, limit int) ([]jobModel.Job, error) {
	if limit <= 0 {
		return []jobModel.Job{}, nil
	}
	ids, err := s.store.SortedNewest(ctx, jobIndexKey, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
	}
	values, err := s.store.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]jobModel.Job, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// expired, the index entry is pruned on a later save
			continue
		}
		var job jobModel.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("decode job %s: %w", ids[i], err)
		}
		out = append(out, job)
	}
	return out, nil
}
