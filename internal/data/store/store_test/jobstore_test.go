package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/data/redisStore"
	"github.com/akolanti/BookRAG/internal/data/store"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T, db int) (*miniredis.Miniredis, *redisStore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), DB: db})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewWithClient(client, db)
}

// jobsCreated returns jobs a, b, c created one minute apart, oldest first.
func jobsCreated() []jobModel.Job {
	base := time.Now().Add(-time.Hour)
	var out []jobModel.Job
	for i, id := range []string{"a", "b", "c"} {
		out = append(out, jobModel.Job{
			Id:          id,
			Status:      jobModel.JobStatusQueued,
			CreatedTime: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func ids(jobs []jobModel.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Id)
	}
	return out
}

func equalIds(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newRedis(t, config.RedisJobStore)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:          jobID,
		Status:      jobModel.JobStatusRunning,
		CreatedTime: time.Now(),
		Request: commonModels.IngestRequest{
			DocsPath:      "/srv/book/docs",
			ClearExisting: true,
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, err := jobStore.GetJob(ctx, jobID)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if retrievedJob.Request != testJob.Request {
			t.Errorf("Data mismatch! Got %+v, want %+v", retrievedJob.Request, testJob.Request)
		}
		if ttl := mr.TTL("ingest_job:" + jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("TTL = %v, want %v", ttl, config.RedisJobStoreTTL)
		}
		if !mr.Exists("ingest_jobs") {
			t.Error("job id missing from the index")
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, err := jobStore.GetJob(ctx, "ghost-id")
		if !appErrors.IsNotFound(err) {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		if err := jobStore.DeleteJob(ctx, jobID); err != nil {
			t.Fatalf("DeleteJob failed: %v", err)
		}
		if mr.Exists("ingest_job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
		listed, err := jobStore.ListJobs(ctx, 10)
		if err != nil || len(listed) != 0 {
			t.Errorf("ListJobs after delete = %v, %v", ids(listed), err)
		}
	})
}

func TestRedisJobStore_ListNewestFirst(t *testing.T) {
	_, internalStore := newRedis(t, config.RedisJobStore)
	jobStore := store.NewRedisJobStore(internalStore)
	ctx := context.Background()

	for _, j := range jobsCreated() {
		if err := jobStore.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	listed, err := jobStore.ListJobs(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(listed); !equalIds(got, []string{"c", "b"}) {
		t.Errorf("ListJobs = %v, want [c b]", got)
	}

	if listed, _ := jobStore.ListJobs(ctx, 0); len(listed) != 0 {
		t.Errorf("limit 0 returned %d jobs", len(listed))
	}
}

func TestRedisJobStore_ListSkipsExpired(t *testing.T) {
	mr, internalStore := newRedis(t, config.RedisJobStore)
	jobStore := store.NewRedisJobStore(internalStore)
	ctx := context.Background()

	jobs := jobsCreated()
	_ = jobStore.SaveJob(ctx, jobs[0])
	mr.FastForward(config.RedisJobStoreTTL + time.Second)
	_ = jobStore.SaveJob(ctx, jobs[1])

	listed, err := jobStore.ListJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(listed); !equalIds(got, []string{"b"}) {
		t.Errorf("ListJobs = %v, want [b]", got)
	}
}

func TestRedisJobStore_Race(t *testing.T) {
	_, internalStore := newRedis(t, config.RedisJobStore)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job", CreatedTime: time.Now()}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, err := jobStore.GetJob(ctx, "race-job"); err != nil {
		t.Errorf("job lost after concurrent saves: %v", err)
	}
	if listed, _ := jobStore.ListJobs(ctx, 10); len(listed) != 1 {
		t.Errorf("index holds %d entries for one job", len(listed))
	}
}

func TestInMemoryJobStore(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	ctx := context.Background()

	_ = jobStore.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued})
	job, err := jobStore.GetJob(ctx, "a")
	if err != nil || job.Status != jobModel.JobStatusQueued {
		t.Fatalf("got %+v, %v", job, err)
	}
	if err := jobStore.DeleteJob(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := jobStore.GetJob(ctx, "a"); !appErrors.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestInMemoryJobStore_ListNewestFirst(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	ctx := context.Background()
	for _, j := range jobsCreated() {
		_ = jobStore.SaveJob(ctx, j)
	}

	listed, err := jobStore.ListJobs(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(listed); !equalIds(got, []string{"c", "b"}) {
		t.Errorf("ListJobs = %v, want [c b]", got)
	}
	if listed, _ := jobStore.ListJobs(ctx, -1); len(listed) != 0 {
		t.Errorf("negative limit returned %d jobs", len(listed))
	}
}
