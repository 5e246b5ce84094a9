package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/job"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

// Pool drains the ingestion job queue. It starts with one worker, adds one
// per dispatcher signal up to maxWorkers, and lets idle workers above
// minWorkers retire.
type Pool struct {
	jobs   *job.Service
	runner job.Runner

	maxWorkers  int64
	minWorkers  int64
	idleTimeout time.Duration
	jobTimeout  time.Duration

	currentWorkerCount int64
	stopWorkerChannel  chan struct{}
	stopOnce           sync.Once
	workerWaitGroup    sync.WaitGroup
	logger             *logger_i.Logger
}

func NewPool(jobs *job.Service, runner job.Runner) *Pool {
	return &Pool{
		jobs:              jobs,
		runner:            runner,
		maxWorkers:        config.MaxWorkerCount,
		minWorkers:        config.MinWorkerCount,
		idleTimeout:       config.IdleWorkerTimeout,
		jobTimeout:        config.IngestJobTimeout,
		stopWorkerChannel: make(chan struct{}),
		logger:            logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool", "maxWorkers", p.maxWorkers)
	p.workerWaitGroup.Add(1)
	go p.dispatcher()
}

// Stop retires every worker and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopWorkerChannel)
	})
	p.workerWaitGroup.Wait()
	p.logger.Info("Worker pool stopped")
}

// WorkerCount reports the number of live workers.
func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	defer p.workerWaitGroup.Done()
	p.createWorker()
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobs.DispatcherChannel:
			if atomic.LoadInt64(&p.currentWorkerCount) < p.maxWorkers {
				p.logger.Info("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stopWorkerChannel:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case currentJob := <-p.jobs.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stopWorkerChannel:
			p.removeWorker("stop signal received", false)
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("idle worker timeout", true)
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire claims a slot above minWorkers, so concurrent idle workers can
// never shrink the pool below it.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.currentWorkerCount)
		if n <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, n, n-1) {
			return true
		}
	}
}
