package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/hostel-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs fire-and-forget jobs (audit writes) and scheduled sweeps with
// bounded concurrency. Shutdown waits for everything in flight.
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	queue    chan namedJob
	asyncSem chan struct{}

	mu     sync.RWMutex
	closed bool

	stats   WorkerStats
	statsMu sync.RWMutex
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// NewWorker creates a worker with numWorkers queue processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan namedJob, 100),
		asyncSem: make(chan struct{}, numWorkers*2),
	}
	w.stats.MaxConcurrent = numWorkers * 2

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the worker queue. When the queue is full the job
// runs on the caller's goroutine. Jobs enqueued after Shutdown are dropped.
func (w *Worker) Enqueue(name string, job Job) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		logger.Warn("worker closed, dropping job", "job", name)
		return false
	}

	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("worker queue full, running job synchronously", "job", name)
		w.run("sync", namedJob{name: name, run: job})
	}
	return true
}

// EnqueueAsync runs a job in its own goroutine, bounded by a semaphore
func (w *Worker) EnqueueAsync(name string, job Job) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		logger.Warn("worker closed, dropping job", "job", name)
		return false
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()
		w.run("async", namedJob{name: name, run: job})
	}()
	return true
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for job := range w.queue {
		w.run("queue", job)
	}
	logger.Debug("worker stopped", "worker_id", workerID)
}

// ScheduleEvery runs job every interval; the first run happens after one interval
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, job, false)
}

// ScheduleEveryImmediate runs job once right away, then every interval
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, job, true)
}

func (w *Worker) schedule(name string, interval time.Duration, job Job, immediate bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.run("scheduler", namedJob{name: name, run: job})
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run("scheduler", namedJob{name: name, run: job})
			}
		}
	}()
}

func (w *Worker) run(source string, job namedJob) {
	w.trackJobStart()
	defer w.trackJobEnd()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panic", "source", source, "job", job.name, "panic", r)
			w.trackJobFailure()
		}
	}()

	start := time.Now()
	if err := job.run(w.ctx); err != nil {
		logger.Error("job failed", "source", source, "job", job.name, "error", err)
		w.trackJobFailure()
		return
	}
	logger.Debug("job completed", "source", source, "job", job.name, "duration", time.Since(start))
}

// Shutdown stops the schedulers, drains the queue and waits for in-flight
// jobs. It is safe to call more than once.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// CompletedJobs counts every finished job; FailedJobs is the failing subset
func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
