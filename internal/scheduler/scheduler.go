// Package scheduler runs the ingestion jobs on fixed recurrences. Each
// job gets its own goroutine and a start delay so the storefront
// scrapes are staggered and browser launches never coincide. A job
// that is still running when its next trigger fires drops that trigger
// instead of starting a second overlapping run.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// JobSpec describes one recurring job
type JobSpec struct {
	Name     string
	Delay    time.Duration
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// JobStatus is a snapshot of a job's last execution
type JobStatus struct {
	Name      string     `json:"name"`
	Runs      int        `json:"runs"`
	Dropped   int        `json:"dropped"`
	LastStart *time.Time `json:"last_start,omitempty"`
	LastEnd   *time.Time `json:"last_end,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type job struct {
	spec    JobSpec
	running atomic.Bool

	mu     sync.Mutex
	status JobStatus
}

// Scheduler dispatches registered jobs until its context is canceled
type Scheduler struct {
	jobs   []*job
	byName map[string]*job
	logger *zap.Logger
	wg     sync.WaitGroup
}

// New creates a scheduler over the given job specs
func New(logger *zap.Logger, specs ...JobSpec) *Scheduler {
	s := &Scheduler{
		logger: logger,
		byName: make(map[string]*job, len(specs)),
	}
	for _, spec := range specs {
		j := &job{spec: spec, status: JobStatus{Name: spec.Name}}
		s.jobs = append(s.jobs, j)
		s.byName[spec.Name] = j
	}
	return s
}

// Start launches every job loop. It returns immediately; Wait blocks
// until all loops have observed cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Wait blocks until all job loops have stopped
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Trigger fires one job out of band, subject to the same
// mutual-exclusion guard as scheduled runs. Unknown names are ignored.
func (s *Scheduler) Trigger(ctx context.Context, name string) {
	if j, ok := s.byName[name]; ok {
		s.execute(ctx, j)
	}
}

// Status returns a snapshot of every job's last run
func (s *Scheduler) Status() []JobStatus {
	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		j.mu.Lock()
		statuses = append(statuses, j.status)
		j.mu.Unlock()
	}
	return statuses
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	// Initial stagger delay.
	if j.spec.Delay > 0 {
		select {
		case <-time.After(j.spec.Delay):
		case <-ctx.Done():
			return
		}
	}

	s.execute(ctx, j)

	if j.spec.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.spec.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.execute(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

// execute runs the job once. At most one run per job is in flight;
// an overlapping trigger is dropped, not queued.
func (s *Scheduler) execute(ctx context.Context, j *job) {
	if !j.running.CompareAndSwap(false, true) {
		s.logger.Warn("Job still running, dropping trigger", zap.String("job", j.spec.Name))
		j.mu.Lock()
		j.status.Dropped++
		j.mu.Unlock()
		return
	}
	defer j.running.Store(false)

	start := time.Now()
	s.logger.Info("Job starting", zap.String("job", j.spec.Name))

	err := j.spec.Run(ctx)

	end := time.Now()
	j.mu.Lock()
	j.status.Runs++
	j.status.LastStart = &start
	j.status.LastEnd = &end
	if err != nil {
		j.status.LastError = err.Error()
	} else {
		j.status.LastError = ""
	}
	j.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", j.spec.Name),
			zap.Duration("duration", end.Sub(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Job completed",
		zap.String("job", j.spec.Name),
		zap.Duration("duration", end.Sub(start)),
	)
}
