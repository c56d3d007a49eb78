package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/metrics"
	"go.uber.org/zap"
)

// Status represents job status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Done reports whether the job reached a final state.
func (s Status) Done() bool {
	return s == StatusComplete || s == StatusFailed
}

// Job represents an async job.
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Func is the work performed by a job.
type Func func(ctx context.Context) (any, error)

// Store manages async jobs.
type Store struct {
	jobs    map[string]*Job
	order   []string // Track insertion order for eviction
	active  map[string]int
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
	wg      sync.WaitGroup

	metrics *metrics.Registry
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics reports running jobs per type.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Store) { s.metrics = reg }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a new job store. Finished jobs older than ttl are
// dropped on the next Create.
func NewStore(maxSize int, ttl time.Duration, opts ...Option) *Store {
	if maxSize <= 0 {
		maxSize = 1
	}
	s := &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		active:  make(map[string]int),
		maxSize: maxSize,
		ttl:     ttl,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new job and returns it.
func (s *Store) Create(jobType string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.expire(now)

	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Evict oldest if at capacity
	if len(s.jobs) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		delete(s.jobs, oldest)
		s.order = s.order[1:]
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	jobCopy := *job
	return &jobCopy
}

// expire drops finished jobs past their TTL. Callers hold s.mu.
func (s *Store) expire(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// Get retrieves a job by ID.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("job %s not found", id))
	}

	// Return copy to prevent race conditions
	jobCopy := *job
	return &jobCopy, nil
}

// Update modifies a job using an update function.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.WrapError(core.ErrNotFound, fmt.Errorf("job %s not found", id))
	}

	fn(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// List returns all jobs in creation order.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Job, 0, len(s.jobs))
	for _, id := range s.order {
		result = append(result, *s.jobs[id])
	}
	return result
}

// Run creates a job and executes fn in the background. The job outlives
// the request that started it, so fn receives ctx without its deadline.
func (s *Store) Run(ctx context.Context, jobType string, fn Func) *Job {
	job := s.Create(jobType)
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.setActive(jobType, 1)
		defer s.setActive(jobType, -1)

		s.Update(job.ID, func(j *Job) { j.Status = StatusRunning })

		result, err := fn(ctx)
		s.Update(job.ID, func(j *Job) {
			if err != nil {
				j.Status = StatusFailed
				j.Error = err.Error()
				return
			}
			j.Status = StatusComplete
			j.Result = result
		})

		if err != nil {
			s.logger.Warn("job failed",
				zap.String("id", job.ID),
				zap.String("type", jobType),
				zap.Error(err),
			)
			return
		}
		s.logger.Debug("job complete", zap.String("id", job.ID), zap.String("type", jobType))
	}()

	return job
}

// Wait blocks until every job started with Run has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) setActive(jobType string, delta int) {
	s.mu.Lock()
	s.active[jobType] += delta
	n := s.active[jobType]
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetJobsActive(jobType, n)
	}
}
