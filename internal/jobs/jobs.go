// Package jobs provides an in-memory store for asynchronous query jobs.
//
// The store is deliberately memory-only: the service never persists query
// content. Finished jobs are evicted after a TTL by a janitor goroutine.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/constants"
	"github.com/enjojoy/fredagent/pkg/errors"
)

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one asynchronous query run.
type Job struct {
	ID         string           `json:"id"`
	Query      string           `json:"query"`
	Status     Status           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Result     *analysis.Report `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Store holds jobs in memory with TTL eviction of finished jobs.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewStore creates a Store. ttl controls how long finished jobs are kept;
// zero or negative falls back to the default.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = constants.DefaultJobTTL
	}
	s := &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the janitor goroutine.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// janitor evicts finished jobs past their TTL.
func (s *Store) janitor() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evict(time.Now())
		}
	}
}

// evict removes finished jobs whose FinishedAt is older than the TTL.
func (s *Store) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.FinishedAt != nil && now.Sub(*job.FinishedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Create registers a new pending job for a query and returns a copy.
func (s *Store) Create(query string) Job {
	job := &Job{
		ID:        uuid.NewString(),
		Query:     query,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return *job
}

// Get returns a copy of the job with the given ID.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, errors.NewNotFoundError("job", id)
	}
	return *job, nil
}

// SetRunning marks a job as running.
func (s *Store) SetRunning(id string) {
	now := time.Now().UTC()
	s.update(id, func(job *Job) {
		job.Status = StatusRunning
		job.StartedAt = &now
	})
}

// Complete marks a job as completed with its report.
func (s *Store) Complete(id string, report *analysis.Report) {
	now := time.Now().UTC()
	s.update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.FinishedAt = &now
		job.Result = report
	})
}

// Fail marks a job as failed with an error message.
func (s *Store) Fail(id string, message string) {
	now := time.Now().UTC()
	s.update(id, func(job *Job) {
		job.Status = StatusFailed
		job.FinishedAt = &now
		job.Error = message
	})
}

// Len returns the number of jobs currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// update applies fn to a job under the write lock.
func (s *Store) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}
