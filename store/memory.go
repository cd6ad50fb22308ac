package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/automlhq/tabular/pkg/errors"
)

// MemoryStore is an in-memory Store for tests and single-process use.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) CreateJob(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return errors.Newf("job already exists: %s", job.ID)
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusQueued
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrJobNotFound, "job %s", id)
	}
	return cloneJob(job), nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[job.ID]
	if !ok {
		return errors.Wrapf(errors.ErrJobNotFound, "job %s", job.ID)
	}
	updated := cloneJob(job)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.jobs[job.ID] = updated
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status JobStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return errors.Wrapf(errors.ErrJobNotFound, "job %s", id)
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetDeployed(_ context.Context, id string, deployed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return errors.Wrapf(errors.ErrJobNotFound, "job %s", id)
	}
	job.Deployed = deployed
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ListJobs(_ context.Context, filter JobFilter) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*Job
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobs = append(jobs, cloneJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(jobs) {
			return nil, nil
		}
		jobs = jobs[filter.Offset:]
	}
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneJob(job *Job) *Job {
	out := *job
	if job.Metrics != nil {
		out.Metrics = make(map[string]float64, len(job.Metrics))
		for k, v := range job.Metrics {
			out.Metrics[k] = v
		}
	}
	if job.FeatureImportance != nil {
		out.FeatureImportance = make(map[string]float64, len(job.FeatureImportance))
		for k, v := range job.FeatureImportance {
			out.FeatureImportance[k] = v
		}
	}
	// Contract is treated as immutable once written; share the pointer.
	return &out
}
