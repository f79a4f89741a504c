package repository

import (
	"context"
	"sync"
	"time"

	"github.com/talentwire/docpipe/internal/domain"
)

// MemoryJobStore is the default, volatile JobStore: a mutex-guarded map.
// It deliberately does not survive process restarts.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ProcessingJob
}

// NewMemoryJobStore creates an empty in-memory job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[string]*domain.ProcessingJob),
	}
}

// Create registers a new job in the queued state.
func (s *MemoryJobStore) Create(_ context.Context, id string, jobType domain.JobType, webhookURL, correlationID string) (*domain.ProcessingJob, error) {
	job := &domain.ProcessingJob{
		ID:            id,
		Type:          jobType,
		Status:        domain.JobStatusQueued,
		WebhookURL:    webhookURL,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()

	return job.Clone(), nil
}

// Get returns a copy of the job or domain.ErrJobNotFound.
func (s *MemoryJobStore) Get(_ context.Context, id string) (*domain.ProcessingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

// UpdateStatus moves the job forward. Updates on a terminal job and
// unknown ids are no-ops.
func (s *MemoryJobStore) UpdateStatus(_ context.Context, id string, status domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status.IsTerminal() {
		return nil
	}

	now := time.Now()
	job.Status = status
	if status == domain.JobStatusProcessing && job.StartedAt == nil {
		job.StartedAt = &now
	}
	if status.IsTerminal() {
		job.CompletedAt = &now
	}
	return nil
}

// UpdateProgress records stage-by-stage advancement.
func (s *MemoryJobStore) UpdateProgress(_ context.Context, id, currentNode string, completedNodes []string, totalNodes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	job.Progress = domain.Progress{
		CurrentNode:    currentNode,
		CompletedNodes: append([]string(nil), completedNodes...),
		TotalNodes:     totalNodes,
	}
	return nil
}

// RecordStep appends or replaces an audit-trail step by name.
func (s *MemoryJobStore) RecordStep(_ context.Context, id string, step domain.ProcessingStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	for i := range job.Steps {
		if job.Steps[i].Name == step.Name {
			job.Steps[i] = step
			return nil
		}
	}
	job.Steps = append(job.Steps, step)
	return nil
}

// SetContentHash records the document digest for the job.
func (s *MemoryJobStore) SetContentHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.ContentHash = hash
	}
	return nil
}

// SetResult attaches the aggregated extraction to the job.
func (s *MemoryJobStore) SetResult(_ context.Context, id string, result *domain.ExtractionOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && result != nil {
		job.Result = result.Clone()
	}
	return nil
}

// SetError records the failure that moved the job to failed.
func (s *MemoryJobStore) SetError(_ context.Context, id, code, message string, retryable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Error = &domain.JobError{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		}
	}
	return nil
}

// Cleanup removes jobs created before now-maxAge.
func (s *MemoryJobStore) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}
