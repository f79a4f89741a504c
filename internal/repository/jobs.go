package repository

import (
	"context"
	"time"

	"github.com/talentwire/docpipe/internal/domain"
)

// JobStore tracks the lifecycle of processing jobs. It is the exclusive
// owner of ProcessingJob mutation and must be safe for concurrent use from
// multiple in-flight pipelines.
//
// Mutating operations on an unknown id are no-ops and return nil; only Get
// distinguishes missing jobs (domain.ErrJobNotFound). Status transitions
// are forward-only: once a job is terminal, further status updates are
// ignored.
type JobStore interface {
	// Create registers a new job in the queued state.
	Create(ctx context.Context, id string, jobType domain.JobType, webhookURL, correlationID string) (*domain.ProcessingJob, error)

	// Get returns a copy of the job or domain.ErrJobNotFound.
	Get(ctx context.Context, id string) (*domain.ProcessingJob, error)

	// UpdateStatus moves the job forward. StartedAt is set on the
	// transition to processing, CompletedAt on any terminal transition.
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error

	// UpdateProgress records stage-by-stage advancement.
	UpdateProgress(ctx context.Context, id, currentNode string, completedNodes []string, totalNodes int) error

	// RecordStep appends a step to the audit trail, or replaces the
	// existing entry with the same name (a running step finishing).
	RecordStep(ctx context.Context, id string, step domain.ProcessingStep) error

	// SetContentHash records the document digest for the job.
	SetContentHash(ctx context.Context, id, hash string) error

	// SetResult attaches the aggregated extraction to the job.
	SetResult(ctx context.Context, id string, result *domain.ExtractionOutput) error

	// SetError records the failure that moved the job to failed.
	SetError(ctx context.Context, id, code, message string, retryable bool) error

	// Cleanup removes jobs created before now-maxAge and returns the
	// number removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}
