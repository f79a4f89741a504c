package domain

import (
	"errors"
	"time"
)

// ErrJobNotFound is returned by stores when a job id is unknown.
var ErrJobNotFound = errors.New("job not found")

// JobStatus represents the lifecycle state of a processing job.
// Transitions are forward-only: queued -> processing -> exactly one of
// completed, needs_review, or failed.
type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusProcessing  JobStatus = "processing"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
	JobStatusNeedsReview JobStatus = "needs_review"
)

// IsTerminal reports whether the status is a terminal state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusNeedsReview:
		return true
	}
	return false
}

// JobType identifies the kind of document being processed.
type JobType string

const (
	// JobTypeJobDescription is the only document type currently accepted.
	JobTypeJobDescription JobType = "job_description"
)

// StepStatus is the status of a single processing step in the audit trail.
type StepStatus string

const (
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// ProcessingStep is one entry in the per-job audit trail reported on the
// webhook payload.
type ProcessingStep struct {
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Progress tracks stage-by-stage advancement through the pipeline.
type Progress struct {
	CurrentNode    string   `json:"currentNode"`
	CompletedNodes []string `json:"completedNodes"`
	TotalNodes     int      `json:"totalNodes"`
}

// JobError describes why a job reached the failed state.
type JobError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ProcessingJob is the lifecycle record for one submitted document.
// The job store is the exclusive owner of its mutation.
type ProcessingJob struct {
	ID            string            `json:"id"`
	Type          JobType           `json:"type"`
	Status        JobStatus         `json:"status"`
	WebhookURL    string            `json:"webhookUrl"`
	CorrelationID string            `json:"correlationId,omitempty"`
	ContentHash   string            `json:"contentHash,omitempty"`
	Progress      Progress          `json:"progress"`
	Result        *ExtractionOutput `json:"result,omitempty"`
	Error         *JobError         `json:"error,omitempty"`
	Steps         []ProcessingStep  `json:"processingSteps"`
	CreatedAt     time.Time         `json:"createdAt"`
	StartedAt     *time.Time        `json:"startedAt,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
}

// Clone returns a deep copy so store callers never share mutable state
// with the store's own record.
func (j *ProcessingJob) Clone() *ProcessingJob {
	cp := *j
	cp.Progress.CompletedNodes = append([]string(nil), j.Progress.CompletedNodes...)
	cp.Steps = append([]ProcessingStep(nil), j.Steps...)
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		cp.Error = &e
	}
	if j.Result != nil {
		cp.Result = j.Result.Clone()
	}
	return &cp
}
