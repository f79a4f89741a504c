package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/talentwire/docpipe/internal/domain"
	"gorm.io/gorm"
)

// jobRecord is the persisted form of a ProcessingJob. Nested structures
// are stored as JSON text columns so the record works unchanged on both
// SQLite and PostgreSQL.
type jobRecord struct {
	ID             string             `gorm:"type:text;primaryKey"`
	Type           string             `gorm:"type:text;not null"`
	Status         string             `gorm:"type:text;index:idx_jobs_status;default:queued"`
	WebhookURL     string             `gorm:"type:text"`
	CorrelationID  string             `gorm:"type:text"`
	ContentHash    string             `gorm:"type:text;index:idx_jobs_hash"`
	CurrentNode    string             `gorm:"type:text"`
	CompletedNodes domain.StringArray `gorm:"type:text"`
	TotalNodes     int                `gorm:"default:0"`
	ResultJSON     string             `gorm:"type:text"`
	ErrorJSON      string             `gorm:"type:text"`
	StepsJSON      string             `gorm:"type:text"`
	CreatedAt      time.Time          `gorm:"index:idx_jobs_created"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// TableName returns the database table name for jobRecord.
func (jobRecord) TableName() string {
	return "processing_jobs"
}

func (r *jobRecord) toDomain() (*domain.ProcessingJob, error) {
	job := &domain.ProcessingJob{
		ID:            r.ID,
		Type:          domain.JobType(r.Type),
		Status:        domain.JobStatus(r.Status),
		WebhookURL:    r.WebhookURL,
		CorrelationID: r.CorrelationID,
		ContentHash:   r.ContentHash,
		Progress: domain.Progress{
			CurrentNode:    r.CurrentNode,
			CompletedNodes: r.CompletedNodes,
			TotalNodes:     r.TotalNodes,
		},
		CreatedAt:   r.CreatedAt,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}

	if r.ResultJSON != "" {
		var result domain.ExtractionOutput
		if err := json.Unmarshal([]byte(r.ResultJSON), &result); err != nil {
			return nil, fmt.Errorf("decode job result: %w", err)
		}
		job.Result = &result
	}
	if r.ErrorJSON != "" {
		var jobErr domain.JobError
		if err := json.Unmarshal([]byte(r.ErrorJSON), &jobErr); err != nil {
			return nil, fmt.Errorf("decode job error: %w", err)
		}
		job.Error = &jobErr
	}
	if r.StepsJSON != "" {
		if err := json.Unmarshal([]byte(r.StepsJSON), &job.Steps); err != nil {
			return nil, fmt.Errorf("decode job steps: %w", err)
		}
	}
	return job, nil
}

// GormJobStore is the durable JobStore implementation backed by GORM.
type GormJobStore struct {
	db *gorm.DB
}

// NewGormJobStore creates a JobStore bound to db.
func NewGormJobStore(db *gorm.DB) *GormJobStore {
	return &GormJobStore{db: db}
}

// Create registers a new job in the queued state.
func (s *GormJobStore) Create(ctx context.Context, id string, jobType domain.JobType, webhookURL, correlationID string) (*domain.ProcessingJob, error) {
	record := &jobRecord{
		ID:            id,
		Type:          string(jobType),
		Status:        string(domain.JobStatusQueued),
		WebhookURL:    webhookURL,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return record.toDomain()
}

// Get returns the job or domain.ErrJobNotFound.
func (s *GormJobStore) Get(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	var record jobRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return record.toDomain()
}

// mutate loads the record, applies fn, and saves. Unknown ids are no-ops.
func (s *GormJobStore) mutate(ctx context.Context, id string, fn func(*jobRecord) bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record jobRecord
		err := tx.First(&record, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		if !fn(&record) {
			return nil
		}
		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("save job: %w", err)
		}
		return nil
	})
}

// UpdateStatus moves the job forward. Terminal jobs are left untouched.
func (s *GormJobStore) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	return s.mutate(ctx, id, func(r *jobRecord) bool {
		if domain.JobStatus(r.Status).IsTerminal() {
			return false
		}
		now := time.Now()
		r.Status = string(status)
		if status == domain.JobStatusProcessing && r.StartedAt == nil {
			r.StartedAt = &now
		}
		if status.IsTerminal() {
			r.CompletedAt = &now
		}
		return true
	})
}

// UpdateProgress records stage-by-stage advancement.
func (s *GormJobStore) UpdateProgress(ctx context.Context, id, currentNode string, completedNodes []string, totalNodes int) error {
	return s.mutate(ctx, id, func(r *jobRecord) bool {
		r.CurrentNode = currentNode
		r.CompletedNodes = completedNodes
		r.TotalNodes = totalNodes
		return true
	})
}

// RecordStep appends or replaces an audit-trail step by name.
func (s *GormJobStore) RecordStep(ctx context.Context, id string, step domain.ProcessingStep) error {
	return s.mutate(ctx, id, func(r *jobRecord) bool {
		var steps []domain.ProcessingStep
		if r.StepsJSON != "" {
			if err := json.Unmarshal([]byte(r.StepsJSON), &steps); err != nil {
				steps = nil
			}
		}
		replaced := false
		for i := range steps {
			if steps[i].Name == step.Name {
				steps[i] = step
				replaced = true
				break
			}
		}
		if !replaced {
			steps = append(steps, step)
		}
		encoded, err := json.Marshal(steps)
		if err != nil {
			return false
		}
		r.StepsJSON = string(encoded)
		return true
	})
}

// SetContentHash records the document digest for the job.
func (s *GormJobStore) SetContentHash(ctx context.Context, id, hash string) error {
	return s.mutate(ctx, id, func(r *jobRecord) bool {
		r.ContentHash = hash
		return true
	})
}

// SetResult attaches the aggregated extraction to the job.
func (s *GormJobStore) SetResult(ctx context.Context, id string, result *domain.ExtractionOutput) error {
	if result == nil {
		return nil
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}
	return s.mutate(ctx, id, func(r *jobRecord) bool {
		r.ResultJSON = string(encoded)
		return true
	})
}

// SetError records the failure that moved the job to failed.
func (s *GormJobStore) SetError(ctx context.Context, id, code, message string, retryable bool) error {
	encoded, err := json.Marshal(domain.JobError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	})
	if err != nil {
		return fmt.Errorf("encode job error: %w", err)
	}
	return s.mutate(ctx, id, func(r *jobRecord) bool {
		r.ErrorJSON = string(encoded)
		return true
	})
}

// Cleanup removes jobs created before now-maxAge.
func (s *GormJobStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&jobRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup jobs: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
