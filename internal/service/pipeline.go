package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talentwire/docpipe/internal/cache"
	"github.com/talentwire/docpipe/internal/config"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/logger"
	"github.com/talentwire/docpipe/internal/repository"
	"github.com/talentwire/docpipe/internal/storage"
)

const errCodeExtractionFailed = "EXTRACTION_FAILED"

// SubmitRequest carries one validated document submission into the
// pipeline.
type SubmitRequest struct {
	FileName      string
	MimeType      string
	Data          []byte
	WebhookURL    string
	CorrelationID string

	// DisabledNodes lists extraction stages to skip for this job.
	DisabledNodes []string

	// ConfidenceThreshold overrides the configured completed/needs_review
	// threshold for this job when set.
	ConfidenceThreshold *float64
}

// SubmitResponse is returned synchronously; extraction continues in the
// background.
type SubmitResponse struct {
	ProcessingID string `json:"processingId"`
	Status       string `json:"status"`
	Cached       bool   `json:"cached,omitempty"`
}

// ProcessingService runs the extraction pipeline: it accepts submissions,
// fans out to the extraction stages, aggregates, caches, and delivers the
// outcome to the caller's webhook.
type ProcessingService struct {
	jobs         repository.JobStore
	cache        cache.ContentCache
	documents    storage.DocumentStore
	orchestrator *Orchestrator
	questions    *QuestionGenerator
	deliverer    *WebhookDeliverer
	extraction   *config.ExtractionConfig
	model        string
	log          *logger.Logger

	wg sync.WaitGroup
}

// NewProcessingService wires the pipeline together. The model name is only
// recorded on cache entries for troubleshooting.
func NewProcessingService(
	jobs repository.JobStore,
	contentCache cache.ContentCache,
	documents storage.DocumentStore,
	orchestrator *Orchestrator,
	questions *QuestionGenerator,
	deliverer *WebhookDeliverer,
	extraction *config.ExtractionConfig,
	model string,
	log *logger.Logger,
) *ProcessingService {
	return &ProcessingService{
		jobs:         jobs,
		cache:        contentCache,
		documents:    documents,
		orchestrator: orchestrator,
		questions:    questions,
		deliverer:    deliverer,
		extraction:   extraction,
		model:        model,
		log:          log,
	}
}

// Submit registers a job, stages the document, and schedules the pipeline
// in the background. It returns as soon as the job record exists; callers
// observe progress via the status endpoint and the webhook.
func (s *ProcessingService) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	hash := cache.Hash(req.Data)
	jobID := uuid.New().String()

	if _, err := s.jobs.Create(ctx, jobID, domain.JobTypeJobDescription, req.WebhookURL, req.CorrelationID); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	if err := s.jobs.SetContentHash(ctx, jobID, hash); err != nil {
		return nil, fmt.Errorf("failed to record content hash: %w", err)
	}

	cached := s.cache.Has(hash)

	tempPath, err := s.stageDocument(jobID, req.FileName, req.Data)
	if err != nil {
		// The job record exists but the pipeline never starts, so fail it
		// here with the same terminal handling the pipeline would apply.
		s.failJob(ctx, jobID, errCodeExtractionFailed, err.Error(), true)
		return nil, err
	}

	if err := s.documents.Put(ctx, hash, bytes.NewReader(req.Data), int64(len(req.Data)), req.MimeType); err != nil {
		logger.With(logger.Fields{
			logger.FieldJobID:       jobID,
			logger.FieldContentHash: hash,
		}).Warn(ctx, "Failed to store document, continuing: %v", err)
	}

	s.wg.Add(1)
	go s.runJob(jobID, hash, tempPath, req)

	logger.With(logger.Fields{
		logger.FieldJobID:       jobID,
		logger.FieldContentHash: hash,
		logger.FieldSize:        len(req.Data),
	}).Info(ctx, "Document accepted for processing")

	return &SubmitResponse{
		ProcessingID: jobID,
		Status:       "processing",
		Cached:       cached,
	}, nil
}

// Wait blocks until all in-flight background jobs have reached a terminal
// state. Used for shutdown and by tests.
func (s *ProcessingService) Wait() {
	s.wg.Wait()
}

// stageDocument writes the upload to a temp file for the duration of the
// pipeline run. The caller owns the file; runJob removes it on every exit
// path.
func (s *ProcessingService) stageDocument(jobID, fileName string, data []byte) (string, error) {
	f, err := os.CreateTemp("", "docpipe-*"+filepath.Ext(fileName))
	if err != nil {
		return "", fmt.Errorf("failed to stage document: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage document: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage document: %w", err)
	}
	return f.Name(), nil
}

// runJob is the background half of a submission. It owns the temp file and
// drives the job to a terminal state no matter what happens inside.
func (s *ProcessingService) runJob(jobID, hash, tempPath string, req *SubmitRequest) {
	defer s.wg.Done()
	defer os.Remove(tempPath)

	ctx := logger.SetJobID(context.Background(), jobID)
	ctx = logger.SetContentHash(ctx, hash)

	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "Pipeline panicked: %v", r)
			s.failJob(ctx, jobID, errCodeExtractionFailed, fmt.Sprintf("unexpected pipeline failure: %v", r), true)
		}
	}()

	start := time.Now()
	_ = s.jobs.UpdateStatus(ctx, jobID, domain.JobStatusProcessing)

	if entry, ok := s.cache.Get(hash); ok {
		logger.CtxInfo(ctx, "Cache hit, skipping extraction stages")
		s.completeJob(ctx, jobID, req, &domain.ExtractionOutput{
			Hash:       hash,
			JobData:    entry.JobData,
			Validation: entry.Validation,
			Cached:     true,
		}, start)
		return
	}

	text, err := ExtractText(tempPath, req.MimeType)
	if err != nil {
		logger.CtxError(ctx, "Document text extraction failed: %v", err)
		s.failJob(ctx, jobID, errCodeExtractionFailed, err.Error(), true)
		return
	}

	state := &domain.ExtractionState{
		DocumentRef: hash,
		MimeType:    req.MimeType,
		Text:        text,
		Hints:       map[string]string{},
	}

	s.orchestrator.Run(ctx, jobID, state, req.DisabledNodes)
	Aggregate(state, s.extraction.ValidityThreshold)

	output := &domain.ExtractionOutput{
		Hash:       hash,
		JobData:    *state.JobData,
		Validation: *state.Validation,
	}

	// Degraded extractions are never pinned in the cache: a later
	// resubmission of the same bytes deserves a fresh attempt.
	if state.Validation.IsValid {
		s.cache.Put(hash, &cache.Entry{
			Hash:       hash,
			JobData:    *state.JobData,
			Validation: *state.Validation,
			Model:      s.model,
		})
	}

	s.completeJob(ctx, jobID, req, output, start)
}

// completeJob finishes both fresh and cache-hit runs: it generates
// interview questions, persists the result, decides the terminal status,
// and delivers the webhook.
func (s *ProcessingService) completeJob(ctx context.Context, jobID string, req *SubmitRequest, output *domain.ExtractionOutput, start time.Time) {
	questions, err := s.questions.Suggest(ctx, &output.JobData)
	if err != nil {
		logger.CtxWarn(ctx, "Question generation failed, continuing without questions: %v", err)
	} else {
		output.SuggestedQuestions = questions
	}

	_ = s.jobs.SetResult(ctx, jobID, output)

	threshold := s.extraction.ReviewThreshold
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}

	status := domain.JobStatusCompleted
	if output.Validation.OverallConfidence < threshold {
		status = domain.JobStatusNeedsReview
	}
	_ = s.jobs.UpdateStatus(ctx, jobID, status)

	logger.With(logger.Fields{
		logger.FieldJobID:      jobID,
		logger.FieldConfidence: output.Validation.OverallConfidence,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).WithStatus(string(status)).Info(ctx, "Job finished")

	s.notify(ctx, jobID)
}

// failJob moves the job to failed and still attempts webhook delivery of a
// failure payload.
func (s *ProcessingService) failJob(ctx context.Context, jobID, code, message string, retryable bool) {
	_ = s.jobs.SetError(ctx, jobID, code, message, retryable)
	_ = s.jobs.UpdateStatus(ctx, jobID, domain.JobStatusFailed)
	s.notify(ctx, jobID)
}

// notify builds the webhook payload from the stored terminal job and
// delivers it. Delivery outcomes are logged, never reflected back into the
// job status.
func (s *ProcessingService) notify(ctx context.Context, jobID string) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		logger.CtxError(ctx, "Cannot build webhook payload: %v", err)
		return
	}
	if job.WebhookURL == "" {
		return
	}

	payload := buildWebhookPayload(job)
	result := s.deliverer.Deliver(ctx, job.WebhookURL, payload)

	entry := logger.With(logger.Fields{
		logger.FieldJobID:      jobID,
		logger.FieldWebhookURL: job.WebhookURL,
	}).WithAttempts(result.Attempts)
	if result.Success {
		entry.Info(ctx, "Webhook delivered")
	} else {
		entry.Error(ctx, "Webhook delivery failed: %s", result.Error)
	}
}

func buildWebhookPayload(job *domain.ProcessingJob) *domain.WebhookPayload {
	payload := &domain.WebhookPayload{
		ProcessingID:  job.ID,
		CorrelationID: job.CorrelationID,
		Type:          job.Type,
		Status:        job.Status,
		ProcessedAt:   time.Now(),
		Steps:         job.Steps,
		Error:         job.Error,
	}
	if payload.Steps == nil {
		payload.Steps = []domain.ProcessingStep{}
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		payload.ProcessingDurationMs = job.CompletedAt.Sub(*job.StartedAt).Milliseconds()
	}
	if job.Result != nil {
		payload.Result = &domain.WebhookResult{
			Hash:               job.Result.Hash,
			ExtractedData:      job.Result.JobData,
			SuggestedQuestions: job.Result.SuggestedQuestions,
		}
		validation := job.Result.Validation
		payload.Validation = &validation
	}
	return payload
}
