package service

import (
	"context"
	"sync"
	"time"

	"github.com/talentwire/docpipe/internal/config"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/llm"
	"github.com/talentwire/docpipe/internal/logger"
	"github.com/talentwire/docpipe/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Orchestrator fans out to the three extractor stages concurrently and
// joins before aggregation. No stage failure halts the others: the run
// always proceeds with whatever mix of success and failure it has.
type Orchestrator struct {
	generator     llm.Generator
	jobs          repository.JobStore
	retryAttempts int
	stageTimeout  time.Duration
	log           *logger.Logger
}

// NewOrchestrator creates an orchestrator bound to a generator and the
// job store it reports progress to.
func NewOrchestrator(gen llm.Generator, jobs repository.JobStore, cfg *config.ExtractionConfig, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		generator:     gen,
		jobs:          jobs,
		retryAttempts: cfg.RetryAttempts,
		stageTimeout:  cfg.StageTimeout,
		log:           log,
	}
}

// Run executes all enabled stages against the state's document text and
// blocks until every stage has finished. Stage results are written into
// the state's slots; completion order between stages is not significant.
func (o *Orchestrator) Run(ctx context.Context, jobID string, state *domain.ExtractionState, disabledNodes []string) {
	disabled := make(map[string]bool, len(disabledNodes))
	for _, name := range disabledNodes {
		disabled[name] = true
	}

	tracker := &progressTracker{
		jobs:  o.jobs,
		jobID: jobID,
		total: TotalStages,
	}

	var g errgroup.Group

	g.Go(func() error {
		state.Metadata = runTracked(ctx, o, tracker, disabled, metadataStage(), state)
		return nil
	})
	g.Go(func() error {
		state.Skills = runTracked(ctx, o, tracker, disabled, skillsStage(), state)
		return nil
	})
	g.Go(func() error {
		state.Requirements = runTracked(ctx, o, tracker, disabled, requirementsStage(), state)
		return nil
	})

	// Stage closures never return errors; the group is only a join point.
	_ = g.Wait()

	o.log.WithField(logger.FieldJobID, jobID).
		WithField("failed_stages", countFailed(state)).
		Info("All extraction stages finished")
}

func countFailed(state *domain.ExtractionState) int {
	n := 0
	if state.Metadata.Failed() {
		n++
	}
	if state.Skills.Failed() {
		n++
	}
	if state.Requirements.Failed() {
		n++
	}
	return n
}

// runTracked wraps one stage execution with progress and audit-trail
// bookkeeping.
func runTracked[T any](ctx context.Context, o *Orchestrator, tracker *progressTracker, disabled map[string]bool, st Stage[T], state *domain.ExtractionState) domain.ExtractionResult[T] {
	if disabled[st.Name] {
		tracker.skipped(ctx, st.Name)
		return skippedStageResult(st.Default, st.Name)
	}

	start := time.Now()
	tracker.started(ctx, st.Name, start)

	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	result := RunStage(stageCtx, o.generator, o.retryAttempts, st, state.Text, state.Hints[st.Name])

	entry := logger.With(logger.Fields{
		logger.FieldStage:      st.Name,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldConfidence: result.Evaluation.ConfidenceScore,
	})
	if result.Failed() {
		entry.Warn(ctx, "Stage failed: %s", result.Error)
	} else {
		entry.Info(ctx, "Stage completed")
	}

	tracker.finished(ctx, st.Name, start, result.Error)
	return result
}

// progressTracker serializes progress updates from concurrently finishing
// stages so completedNodes only ever grows.
type progressTracker struct {
	mu        sync.Mutex
	jobs      repository.JobStore
	jobID     string
	completed []string
	total     int
}

func (t *progressTracker) started(ctx context.Context, name string, startedAt time.Time) {
	t.mu.Lock()
	completed := append([]string(nil), t.completed...)
	t.mu.Unlock()

	_ = t.jobs.RecordStep(ctx, t.jobID, domain.ProcessingStep{
		Name:      name,
		Status:    domain.StepStatusRunning,
		StartedAt: startedAt,
	})
	_ = t.jobs.UpdateProgress(ctx, t.jobID, name, completed, t.total)
}

func (t *progressTracker) finished(ctx context.Context, name string, startedAt time.Time, stageErr string) {
	t.mu.Lock()
	t.completed = append(t.completed, name)
	completed := append([]string(nil), t.completed...)
	t.mu.Unlock()

	now := time.Now()
	status := domain.StepStatusCompleted
	if stageErr != "" {
		status = domain.StepStatusFailed
	}
	_ = t.jobs.RecordStep(ctx, t.jobID, domain.ProcessingStep{
		Name:        name,
		Status:      status,
		StartedAt:   startedAt,
		CompletedAt: &now,
		Error:       stageErr,
	})
	_ = t.jobs.UpdateProgress(ctx, t.jobID, name, completed, t.total)
}

func (t *progressTracker) skipped(ctx context.Context, name string) {
	t.mu.Lock()
	t.completed = append(t.completed, name)
	completed := append([]string(nil), t.completed...)
	t.mu.Unlock()

	now := time.Now()
	_ = t.jobs.RecordStep(ctx, t.jobID, domain.ProcessingStep{
		Name:        name,
		Status:      domain.StepStatusSkipped,
		StartedAt:   now,
		CompletedAt: &now,
	})
	_ = t.jobs.UpdateProgress(ctx, t.jobID, name, completed, t.total)
}
