package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talentwire/docpipe/internal/domain"
)

func TestMemoryJobStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	created, err := store.Create(ctx, "job-1", domain.JobTypeJobDescription, "https://example.com/hook", "corr-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != domain.JobStatusQueued {
		t.Errorf("new job status = %s, want queued", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if created.StartedAt != nil || created.CompletedAt != nil {
		t.Error("timestamps set before transitions")
	}

	if err := store.UpdateStatus(ctx, "job-1", domain.JobStatusProcessing); err != nil {
		t.Fatalf("update to processing failed: %v", err)
	}
	job, _ := store.Get(ctx, "job-1")
	if job.Status != domain.JobStatusProcessing {
		t.Errorf("status = %s, want processing", job.Status)
	}
	if job.StartedAt == nil {
		t.Error("StartedAt not set on transition to processing")
	}
	if job.CompletedAt != nil {
		t.Error("CompletedAt set on non-terminal status")
	}

	if err := store.UpdateStatus(ctx, "job-1", domain.JobStatusCompleted); err != nil {
		t.Fatalf("update to completed failed: %v", err)
	}
	job, _ = store.Get(ctx, "job-1")
	if job.Status != domain.JobStatusCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if job.CompletedAt == nil {
		t.Error("CompletedAt not set on terminal transition")
	}
}

func TestMemoryJobStoreTransitionsForwardOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	store.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")
	store.UpdateStatus(ctx, "job-1", domain.JobStatusProcessing)
	store.UpdateStatus(ctx, "job-1", domain.JobStatusFailed)

	// A terminal job never moves again.
	store.UpdateStatus(ctx, "job-1", domain.JobStatusProcessing)
	job, _ := store.Get(ctx, "job-1")
	if job.Status != domain.JobStatusFailed {
		t.Errorf("terminal job transitioned backward to %s", job.Status)
	}

	store.UpdateStatus(ctx, "job-1", domain.JobStatusCompleted)
	job, _ = store.Get(ctx, "job-1")
	if job.Status != domain.JobStatusFailed {
		t.Errorf("terminal job switched terminal state to %s", job.Status)
	}
}

func TestMemoryJobStoreUnknownIDNoOps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("Get on unknown id = %v, want ErrJobNotFound", err)
	}
	if err := store.UpdateStatus(ctx, "missing", domain.JobStatusProcessing); err != nil {
		t.Errorf("UpdateStatus on unknown id errored: %v", err)
	}
	if err := store.UpdateProgress(ctx, "missing", "stage", nil, 3); err != nil {
		t.Errorf("UpdateProgress on unknown id errored: %v", err)
	}
	if err := store.RecordStep(ctx, "missing", domain.ProcessingStep{Name: "stage"}); err != nil {
		t.Errorf("RecordStep on unknown id errored: %v", err)
	}
	if err := store.SetResult(ctx, "missing", &domain.ExtractionOutput{}); err != nil {
		t.Errorf("SetResult on unknown id errored: %v", err)
	}
	if err := store.SetError(ctx, "missing", "CODE", "msg", true); err != nil {
		t.Errorf("SetError on unknown id errored: %v", err)
	}
}

func TestMemoryJobStoreRecordStepReplacesByName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	store.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")

	started := time.Now()
	store.RecordStep(ctx, "job-1", domain.ProcessingStep{
		Name:      "metadata_extraction",
		Status:    domain.StepStatusRunning,
		StartedAt: started,
	})
	done := time.Now()
	store.RecordStep(ctx, "job-1", domain.ProcessingStep{
		Name:        "metadata_extraction",
		Status:      domain.StepStatusCompleted,
		StartedAt:   started,
		CompletedAt: &done,
	})
	store.RecordStep(ctx, "job-1", domain.ProcessingStep{
		Name:      "skills_extraction",
		Status:    domain.StepStatusRunning,
		StartedAt: time.Now(),
	})

	job, _ := store.Get(ctx, "job-1")
	if len(job.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(job.Steps))
	}
	if job.Steps[0].Status != domain.StepStatusCompleted {
		t.Errorf("running step not replaced: %s", job.Steps[0].Status)
	}
}

func TestMemoryJobStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	store.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")
	store.Create(ctx, "job-2", domain.JobTypeJobDescription, "", "")

	// Nothing is older than a century.
	removed, err := store.Cleanup(ctx, 100*365*24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("cleanup with huge maxAge removed %d jobs", removed)
	}

	// Everything is older than zero.
	time.Sleep(time.Millisecond)
	removed, err = store.Cleanup(ctx, 0)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("cleanup with zero maxAge removed %d jobs, want 2", removed)
	}
	if _, err := store.Get(ctx, "job-1"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Error("job survived a zero-maxAge cleanup")
	}
}

func TestMemoryJobStoreClonesNotShared(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	store.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")
	store.UpdateProgress(ctx, "job-1", "metadata_extraction", []string{"metadata_extraction"}, 3)

	job, _ := store.Get(ctx, "job-1")
	job.Progress.CompletedNodes[0] = "mutated"
	job.Status = domain.JobStatusFailed

	again, _ := store.Get(ctx, "job-1")
	if again.Progress.CompletedNodes[0] != "metadata_extraction" {
		t.Error("store state mutated through a returned copy")
	}
	if again.Status != domain.JobStatusQueued {
		t.Errorf("store status mutated through a returned copy: %s", again.Status)
	}
}

func TestMemoryJobStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	store.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.UpdateProgress(ctx, "job-1", "metadata_extraction", []string{"metadata_extraction"}, 3)
			store.RecordStep(ctx, "job-1", domain.ProcessingStep{Name: "metadata_extraction", Status: domain.StepStatusRunning, StartedAt: time.Now()})
			store.Get(ctx, "job-1")
		}(i)
	}
	wg.Wait()

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get after concurrent updates failed: %v", err)
	}
	if len(job.Steps) != 1 {
		t.Errorf("expected 1 deduplicated step, got %d", len(job.Steps))
	}
}
