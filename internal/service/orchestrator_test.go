package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentwire/docpipe/internal/config"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/repository"
)

func testExtractionConfig() *config.ExtractionConfig {
	return &config.ExtractionConfig{
		RetryAttempts:     2,
		StageTimeout:      5 * time.Second,
		ValidityThreshold: 0.6,
		ReviewThreshold:   0.7,
	}
}

func TestOrchestratorRunsAllStages(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGenerator()
	gen.setAllStages(0.9)
	jobs := repository.NewMemoryJobStore()
	jobs.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")

	o := NewOrchestrator(gen, jobs, testExtractionConfig(), testLogger())
	state := &domain.ExtractionState{Text: "We are hiring a Senior Go Engineer at Acme."}
	o.Run(ctx, "job-1", state, nil)

	if state.Metadata.Failed() || state.Skills.Failed() || state.Requirements.Failed() {
		t.Fatalf("unexpected stage failure: %s %s %s",
			state.Metadata.Error, state.Skills.Error, state.Requirements.Error)
	}
	if state.Metadata.Data.Title != "Senior Go Engineer" {
		t.Errorf("metadata title = %q", state.Metadata.Data.Title)
	}
	if len(state.Skills.Data.Skills) != 2 {
		t.Errorf("skills = %v", state.Skills.Data.Skills)
	}
	if len(state.Requirements.Data.Required) != 2 {
		t.Errorf("requirements = %v", state.Requirements.Data.Required)
	}

	for _, schema := range []string{SchemaMetadata, SchemaSkills, SchemaRequirements} {
		if gen.callCount(schema) != 1 {
			t.Errorf("schema %s called %d times, want 1", schema, gen.callCount(schema))
		}
	}

	job, _ := jobs.Get(ctx, "job-1")
	if job.Progress.TotalNodes != TotalStages {
		t.Errorf("totalNodes = %d, want %d", job.Progress.TotalNodes, TotalStages)
	}
	if len(job.Progress.CompletedNodes) != TotalStages {
		t.Errorf("completedNodes = %v", job.Progress.CompletedNodes)
	}
	if len(job.Steps) != TotalStages {
		t.Fatalf("expected %d audit steps, got %d", TotalStages, len(job.Steps))
	}
	for _, step := range job.Steps {
		if step.Status != domain.StepStatusCompleted {
			t.Errorf("step %s status = %s, want completed", step.Name, step.Status)
		}
		if step.CompletedAt == nil {
			t.Errorf("step %s missing CompletedAt", step.Name)
		}
	}
}

func TestOrchestratorStageFailureDoesNotHaltOthers(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGenerator()
	gen.setAllStages(0.9)
	gen.errs[SchemaSkills] = errors.New("upstream 500")
	jobs := repository.NewMemoryJobStore()
	jobs.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")

	o := NewOrchestrator(gen, jobs, testExtractionConfig(), testLogger())
	state := &domain.ExtractionState{Text: "doc"}
	o.Run(ctx, "job-1", state, nil)

	if !state.Skills.Failed() {
		t.Error("skills stage should have failed")
	}
	if state.Metadata.Failed() || state.Requirements.Failed() {
		t.Error("healthy stages were dragged down by a sibling failure")
	}

	job, _ := jobs.Get(ctx, "job-1")
	var skillsStep *domain.ProcessingStep
	for i := range job.Steps {
		if job.Steps[i].Name == StageSkills {
			skillsStep = &job.Steps[i]
		}
	}
	if skillsStep == nil {
		t.Fatal("skills step missing from the audit trail")
	}
	if skillsStep.Status != domain.StepStatusFailed {
		t.Errorf("skills step status = %s, want failed", skillsStep.Status)
	}
	if skillsStep.Error == "" {
		t.Error("skills step missing its error")
	}
	// A failed stage still counts toward progress.
	if len(job.Progress.CompletedNodes) != TotalStages {
		t.Errorf("completedNodes = %v", job.Progress.CompletedNodes)
	}
}

func TestOrchestratorHonorsDisabledNodes(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGenerator()
	gen.setAllStages(0.9)
	jobs := repository.NewMemoryJobStore()
	jobs.Create(ctx, "job-1", domain.JobTypeJobDescription, "", "")

	o := NewOrchestrator(gen, jobs, testExtractionConfig(), testLogger())
	state := &domain.ExtractionState{Text: "doc"}
	o.Run(ctx, "job-1", state, []string{StageSkills})

	if gen.callCount(SchemaSkills) != 0 {
		t.Errorf("disabled stage was invoked %d times", gen.callCount(SchemaSkills))
	}
	if state.Skills.Failed() {
		t.Error("disabled stage must not count as failed")
	}
	if state.Skills.Evaluation.ConfidenceScore != 0 {
		t.Errorf("disabled stage confidence = %f", state.Skills.Evaluation.ConfidenceScore)
	}

	job, _ := jobs.Get(ctx, "job-1")
	for _, step := range job.Steps {
		if step.Name == StageSkills && step.Status != domain.StepStatusSkipped {
			t.Errorf("skills step status = %s, want skipped", step.Status)
		}
	}
}
