package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/talentwire/docpipe/internal/cache"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/repository"
	"github.com/talentwire/docpipe/internal/storage"
)

// webhookRecorder captures payloads delivered during a test.
type webhookRecorder struct {
	mu       sync.Mutex
	payloads []domain.WebhookPayload
	srv      *httptest.Server
}

func newWebhookRecorder() *webhookRecorder {
	rec := &webhookRecorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload domain.WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, payload)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	return rec
}

func (r *webhookRecorder) all() []domain.WebhookPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.WebhookPayload(nil), r.payloads...)
}

type testPipeline struct {
	svc  *ProcessingService
	gen  *fakeGenerator
	jobs *repository.MemoryJobStore
	rec  *webhookRecorder
}

func newTestPipeline(t *testing.T) *testPipeline {
	t.Helper()

	gen := newFakeGenerator()
	gen.setAllStages(0.9)
	jobs := repository.NewMemoryJobStore()
	rec := newWebhookRecorder()
	t.Cleanup(rec.srv.Close)

	cfg := testExtractionConfig()
	log := testLogger()
	svc := NewProcessingService(
		jobs,
		cache.NewMemoryCache(),
		storage.NewMemoryStore(),
		NewOrchestrator(gen, jobs, cfg, log),
		NewQuestionGenerator(gen),
		NewWebhookDeliverer(testWebhookConfig()),
		cfg,
		"test-model",
		log,
	)

	return &testPipeline{svc: svc, gen: gen, jobs: jobs, rec: rec}
}

func (p *testPipeline) submit(t *testing.T, data []byte) *SubmitResponse {
	t.Helper()
	resp, err := p.svc.Submit(context.Background(), &SubmitRequest{
		FileName:   "posting.txt",
		MimeType:   "text/plain",
		Data:       data,
		WebhookURL: p.rec.srv.URL,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return resp
}

func TestPipelineProcessesDocument(t *testing.T) {
	p := newTestPipeline(t)

	resp := p.submit(t, []byte("We are hiring a Senior Go Engineer at Acme in Berlin."))
	if resp.ProcessingID == "" {
		t.Fatal("no processing id returned")
	}
	if resp.Status != "processing" {
		t.Errorf("status = %q, want processing", resp.Status)
	}
	if resp.Cached {
		t.Error("first submission reported cached")
	}

	p.svc.Wait()

	job, err := p.jobs.Get(context.Background(), resp.ProcessingID)
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("job status = %s, want completed (error: %+v)", job.Status, job.Error)
	}
	if job.CompletedAt == nil || job.StartedAt == nil {
		t.Error("terminal job missing timestamps")
	}
	if job.Result == nil {
		t.Fatal("completed job has no result")
	}
	if job.Result.JobData.Title != "Senior Go Engineer" {
		t.Errorf("extracted title = %q", job.Result.JobData.Title)
	}
	if len(job.Result.SuggestedQuestions) != 2 {
		t.Errorf("suggested questions = %v", job.Result.SuggestedQuestions)
	}
	if job.ContentHash == "" {
		t.Error("content hash not recorded")
	}

	payloads := p.rec.all()
	if len(payloads) != 1 {
		t.Fatalf("expected 1 webhook delivery, got %d", len(payloads))
	}
	payload := payloads[0]
	if payload.ProcessingID != resp.ProcessingID {
		t.Errorf("webhook processingId = %q", payload.ProcessingID)
	}
	if payload.Status != domain.JobStatusCompleted {
		t.Errorf("webhook status = %s", payload.Status)
	}
	if payload.Result == nil || payload.Validation == nil {
		t.Error("webhook payload missing result or validation")
	}
	if len(payload.Steps) != TotalStages {
		t.Errorf("webhook audit trail has %d steps, want %d", len(payload.Steps), TotalStages)
	}
}

func TestPipelineCacheHitSkipsStages(t *testing.T) {
	p := newTestPipeline(t)
	data := []byte("Identical job description bytes.")

	first := p.submit(t, data)
	p.svc.Wait()

	second := p.submit(t, data)
	p.svc.Wait()

	if !second.Cached {
		t.Error("second submission of identical bytes not reported cached")
	}
	if second.ProcessingID == first.ProcessingID {
		t.Error("cache hit reused the processing id")
	}

	// Stages ran once; questions are regenerated on every completion.
	if got := p.gen.callCount(SchemaMetadata); got != 1 {
		t.Errorf("metadata stage invoked %d times, want 1", got)
	}
	if got := p.gen.callCount(SchemaSkills); got != 1 {
		t.Errorf("skills stage invoked %d times, want 1", got)
	}
	if got := p.gen.callCount(SchemaQuestions); got != 2 {
		t.Errorf("question generation invoked %d times, want 2", got)
	}

	job, _ := p.jobs.Get(context.Background(), second.ProcessingID)
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("cached job status = %s", job.Status)
	}
	if job.Result == nil || !job.Result.Cached {
		t.Error("cached job result not flagged as cached")
	}
	if len(job.Result.SuggestedQuestions) == 0 {
		t.Error("cached job missing freshly generated questions")
	}
}

func TestPipelineLowConfidenceNeedsReview(t *testing.T) {
	p := newTestPipeline(t)
	p.gen.setAllStages(0.65)

	resp := p.submit(t, []byte("A vague posting."))
	p.svc.Wait()

	job, _ := p.jobs.Get(context.Background(), resp.ProcessingID)
	if job.Status != domain.JobStatusNeedsReview {
		t.Fatalf("job status = %s, want needs_review", job.Status)
	}
	// 0.65 clears the validity gate but not the review gate.
	if job.Result == nil || !job.Result.Validation.IsValid {
		t.Error("job should still be valid at 0.65 confidence")
	}

	payloads := p.rec.all()
	if len(payloads) != 1 || payloads[0].Status != domain.JobStatusNeedsReview {
		t.Errorf("webhook payloads: %+v", payloads)
	}
}

func TestPipelinePerJobThresholdOverride(t *testing.T) {
	p := newTestPipeline(t)

	threshold := 0.95
	resp, err := p.svc.Submit(context.Background(), &SubmitRequest{
		FileName:            "posting.txt",
		MimeType:            "text/plain",
		Data:                []byte("A strong posting."),
		WebhookURL:          p.rec.srv.URL,
		ConfidenceThreshold: &threshold,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	p.svc.Wait()

	job, _ := p.jobs.Get(context.Background(), resp.ProcessingID)
	if job.Status != domain.JobStatusNeedsReview {
		t.Errorf("job status = %s, want needs_review under a 0.95 override", job.Status)
	}
}

func TestPipelineDisabledNodesSkipStages(t *testing.T) {
	p := newTestPipeline(t)

	resp, err := p.svc.Submit(context.Background(), &SubmitRequest{
		FileName:      "posting.txt",
		MimeType:      "text/plain",
		Data:          []byte("A posting."),
		WebhookURL:    p.rec.srv.URL,
		DisabledNodes: []string{StageRequirements},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	p.svc.Wait()

	if got := p.gen.callCount(SchemaRequirements); got != 0 {
		t.Errorf("disabled stage invoked %d times", got)
	}
	job, _ := p.jobs.Get(context.Background(), resp.ProcessingID)
	if !job.Status.IsTerminal() {
		t.Errorf("job status = %s, want terminal", job.Status)
	}
}

func TestPipelineUnreadableDocumentFailsJob(t *testing.T) {
	p := newTestPipeline(t)

	resp := p.submit(t, []byte{0xff, 0xfe, 0x00, 0x01})
	p.svc.Wait()

	job, _ := p.jobs.Get(context.Background(), resp.ProcessingID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("job status = %s, want failed", job.Status)
	}
	if job.Error == nil {
		t.Fatal("failed job has no error")
	}
	if job.Error.Code != "EXTRACTION_FAILED" {
		t.Errorf("error code = %q", job.Error.Code)
	}
	if !job.Error.Retryable {
		t.Error("extraction failure should be marked retryable")
	}
	if job.CompletedAt == nil {
		t.Error("failed job missing CompletedAt")
	}

	// No stage ever ran.
	if got := p.gen.callCount(SchemaMetadata); got != 0 {
		t.Errorf("metadata stage invoked %d times on an unreadable document", got)
	}

	payloads := p.rec.all()
	if len(payloads) != 1 {
		t.Fatalf("expected a failure webhook, got %d deliveries", len(payloads))
	}
	if payloads[0].Status != domain.JobStatusFailed || payloads[0].Error == nil {
		t.Errorf("failure payload: %+v", payloads[0])
	}
}

func TestPipelineQuestionFailureDoesNotFailJob(t *testing.T) {
	p := newTestPipeline(t)
	p.gen.errs[SchemaQuestions] = errTest("questions provider down")

	resp := p.submit(t, []byte("A posting."))
	p.svc.Wait()

	job, _ := p.jobs.Get(context.Background(), resp.ProcessingID)
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("job status = %s, want completed", job.Status)
	}
	if job.Result == nil {
		t.Fatal("job has no result")
	}
	if len(job.Result.SuggestedQuestions) != 0 {
		t.Errorf("questions present despite generation failure: %v", job.Result.SuggestedQuestions)
	}
}

func TestPipelineInvalidResultNotCached(t *testing.T) {
	p := newTestPipeline(t)
	p.gen.errs[SchemaMetadata] = errTest("metadata provider down")
	data := []byte("Bytes that fail metadata extraction.")

	p.submit(t, data)
	p.svc.Wait()

	// The degraded result was not pinned; a resubmission runs the stages
	// again.
	delete(p.gen.errs, SchemaMetadata)
	second := p.submit(t, data)
	if second.Cached {
		t.Error("degraded extraction was cached")
	}
	p.svc.Wait()

	if got := p.gen.callCount(SchemaSkills); got != 2 {
		t.Errorf("skills stage invoked %d times, want 2", got)
	}
	job, _ := p.jobs.Get(context.Background(), second.ProcessingID)
	if job.Status != domain.JobStatusCompleted {
		t.Errorf("second run status = %s, want completed", job.Status)
	}
}

func errTest(msg string) error {
	return errors.New(msg)
}
