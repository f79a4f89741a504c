package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/talentwire/docpipe/internal/llm"
	"github.com/talentwire/docpipe/internal/logger"
)

// fakeGenerator is a canned llm.Generator keyed by schema name. It counts
// calls per schema so tests can assert which stages actually ran.
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.SchemaName]++
	if err, ok := f.errs[req.SchemaName]; ok {
		return nil, err
	}
	resp, ok := f.responses[req.SchemaName]
	if !ok {
		return nil, fmt.Errorf("no canned response for schema %q", req.SchemaName)
	}
	return json.RawMessage(resp), nil
}

// generatorFunc adapts a function to the llm.Generator interface.
type generatorFunc func(ctx context.Context, req llm.Request) (json.RawMessage, error)

func (f generatorFunc) Generate(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	return f(ctx, req)
}

func (f *fakeGenerator) callCount(schema string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[schema]
}

// envelope renders a stage response with the given data and a uniform
// confidence score.
func envelope(data string, confidence float64) string {
	return fmt.Sprintf(`{
		"data": %s,
		"evaluation": {
			"relevanceScore": %[2]f,
			"confidenceScore": %[2]f,
			"groundingScore": %[2]f,
			"completenessScore": %[2]f,
			"issues": [],
			"warnings": []
		}
	}`, data, confidence)
}

// setAllStages loads canned responses for the three extractor stages plus
// question generation.
func (f *fakeGenerator) setAllStages(confidence float64) {
	f.responses[SchemaMetadata] = envelope(`{"title": "Senior Go Engineer", "company": "Acme", "location": "Berlin", "description": "Build services."}`, confidence)
	f.responses[SchemaSkills] = envelope(`{"skills": ["Go", "PostgreSQL"]}`, confidence)
	f.responses[SchemaRequirements] = envelope(`{"required": ["5+ years of experience with Go", "Bachelor degree in CS"], "preferred": ["Kubernetes"]}`, confidence)
	f.responses[SchemaQuestions] = `{"questions": ["Describe a Go service you built.", "How do you handle backpressure?"]}`
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
}
