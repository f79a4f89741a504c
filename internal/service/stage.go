package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/llm"
)

// Stage names double as progress node names and audit-trail step names.
const (
	StageMetadata     = "metadata_extraction"
	StageSkills       = "skills_extraction"
	StageRequirements = "requirements_extraction"
)

// TotalStages is the number of extractor stages in the pipeline.
const TotalStages = 3

// Stage describes one extractor stage: its prompt, the schema its output
// must satisfy, and the default value used when the stage fails.
type Stage[T any] struct {
	Name       string
	Prompt     string
	SchemaName string
	Default    T
	MaxTokens  int
}

// stageEnvelope is the wire shape every extraction stage returns: the typed
// payload plus the model's self-evaluation.
type stageEnvelope[T any] struct {
	Data       T                 `json:"data"`
	Evaluation domain.Evaluation `json:"evaluation"`
}

// RunStage executes one extractor stage. It never propagates an error: any
// failure (network, parse, schema) is recorded on the result with defaulted
// data and a zeroed evaluation, and the pipeline moves on.
func RunStage[T any](ctx context.Context, gen llm.Generator, attempts int, st Stage[T], document, hint string) domain.ExtractionResult[T] {
	prompt := st.Prompt
	if hint != "" {
		prompt += "\n\nAdditional context from the submitter:\n" + hint
	}

	raw, err := llm.WithRetry(ctx, attempts, st.Name, func(ctx context.Context) (json.RawMessage, error) {
		return gen.Generate(ctx, llm.Request{
			System:     prompt,
			Document:   document,
			SchemaName: st.SchemaName,
			MaxTokens:  st.MaxTokens,
		})
	})
	if err != nil {
		return failedStageResult(st.Default, err)
	}

	var envelope stageEnvelope[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return failedStageResult(st.Default, fmt.Errorf("decode %s output: %w", st.Name, err))
	}

	return domain.ExtractionResult[T]{
		Data:       envelope.Data,
		Evaluation: clampEvaluation(envelope.Evaluation),
	}
}

// failedStageResult converts a stage failure into a recorded result with
// defaulted data, zeroed scores, and the failure message in Issues.
func failedStageResult[T any](defaultValue T, err error) domain.ExtractionResult[T] {
	return domain.ExtractionResult[T]{
		Data: defaultValue,
		Evaluation: domain.Evaluation{
			Issues:   []string{err.Error()},
			Warnings: []string{},
		},
		Error: err.Error(),
	}
}

// skippedStageResult marks a disabled stage: defaulted data, zero scores,
// no error, a single warning.
func skippedStageResult[T any](defaultValue T, name string) domain.ExtractionResult[T] {
	return domain.ExtractionResult[T]{
		Data: defaultValue,
		Evaluation: domain.Evaluation{
			Issues:   []string{},
			Warnings: []string{fmt.Sprintf("stage %s disabled by submission config", name)},
		},
	}
}

// clampEvaluation bounds every score to [0, 1] and normalizes nil slices.
// Schema validation already rejects out-of-range values from the model, but
// the invariant is enforced here too so no caller depends on it.
func clampEvaluation(e domain.Evaluation) domain.Evaluation {
	e.RelevanceScore = clamp01(e.RelevanceScore)
	e.ConfidenceScore = clamp01(e.ConfidenceScore)
	e.GroundingScore = clamp01(e.GroundingScore)
	e.CompletenessScore = clamp01(e.CompletenessScore)
	if e.Issues == nil {
		e.Issues = []string{}
	}
	if e.Warnings == nil {
		e.Warnings = []string{}
	}
	return e
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
