package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/llm"
	"github.com/talentwire/docpipe/internal/prompts"
)

// QuestionGenerator produces suggested interview questions from a merged
// job record. Questions are generated fresh on every job completion,
// including cache hits, and are never written to the content cache.
type QuestionGenerator struct {
	generator llm.Generator
}

// NewQuestionGenerator creates a generator for interview questions.
func NewQuestionGenerator(gen llm.Generator) *QuestionGenerator {
	return &QuestionGenerator{generator: gen}
}

// Suggest returns interview questions tailored to the job posting. A
// generation failure is returned to the caller, who treats questions as
// optional enrichment rather than a pipeline stage.
func (q *QuestionGenerator) Suggest(ctx context.Context, posting *domain.JobPosting) ([]string, error) {
	raw, err := q.generator.Generate(ctx, llm.Request{
		System:     prompts.QuestionsSystemPrompt,
		Document:   buildQuestionsDocument(posting),
		SchemaName: SchemaQuestions,
		MaxTokens:  800,
	})
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return out.Questions, nil
}

func buildQuestionsDocument(posting *domain.JobPosting) string {
	var b strings.Builder

	b.WriteString("Title: " + posting.Title + "\n")
	b.WriteString("Company: " + posting.Company + "\n")
	if len(posting.Skills) > 0 {
		b.WriteString("Skills: " + strings.Join(posting.Skills, ", ") + "\n")
	}
	if len(posting.Requirements.Required) > 0 {
		b.WriteString("Requirements:\n")
		for _, r := range posting.Requirements.Required {
			b.WriteString("- " + r + "\n")
		}
	}
	if posting.Description != "" {
		b.WriteString("Description:\n" + posting.Description + "\n")
	}
	return b.String()
}
