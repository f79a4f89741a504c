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

// MatchScorer scores a candidate profile against a job record. Unlike the
// extraction stages this is a single generation call with no retry:
// malformed output is a hard error the caller must isolate per candidate.
type MatchScorer struct {
	generator llm.Generator
}

// NewMatchScorer creates a scorer bound to a generator.
func NewMatchScorer(gen llm.Generator) *MatchScorer {
	return &MatchScorer{generator: gen}
}

// Score evaluates how well the candidate fits the job and returns a score
// in [0, 100] with supporting reasons and skill gaps.
func (s *MatchScorer) Score(ctx context.Context, candidate *domain.CandidateProfile, jobTitle string, requirements []string, description string) (*domain.MatchResult, error) {
	raw, err := s.generator.Generate(ctx, llm.Request{
		System:     prompts.MatchSystemPrompt,
		Document:   buildMatchDocument(candidate, jobTitle, requirements, description),
		SchemaName: SchemaMatch,
		MaxTokens:  600,
	})
	if err != nil {
		return nil, fmt.Errorf("match scoring failed: %w", err)
	}

	var result domain.MatchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode match result: %w", err)
	}

	if result.MatchScore < 0 {
		result.MatchScore = 0
	}
	if result.MatchScore > 100 {
		result.MatchScore = 100
	}
	return &result, nil
}

func buildMatchDocument(candidate *domain.CandidateProfile, jobTitle string, requirements []string, description string) string {
	var b strings.Builder

	b.WriteString("## Job\n")
	b.WriteString("Title: " + jobTitle + "\n")
	if len(requirements) > 0 {
		b.WriteString("Requirements:\n")
		for _, r := range requirements {
			b.WriteString("- " + r + "\n")
		}
	}
	if description != "" {
		b.WriteString("Description:\n" + description + "\n")
	}

	b.WriteString("\n## Candidate\n")
	if candidate.Name != "" {
		b.WriteString("Name: " + candidate.Name + "\n")
	}
	if candidate.Summary != "" {
		b.WriteString("Summary: " + candidate.Summary + "\n")
	}
	if len(candidate.Skills) > 0 {
		b.WriteString("Skills: " + strings.Join(candidate.Skills, ", ") + "\n")
	}
	if candidate.Experience != "" {
		b.WriteString("Experience: " + candidate.Experience + "\n")
	}
	if candidate.Education != "" {
		b.WriteString("Education: " + candidate.Education + "\n")
	}
	return b.String()
}
