package service

import (
	"github.com/talentwire/docpipe/internal/llm"
	"github.com/talentwire/docpipe/internal/prompts"
)

// Schema names registered for structured generation.
const (
	SchemaMetadata     = "metadata"
	SchemaSkills       = "skills"
	SchemaRequirements = "requirements"
	SchemaMatch        = "match"
	SchemaQuestions    = "questions"
)

// NewSchemaSet compiles every schema the service generates against.
func NewSchemaSet() (*llm.SchemaSet, error) {
	return llm.NewSchemaSet(map[string]string{
		SchemaMetadata:     prompts.MetadataSchema,
		SchemaSkills:       prompts.SkillsSchema,
		SchemaRequirements: prompts.RequirementsSchema,
		SchemaMatch:        prompts.MatchSchema,
		SchemaQuestions:    prompts.QuestionsSchema,
	})
}
