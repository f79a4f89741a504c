package service

import (
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/prompts"
)

// The three concrete extractor stages. Each supplies its own prompt, output
// schema, and default value; the wrapping behavior in RunStage is identical
// for all of them.

func metadataStage() Stage[domain.JobMetadata] {
	return Stage[domain.JobMetadata]{
		Name:       StageMetadata,
		Prompt:     prompts.MetadataSystemPrompt,
		SchemaName: SchemaMetadata,
		Default:    domain.JobMetadata{},
		MaxTokens:  800,
	}
}

func skillsStage() Stage[domain.SkillSet] {
	return Stage[domain.SkillSet]{
		Name:       StageSkills,
		Prompt:     prompts.SkillsSystemPrompt,
		SchemaName: SchemaSkills,
		Default:    domain.SkillSet{Skills: []string{}},
		MaxTokens:  600,
	}
}

func requirementsStage() Stage[domain.RequirementList] {
	return Stage[domain.RequirementList]{
		Name:       StageRequirements,
		Prompt:     prompts.RequirementsSystemPrompt,
		SchemaName: SchemaRequirements,
		Default:    domain.RequirementList{Required: []string{}},
		MaxTokens:  800,
	}
}
