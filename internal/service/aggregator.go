package service

import (
	"strings"

	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/prompts"
)

// UnknownField is the placeholder used when the metadata stage could not
// produce a title or company.
const UnknownField = "Unknown"

// Aggregate merges the three stage results into a single job record and
// cross-validates it. It writes JobData and Validation on the state and is
// the only component that does so. It tolerates any mix of succeeded and
// failed stages.
//
// validityThreshold is the minimum overall confidence for isValid. This is
// a separate gate from the completed/needs_review decision in the pipeline,
// which uses its own higher threshold.
func Aggregate(state *domain.ExtractionState, validityThreshold float64) {
	meta := state.Metadata
	skills := state.Skills
	reqs := state.Requirements

	issues := make([]string, 0, 2)
	warnings := make([]string, 0, 2)

	if meta.Failed() {
		issues = append(issues, "metadata extraction failed: "+meta.Error)
	}
	if skills.Failed() {
		warnings = append(warnings, "skills extraction failed: "+skills.Error)
	}
	if reqs.Failed() {
		warnings = append(warnings, "requirements extraction failed: "+reqs.Error)
	}

	posting := &domain.JobPosting{
		Title:           defaultIfEmpty(meta.Data.Title, UnknownField),
		Company:         defaultIfEmpty(meta.Data.Company, UnknownField),
		Location:        meta.Data.Location,
		Salary:          meta.Data.Salary,
		EmploymentType:  meta.Data.EmploymentType,
		WorkArrangement: meta.Data.WorkArrangement,
		Description:     meta.Data.Description,
		Skills:          skills.Data.Skills,
		Requirements: domain.JobRequirements{
			Required:   reqs.Data.Required,
			Preferred:  reqs.Data.Preferred,
			Experience: firstKeywordMatch(reqs.Data.Required, prompts.ExperienceKeywords),
			Education:  firstKeywordMatch(reqs.Data.Required, prompts.EducationKeywords),
		},
	}
	if posting.Skills == nil {
		posting.Skills = []string{}
	}
	if posting.Requirements.Required == nil {
		posting.Requirements.Required = []string{}
	}

	if posting.Title == UnknownField && posting.Company == UnknownField {
		issues = append(issues, "critical metadata missing: title and company could not be extracted")
	}
	if len(posting.Skills) == 0 {
		warnings = append(warnings, "no skills were extracted from the document")
	}

	confidence := (meta.Evaluation.ConfidenceScore +
		skills.Evaluation.ConfidenceScore +
		reqs.Evaluation.ConfidenceScore) / 3

	state.JobData = posting
	state.Validation = &domain.ValidationSummary{
		IsValid:           len(issues) == 0 && confidence >= validityThreshold,
		OverallConfidence: confidence,
		Issues:            issues,
		Warnings:          warnings,
	}
}

func defaultIfEmpty(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// firstKeywordMatch returns the first entry of items containing any of the
// keywords, scanning items in order. Matching is case-insensitive.
func firstKeywordMatch(items, keywords []string) string {
	for _, item := range items {
		lower := strings.ToLower(item)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return item
			}
		}
	}
	return ""
}
