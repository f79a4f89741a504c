package domain

// Evaluation is the per-stage self-assessment returned alongside extracted
// data. All scores are in [0, 1].
type Evaluation struct {
	RelevanceScore    float64  `json:"relevanceScore"`
	ConfidenceScore   float64  `json:"confidenceScore"`
	GroundingScore    float64  `json:"groundingScore"`
	CompletenessScore float64  `json:"completenessScore"`
	Issues            []string `json:"issues"`
	Warnings          []string `json:"warnings"`
}

// ExtractionResult holds one stage's typed output plus its evaluation.
// A failed stage carries defaulted data, a zeroed evaluation with the
// failure recorded in Issues, and a non-empty Error. It never aborts
// the pipeline.
type ExtractionResult[T any] struct {
	Data       T          `json:"data"`
	Evaluation Evaluation `json:"evaluation"`
	Error      string     `json:"error,omitempty"`
}

// Failed reports whether the stage recorded a failure.
func (r ExtractionResult[T]) Failed() bool {
	return r.Error != ""
}

// JobMetadata is the Metadata stage payload.
type JobMetadata struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location,omitempty"`
	Salary          string `json:"salary,omitempty"`
	EmploymentType  string `json:"employmentType,omitempty"`
	WorkArrangement string `json:"workArrangement,omitempty"`
	Description     string `json:"description,omitempty"`
}

// SkillSet is the Skills stage payload.
type SkillSet struct {
	Skills []string `json:"skills"`
}

// RequirementList is the Requirements stage payload.
type RequirementList struct {
	Required []string `json:"required"`
	Preferred []string `json:"preferred,omitempty"`
}

// ExtractionState is the working record threaded through one pipeline run.
// The orchestrator owns it for the duration of the run; the aggregator is
// the only writer of JobData and Validation.
type ExtractionState struct {
	DocumentRef string
	MimeType    string
	Text        string
	Hints       map[string]string

	Metadata     ExtractionResult[JobMetadata]
	Skills       ExtractionResult[SkillSet]
	Requirements ExtractionResult[RequirementList]

	JobData    *JobPosting
	Validation *ValidationSummary
}

// JobRequirements is the requirements slice of the merged record.
// Experience and Education are derived by keyword scan of Required.
type JobRequirements struct {
	Required   []string `json:"required"`
	Preferred  []string `json:"preferred,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Education  string   `json:"education,omitempty"`
}

// JobPosting is the merged structured record produced by the aggregator.
type JobPosting struct {
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location,omitempty"`
	Salary          string          `json:"salary,omitempty"`
	EmploymentType  string          `json:"employmentType,omitempty"`
	WorkArrangement string          `json:"workArrangement,omitempty"`
	Description     string          `json:"description"`
	Skills          []string        `json:"skills"`
	Requirements    JobRequirements `json:"requirements"`
}

// ValidationSummary is the aggregator's cross-validation verdict.
type ValidationSummary struct {
	IsValid           bool     `json:"isValid"`
	OverallConfidence float64  `json:"overallConfidence"`
	Issues            []string `json:"issues"`
	Warnings          []string `json:"warnings"`
}

// ExtractionOutput is the terminal result attached to a successful job.
// SuggestedQuestions are generated fresh on every completion and are
// never written to the content cache.
type ExtractionOutput struct {
	Hash               string            `json:"hash"`
	JobData            JobPosting        `json:"extractedData"`
	Validation         ValidationSummary `json:"validation"`
	SuggestedQuestions []string          `json:"suggestedQuestions,omitempty"`
	Cached             bool              `json:"cached,omitempty"`
}

// Clone returns a deep copy of the output.
func (o *ExtractionOutput) Clone() *ExtractionOutput {
	cp := *o
	cp.JobData.Skills = append([]string(nil), o.JobData.Skills...)
	cp.JobData.Requirements.Required = append([]string(nil), o.JobData.Requirements.Required...)
	cp.JobData.Requirements.Preferred = append([]string(nil), o.JobData.Requirements.Preferred...)
	cp.Validation.Issues = append([]string(nil), o.Validation.Issues...)
	cp.Validation.Warnings = append([]string(nil), o.Validation.Warnings...)
	cp.SuggestedQuestions = append([]string(nil), o.SuggestedQuestions...)
	return &cp
}
