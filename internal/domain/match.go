package domain

// CandidateProfile is the candidate record scored against a job posting.
// It is supplied by the caller and not persisted by this service.
type CandidateProfile struct {
	Name       string   `json:"name,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience,omitempty"`
	Education  string   `json:"education,omitempty"`
}

// MatchResult is the outcome of scoring one candidate against one job.
// MatchScore is in [0, 100].
type MatchResult struct {
	MatchScore   float64  `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
	SkillGaps    []string `json:"skillGaps"`
}
