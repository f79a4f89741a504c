package prompts

// ============================================================================
// Shared Lexicons
// ============================================================================

// ExperienceKeywords are scanned against the requirements "required" list to
// derive the experience field of the merged record. First match wins.
var ExperienceKeywords = []string{
	"years of experience", "years' experience", "years experience",
	"year of experience", "yoe", "proven experience", "hands-on experience",
	"professional experience", "industry experience", "track record",
}

// EducationKeywords are scanned against the requirements "required" list to
// derive the education field of the merged record. First match wins.
var EducationKeywords = []string{
	"bachelor", "master", "phd", "ph.d", "doctorate", "degree",
	"bs ", "b.s", "ms ", "m.s", "mba", "diploma", "computer science degree",
}

// ============================================================================
// Evaluation block (shared by every extraction stage)
// ============================================================================

// evaluationInstruction tells the model how to self-assess its extraction.
const evaluationInstruction = `After extracting, evaluate your own output and fill the "evaluation" object:
- relevanceScore: how relevant the extracted fields are to the document (0.0-1.0)
- confidenceScore: how confident you are that the values are correct (0.0-1.0)
- groundingScore: how directly each value is supported by document text (0.0-1.0)
- completenessScore: how completely the document's information was captured (0.0-1.0)
- issues: array of strings describing blocking problems (empty if none)
- warnings: array of strings describing non-blocking concerns (empty if none)

Respond with a single JSON object and nothing else. No markdown fences, no commentary.`

// ============================================================================
// Metadata Stage
// ============================================================================

// MetadataSystemPrompt extracts the posting's headline facts.
const MetadataSystemPrompt = `You are a job-description analyst. Extract the headline metadata of the job posting from the document provided by the user.

Fill the "data" object:
- title: the job title exactly as posted
- company: the hiring company name
- location: city/region/country if stated, empty string otherwise
- salary: the salary or salary range as written, empty string otherwise
- employmentType: one of "full_time", "part_time", "contract", "internship", or empty
- workArrangement: one of "onsite", "hybrid", "remote", or empty
- description: a faithful 2-4 sentence summary of the role

Never invent values. A field the document does not state stays an empty string.

` + evaluationInstruction

// MetadataSchema validates the metadata stage output.
const MetadataSchema = `{
  "type": "object",
  "required": ["data", "evaluation"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["title", "company"],
      "properties": {
        "title": {"type": "string"},
        "company": {"type": "string"},
        "location": {"type": "string"},
        "salary": {"type": "string"},
        "employmentType": {"type": "string"},
        "workArrangement": {"type": "string"},
        "description": {"type": "string"}
      }
    },
    "evaluation": {"$ref": "#/$defs/evaluation"}
  },
  "$defs": {
    "evaluation": {
      "type": "object",
      "required": ["relevanceScore", "confidenceScore", "groundingScore", "completenessScore"],
      "properties": {
        "relevanceScore": {"type": "number", "minimum": 0, "maximum": 1},
        "confidenceScore": {"type": "number", "minimum": 0, "maximum": 1},
        "groundingScore": {"type": "number", "minimum": 0, "maximum": 1},
        "completenessScore": {"type": "number", "minimum": 0, "maximum": 1},
        "issues": {"type": "array", "items": {"type": "string"}},
        "warnings": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// ============================================================================
// Skills Stage
// ============================================================================

// SkillsSystemPrompt extracts the skill list.
const SkillsSystemPrompt = `You are a job-description analyst. Extract every skill the job posting asks for, technical and non-technical.

Fill the "data" object:
- skills: array of skill names, each a short canonical phrase ("Go", "PostgreSQL", "stakeholder management"). Deduplicate. Keep the document's own terminology where it is already canonical.

Only list skills the document actually mentions.

` + evaluationInstruction

// SkillsSchema validates the skills stage output.
const SkillsSchema = `{
  "type": "object",
  "required": ["data", "evaluation"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["skills"],
      "properties": {
        "skills": {"type": "array", "items": {"type": "string"}}
      }
    },
    "evaluation": {"$ref": "#/$defs/evaluation"}
  },
  "$defs": {
    "evaluation": {
      "type": "object",
      "required": ["relevanceScore", "confidenceScore", "groundingScore", "completenessScore"],
      "properties": {
        "relevanceScore": {"type": "number", "minimum": 0, "maximum": 1},
        "confidenceScore": {"type": "number", "minimum": 0, "maximum": 1},
        "groundingScore": {"type": "number", "minimum": 0, "maximum": 1},
        "completenessScore": {"type": "number", "minimum": 0, "maximum": 1},
        "issues": {"type": "array", "items": {"type": "string"}},
        "warnings": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// ============================================================================
// Requirements Stage
// ============================================================================

// RequirementsSystemPrompt extracts required and preferred qualifications.
const RequirementsSystemPrompt = `You are a job-description analyst. Extract the qualifications the job posting lists.

Fill the "data" object:
- required: array of must-have qualifications, one requirement per entry, phrased as in the document (keep experience durations and degree names verbatim)
- preferred: array of nice-to-have qualifications

Keep entries atomic: split compound bullet points into separate entries. Do not classify a qualification as required unless the document marks it as such.

` + evaluationInstruction

// RequirementsSchema validates the requirements stage output.
const RequirementsSchema = `{
  "type": "object",
  "required": ["data", "evaluation"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["required"],
      "properties": {
        "required": {"type": "array", "items": {"type": "string"}},
        "preferred": {"type": "array", "items": {"type": "string"}}
      }
    },
    "evaluation": {"$ref": "#/$defs/evaluation"}
  },
  "$defs": {
    "evaluation": {
      "type": "object",
      "required": ["relevanceScore", "confidenceScore", "groundingScore", "completenessScore"],
      "properties": {
        "relevanceScore": {"type": "number", "minimum": 0, "maximum": 1},
        "confidenceScore": {"type": "number", "minimum": 0, "maximum": 1},
        "groundingScore": {"type": "number", "minimum": 0, "maximum": 1},
        "completenessScore": {"type": "number", "minimum": 0, "maximum": 1},
        "issues": {"type": "array", "items": {"type": "string"}},
        "warnings": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// ============================================================================
// Match Scoring
// ============================================================================

// MatchSystemPrompt scores a candidate profile against a job posting.
const MatchSystemPrompt = `You are a recruiting analyst. Score how well the candidate profile matches the job posting provided by the user.

Respond with a single JSON object and nothing else:
- matchScore: overall fit from 0 (no fit) to 100 (ideal fit)
- matchReasons: array of short strings explaining the strongest reasons for the score
- skillGaps: array of required skills or qualifications the candidate is missing (empty if none)

Base the score only on the provided profile and posting. Penalize missing required qualifications more than missing preferred ones.`

// MatchSchema validates the match scorer output.
const MatchSchema = `{
  "type": "object",
  "required": ["matchScore", "matchReasons", "skillGaps"],
  "properties": {
    "matchScore": {"type": "number", "minimum": 0, "maximum": 100},
    "matchReasons": {"type": "array", "items": {"type": "string"}},
    "skillGaps": {"type": "array", "items": {"type": "string"}}
  }
}`

// ============================================================================
// Interview Questions
// ============================================================================

// QuestionsSystemPrompt generates suggested screening questions from an
// extracted posting. The output is regenerated on every completion and is
// never cached alongside the extraction.
const QuestionsSystemPrompt = `You are an interview designer. Given the structured job posting provided by the user, write screening interview questions for a first-round call.

Respond with a single JSON object and nothing else:
- questions: array of 5-8 open-ended questions, each tied to a specific skill or requirement of the posting, ordered from general to specific

Avoid yes/no questions and avoid questions the posting itself answers.`

// QuestionsSchema validates the question generator output.
const QuestionsSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {"type": "array", "items": {"type": "string"}, "minItems": 1}
  }
}`
