package domain

import "time"

// WebhookPayload is the wire record posted to the caller's webhook URL
// once a job reaches a terminal state.
type WebhookPayload struct {
	ProcessingID         string             `json:"processingId"`
	CorrelationID        string             `json:"correlationId,omitempty"`
	Type                 JobType            `json:"type"`
	Status               JobStatus          `json:"status"`
	ProcessedAt          time.Time          `json:"processedAt"`
	ProcessingDurationMs int64              `json:"processingDurationMs"`
	Result               *WebhookResult     `json:"result,omitempty"`
	Validation           *ValidationSummary `json:"validation,omitempty"`
	Error                *JobError          `json:"error,omitempty"`
	Steps                []ProcessingStep   `json:"processingSteps"`
}

// WebhookResult is the result slice of the webhook payload.
type WebhookResult struct {
	Hash               string     `json:"hash"`
	ExtractedData      JobPosting `json:"extractedData"`
	SuggestedQuestions []string   `json:"suggestedQuestions,omitempty"`
}

// DeliveryResult reports the outcome of delivering one webhook payload.
type DeliveryResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
	Attempts   int    `json:"attempts"`
}
