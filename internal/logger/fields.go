package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the processing job ID
	FieldJobID = "job_id"

	// FieldStage is the extractor stage name
	FieldStage = "stage"

	// FieldContentHash is the document content hash
	FieldContentHash = "content_hash"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldWebhookURL is the delivery target URL
	FieldWebhookURL = "webhook_url"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldAttempts is the number of attempts made
	FieldAttempts = "attempts"

	// FieldConfidence is an extraction confidence score
	FieldConfidence = "confidence"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
