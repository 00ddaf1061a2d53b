package domain

import "time"

type SubmissionOutcome string

const (
	OutcomeSuccess          SubmissionOutcome = "success"
	OutcomeTransportError   SubmissionOutcome = "transport_error"
	OutcomeApplicationError SubmissionOutcome = "application_error"
	OutcomeRateLimited      SubmissionOutcome = "rate_limited"
)

// ClassificationEvent describes one finished submission.
type ClassificationEvent struct {
	SessionID       string            `json:"session_id"`
	EmailName       string            `json:"email_name"`
	AttachmentNames []string          `json:"attachment_names"`
	Outcome         SubmissionOutcome `json:"outcome"`
	RequestType     string            `json:"request_type,omitempty"`
	SubRequestType  string            `json:"sub_request_type,omitempty"`
	DuplicateFound  bool              `json:"duplicate_found"`
	Error           string            `json:"error,omitempty"`
	DurationMS      float64           `json:"duration_ms"`
	OccurredAt      time.Time         `json:"occurred_at"`
}
