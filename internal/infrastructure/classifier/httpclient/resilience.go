package httpclient

import (
	"context"
	"errors"

	"github.com/kirillkom/request-classifier-console/internal/infrastructure/resilience"
)

// classifyTransportError feeds the circuit breaker. Nothing is marked
// retryable: a failed submission is reported, never repeated.
func classifyTransportError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return resilience.ErrorClassification{RecordFailure: isServerFailure(respErr.StatusCode)}
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

func isServerFailure(statusCode int) bool {
	return statusCode >= 500 || statusCode == 0
}
