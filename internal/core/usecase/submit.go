package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

const (
	rateLimitIndicator = "Rate limit exceeded"
	fallbackMessage    = "An unexpected error occurred"
)

// ErrorPrecedence decides which message an error response produces when it
// carries a rate-limit indicator.
type ErrorPrecedence string

const (
	// PrecedenceGeneric surfaces every error indicator as-is, rate limits included.
	PrecedenceGeneric ErrorPrecedence = "generic"
	// PrecedenceRateLimit checks for a rate limit with a retry hint before the
	// generic indicator and renders the retry delay.
	PrecedenceRateLimit ErrorPrecedence = "rate_limit"
)

func ParseErrorPrecedence(raw string) (ErrorPrecedence, error) {
	switch ErrorPrecedence(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PrecedenceGeneric:
		return PrecedenceGeneric, nil
	case PrecedenceRateLimit, "ratelimit", "rate-limit":
		return PrecedenceRateLimit, nil
	default:
		return "", fmt.Errorf("%w: unknown error precedence %q", domain.ErrInvalidInput, raw)
	}
}

func (p ErrorPrecedence) resolve(result *domain.ClassificationResult) (string, error) {
	message, _ := result.ErrorMessage()
	if p == PrecedenceRateLimit && message == rateLimitIndicator &&
		result.RetryAfter != nil && *result.RetryAfter != 0 {
		seconds := strconv.FormatFloat(*result.RetryAfter, 'f', -1, 64)
		return fmt.Sprintf("API rate limit exceeded. Please try again after %s seconds.", seconds), domain.ErrRateLimited
	}
	return message, domain.ErrApplication
}

// Submit classifies the selected files and waits for the outcome. Once the
// call is issued it runs to completion even if ctx is cancelled.
func (c *FormController) Submit(ctx context.Context) error {
	job, err := c.beginSubmit()
	if err != nil {
		return err
	}
	return c.runSubmit(context.WithoutCancel(ctx), job)
}

// SubmitAsync validates and enters the loading state, then finishes the call
// in the background. The call is not cancelled when ctx is.
func (c *FormController) SubmitAsync(ctx context.Context) error {
	job, err := c.beginSubmit()
	if err != nil {
		return err
	}
	go func() {
		_ = c.runSubmit(context.WithoutCancel(ctx), job)
	}()
	return nil
}

func (c *FormController) beginSubmit() (submitJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, err := c.state.beginSubmit()
	if err != nil {
		if domain.IsKind(err, domain.ErrNoPrimaryFile) {
			c.observeSubmission("validation_error", 0)
		}
		return submitJob{}, err
	}
	c.background.Add(1)
	return job, nil
}

func (c *FormController) runSubmit(ctx context.Context, job submitJob) error {
	defer c.background.Done()

	start := time.Now()
	result, callErr := c.deps.Classifier.Classify(ctx, job.email, job.attachments)
	duration := time.Since(start)

	event, err := c.finishSubmit(result, callErr)
	c.observeSubmission(string(event.Outcome), duration)

	if domain.IsKind(err, domain.ErrSessionClosed) {
		slog.Info("submission_discarded", "session_id", c.sessionID, "reason", "session closed")
		return err
	}

	event.SessionID = c.sessionID
	event.EmailName = job.email.Name
	event.AttachmentNames = attachmentNames(job.attachments)
	event.DurationMS = float64(duration.Microseconds()) / 1000.0
	event.OccurredAt = time.Now().UTC()
	c.publish(ctx, event)

	logAttrs := []any{
		"session_id", c.sessionID,
		"outcome", event.Outcome,
		"attachments", len(job.attachments),
		"duration_ms", event.DurationMS,
	}
	if err != nil {
		slog.Warn("submission_failed", append(logAttrs, "error", err)...)
		return err
	}
	slog.Info("submission_completed", logAttrs...)
	return nil
}

func (c *FormController) finishSubmit(result *domain.ClassificationResult, callErr error) (domain.ClassificationEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if callErr != nil {
		message := strings.TrimSpace(callErr.Error())
		if message == "" {
			message = fallbackMessage
		}
		c.applyLocked(func(s *FormState) { s.failSubmit(message) })
		if !domain.IsKind(callErr, domain.ErrTransport) {
			callErr = domain.WrapError(domain.ErrTransport, "classify", callErr)
		}
		return domain.ClassificationEvent{Outcome: domain.OutcomeTransportError, Error: message}, c.closedOr(callErr)
	}

	if result == nil {
		result = &domain.ClassificationResult{}
	}
	if _, failed := result.ErrorMessage(); failed {
		message, kind := c.deps.Precedence.resolve(result)
		c.applyLocked(func(s *FormState) { s.failSubmit(message) })
		outcome := domain.OutcomeApplicationError
		if kind == domain.ErrRateLimited {
			outcome = domain.OutcomeRateLimited
		}
		return domain.ClassificationEvent{Outcome: outcome, Error: message},
			c.closedOr(fmt.Errorf("classify: %w: %s", kind, message))
	}

	c.applyLocked(func(s *FormState) { s.completeSubmit(result) })
	return domain.ClassificationEvent{
		Outcome:        domain.OutcomeSuccess,
		RequestType:    domain.StringValue(result.RequestType),
		SubRequestType: domain.StringValue(result.SubRequestType),
		DuplicateFound: result.IsDuplicate(),
	}, c.closedOr(nil)
}

// applyLocked runs a transition unless the controller has been torn down.
func (c *FormController) applyLocked(transition func(*FormState)) {
	if c.state.Closed {
		c.state.Loading = false
		return
	}
	transition(&c.state)
}

func (c *FormController) closedOr(err error) error {
	if c.state.Closed {
		return domain.ErrSessionClosed
	}
	return err
}

func (c *FormController) publish(ctx context.Context, event domain.ClassificationEvent) {
	if c.deps.Events == nil {
		return
	}
	if err := c.deps.Events.PublishClassification(ctx, event); err != nil {
		slog.Warn("classification_event_publish_failed", "session_id", c.sessionID, "error", err)
	}
}

func (c *FormController) observeSubmission(outcome string, duration time.Duration) {
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveSubmission(outcome, duration)
	}
}

func attachmentNames(files []domain.File) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}
