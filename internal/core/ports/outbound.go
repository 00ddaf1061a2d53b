package ports

import (
	"context"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

// ClassificationClient submits one email plus attachments to the remote
// classification endpoint.
type ClassificationClient interface {
	Classify(ctx context.Context, email domain.File, attachments []domain.File) (*domain.ClassificationResult, error)
}

// PreviewHandle is a revocable reference to a temporary viewable resource.
type PreviewHandle struct {
	ID  string
	URL string
}

// PreviewStore issues and revokes viewable resources for tracked files.
type PreviewStore interface {
	Acquire(file domain.File) PreviewHandle
	Revoke(id string)
}

// TextDecoder reads a text file's content for inline display.
type TextDecoder interface {
	Decode(ctx context.Context, file domain.File) (string, error)
}

// PDFInspector reports document metadata shown next to a PDF preview.
type PDFInspector interface {
	PageCount(file domain.File) (int, error)
}

// EventPublisher announces finished submissions.
type EventPublisher interface {
	PublishClassification(ctx context.Context, event domain.ClassificationEvent) error
}

// FormObserver receives form activity for metrics.
type FormObserver interface {
	ObserveSubmission(outcome string, duration time.Duration)
	ObservePreviewOpened(category string)
}
