package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/core/ports"
)

type classifierFake struct {
	mu          sync.Mutex
	calls       int
	email       domain.File
	attachments []domain.File
	ctxErr      error

	result  *domain.ClassificationResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *classifierFake) Classify(ctx context.Context, email domain.File, attachments []domain.File) (*domain.ClassificationResult, error) {
	f.mu.Lock()
	f.calls++
	f.email = email
	f.attachments = attachments
	f.ctxErr = ctx.Err()
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *classifierFake) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type previewStoreFake struct {
	mu   sync.Mutex
	seq  int
	live map[string]domain.File
}

func newPreviewStoreFake() *previewStoreFake {
	return &previewStoreFake{live: make(map[string]domain.File)}
}

func (f *previewStoreFake) Acquire(file domain.File) ports.PreviewHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "h" + strconv.Itoa(f.seq)
	f.live[id] = file
	return ports.PreviewHandle{ID: id, URL: "/preview/content/" + id}
}

func (f *previewStoreFake) Revoke(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, id)
}

func (f *previewStoreFake) liveFiles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.live))
	for _, file := range f.live {
		names = append(names, file.Name)
	}
	return names
}

type textDecoderFake struct {
	text    string
	err     error
	release chan struct{}
}

func (f *textDecoderFake) Decode(ctx context.Context, _ domain.File) (string, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type pdfInspectorFake struct {
	pages int
	err   error
}

func (f pdfInspectorFake) PageCount(domain.File) (int, error) {
	return f.pages, f.err
}

type observerFake struct {
	mu          sync.Mutex
	submissions []string
	previews    []string
}

func (f *observerFake) ObserveSubmission(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, outcome)
}

func (f *observerFake) ObservePreviewOpened(category string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previews = append(f.previews, category)
}

type eventPublisherFake struct {
	mu     sync.Mutex
	events []domain.ClassificationEvent
}

func (f *eventPublisherFake) PublishClassification(_ context.Context, event domain.ClassificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func textFile(name string) domain.File {
	return domain.File{Name: name, MediaType: "text/plain", Content: []byte("body of " + name)}
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }
