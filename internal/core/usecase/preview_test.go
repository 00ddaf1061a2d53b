package usecase

import (
	"errors"
	"testing"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

func TestOpenPreviewRevokesPreviousHandle(t *testing.T) {
	previews := newPreviewStoreFake()
	c := newControllerForTests(nil, previews)
	c.SelectPrimary(&domain.File{Name: "scan.png", MediaType: "image/png"})
	c.AppendAttachments([]domain.File{{Name: "contract.pdf", MediaType: "application/pdf"}})

	if err := c.OpenPreview(domain.SlotEmail, "scan.png"); err != nil {
		t.Fatalf("OpenPreview(A) error = %v", err)
	}
	if err := c.OpenPreview(domain.SlotAttachment, "contract.pdf"); err != nil {
		t.Fatalf("OpenPreview(B) error = %v", err)
	}

	live := previews.liveFiles()
	if len(live) != 1 || live[0] != "contract.pdf" {
		t.Fatalf("expected only contract.pdf to be live, got %v", live)
	}
	view := c.View()
	if view.Preview == nil || view.Preview.Name != "contract.pdf" || view.Preview.Category != domain.CategoryPDF {
		t.Fatalf("unexpected preview view: %+v", view.Preview)
	}
	if view.Preview.DownloadURL != view.Preview.URL+"?download=1" {
		t.Fatalf("unexpected download url %q", view.Preview.DownloadURL)
	}
}

func TestClosePreviewLeavesNoLiveHandles(t *testing.T) {
	previews := newPreviewStoreFake()
	c := newControllerForTests(nil, previews)
	c.SelectPrimary(&domain.File{Name: "scan.png", MediaType: "image/png"})

	c.ClosePreview()
	if len(previews.liveFiles()) != 0 {
		t.Fatalf("expected no live handles")
	}

	if err := c.OpenPreview(domain.SlotEmail, ""); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	c.ClosePreview()

	if live := previews.liveFiles(); len(live) != 0 {
		t.Fatalf("expected no live handles after close, got %v", live)
	}
	if c.View().Preview != nil {
		t.Fatalf("expected preview modal to be closed")
	}
}

func TestOpenPreviewUnknownFile(t *testing.T) {
	c := newControllerForTests(nil, nil)
	err := c.OpenPreview(domain.SlotAttachment, "missing.txt")
	if !domain.IsKind(err, domain.ErrFileNotTracked) {
		t.Fatalf("expected ErrFileNotTracked, got %v", err)
	}
}

func TestOpenPreviewNoticesForWordAndOther(t *testing.T) {
	c := newControllerForTests(nil, nil)
	c.AppendAttachments([]domain.File{
		{Name: "letter.doc", MediaType: "application/msword"},
		{Name: "mail.msg", MediaType: "application/vnd.ms-outlook"},
	})

	if err := c.OpenPreview(domain.SlotAttachment, "letter.doc"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	if got := c.View().Preview.Notice; got != "Word document preview not available" {
		t.Fatalf("unexpected word notice %q", got)
	}

	if err := c.OpenPreview(domain.SlotAttachment, "mail.msg"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	if got := c.View().Preview.Notice; got != "Preview not available for this file type" {
		t.Fatalf("unexpected other notice %q", got)
	}
}

func TestPDFPreviewIncludesPageCount(t *testing.T) {
	observer := &observerFake{}
	c := NewFormController("session-1", FormControllerDeps{
		Classifier: &classifierFake{},
		Previews:   newPreviewStoreFake(),
		PDF:        pdfInspectorFake{pages: 3},
		Observer:   observer,
	})
	c.SelectPrimary(&domain.File{Name: "invoice.pdf", MediaType: "application/pdf"})

	if err := c.OpenPreview(domain.SlotEmail, "invoice.pdf"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	if got := c.View().Preview.PageCount; got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if len(observer.previews) != 1 || observer.previews[0] != "pdf" {
		t.Fatalf("unexpected observed previews: %v", observer.previews)
	}
}

func TestTextPreviewLoadsAsynchronously(t *testing.T) {
	decoder := &textDecoderFake{text: "hello world", release: make(chan struct{})}
	c := NewFormController("session-1", FormControllerDeps{
		Classifier: &classifierFake{},
		Previews:   newPreviewStoreFake(),
		Text:       decoder,
	})
	c.AppendAttachments([]domain.File{textFile("notes.txt")})

	if err := c.OpenPreview(domain.SlotAttachment, "notes.txt"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	if view := c.View(); !view.Preview.TextPending || view.Preview.Text != "" {
		t.Fatalf("expected pending text preview, got %+v", view.Preview)
	}

	close(decoder.release)
	c.background.Wait()

	view := c.View()
	if view.Preview.TextPending || view.Preview.Text != "hello world" {
		t.Fatalf("expected loaded text preview, got %+v", view.Preview)
	}
}

func TestTextPreviewResultDiscardedAfterClose(t *testing.T) {
	previews := newPreviewStoreFake()
	decoder := &textDecoderFake{text: "late text", release: make(chan struct{})}
	c := NewFormController("session-1", FormControllerDeps{
		Classifier: &classifierFake{},
		Previews:   previews,
		Text:       decoder,
	})
	c.AppendAttachments([]domain.File{textFile("notes.txt")})

	if err := c.OpenPreview(domain.SlotAttachment, "notes.txt"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	c.ClosePreview()
	close(decoder.release)
	c.background.Wait()

	if c.View().Preview != nil {
		t.Fatalf("expected closed preview to stay closed")
	}
	if len(previews.liveFiles()) != 0 {
		t.Fatalf("expected no live handles")
	}
}

func TestTextPreviewResultDiscardedWhenReplaced(t *testing.T) {
	decoder := &textDecoderFake{text: "first text", release: make(chan struct{})}
	c := NewFormController("session-1", FormControllerDeps{
		Classifier: &classifierFake{},
		Previews:   newPreviewStoreFake(),
		Text:       decoder,
	})
	c.AppendAttachments([]domain.File{textFile("notes.txt"), {Name: "scan.png", MediaType: "image/png"}})

	if err := c.OpenPreview(domain.SlotAttachment, "notes.txt"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	if err := c.OpenPreview(domain.SlotAttachment, "scan.png"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	close(decoder.release)
	c.background.Wait()

	view := c.View()
	if view.Preview.Name != "scan.png" || view.Preview.Text != "" {
		t.Fatalf("expected late text to be discarded, got %+v", view.Preview)
	}
}

func TestTextPreviewReadFailureShowsNoContent(t *testing.T) {
	c := NewFormController("session-1", FormControllerDeps{
		Classifier: &classifierFake{},
		Previews:   newPreviewStoreFake(),
		Text:       &textDecoderFake{err: errors.New("unreadable")},
	})
	c.AppendAttachments([]domain.File{textFile("notes.txt")})

	if err := c.OpenPreview(domain.SlotAttachment, "notes.txt"); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}
	c.background.Wait()

	view := c.View()
	if view.Error != "" {
		t.Fatalf("read failure must not be surfaced, got %q", view.Error)
	}
	if view.Preview == nil || view.Preview.TextPending || view.Preview.Text != "" {
		t.Fatalf("expected empty settled preview, got %+v", view.Preview)
	}
}

func TestCloseRevokesOutstandingPreview(t *testing.T) {
	previews := newPreviewStoreFake()
	c := newControllerForTests(nil, previews)
	c.SelectPrimary(&domain.File{Name: "scan.png", MediaType: "image/png"})
	if err := c.OpenPreview(domain.SlotEmail, ""); err != nil {
		t.Fatalf("OpenPreview() error = %v", err)
	}

	c.Close()

	if len(previews.liveFiles()) != 0 {
		t.Fatalf("expected teardown to revoke preview")
	}
	if err := c.OpenPreview(domain.SlotEmail, ""); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}
