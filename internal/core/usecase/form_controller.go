package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/core/ports"
)

type FormControllerDeps struct {
	Classifier ports.ClassificationClient
	Previews   ports.PreviewStore
	Text       ports.TextDecoder
	PDF        ports.PDFInspector
	Events     ports.EventPublisher
	Observer   ports.FormObserver
	Precedence ErrorPrecedence

	TextReadTimeout time.Duration
}

// FormController owns the form and preview state of one browser session.
// Handlers call it concurrently; all state changes happen under mu.
type FormController struct {
	sessionID string
	deps      FormControllerDeps

	mu    sync.Mutex
	state FormState

	// background tracks the classification call and text reads.
	background sync.WaitGroup
}

func NewFormController(sessionID string, deps FormControllerDeps) *FormController {
	if deps.Precedence == "" {
		deps.Precedence = PrecedenceGeneric
	}
	if deps.TextReadTimeout <= 0 {
		deps.TextReadTimeout = 10 * time.Second
	}
	return &FormController{
		sessionID: sessionID,
		deps:      deps,
	}
}

func (c *FormController) SessionID() string {
	return c.sessionID
}

// SelectPrimary replaces the primary file. A nil file is an empty selection.
func (c *FormController) SelectPrimary(file *domain.File) {
	if file == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Closed {
		return
	}
	c.state.selectPrimary(*file)
}

func (c *FormController) RemovePrimary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Closed {
		return
	}
	c.state.removePrimary()
}

func (c *FormController) AppendAttachments(files []domain.File) {
	if len(files) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Closed {
		return
	}
	added := c.state.appendAttachments(files)
	if dropped := len(files) - added; dropped > 0 {
		slog.Debug("attachments_deduplicated", "session_id", c.sessionID, "dropped", dropped)
	}
}

func (c *FormController) RemoveAttachment(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Closed {
		return
	}
	c.state.removeAttachment(name)
}

func (c *FormController) View() domain.FormView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.view()
}

// Busy reports whether background work still needs this controller.
func (c *FormController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loading || (c.state.Preview != nil && c.state.Preview.textPending)
}

// Close tears the controller down: the outstanding preview handle is
// revoked and results arriving afterwards are dropped.
func (c *FormController) Close() {
	c.mu.Lock()
	if c.state.Closed {
		c.mu.Unlock()
		return
	}
	c.state.Closed = true
	c.releasePreviewLocked()
	c.mu.Unlock()

	c.background.Wait()
}
