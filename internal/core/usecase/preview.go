package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

// OpenPreview shows a tracked file in the preview modal. The previous handle,
// if any, is revoked before a new one is acquired, so at most one is live.
func (c *FormController) OpenPreview(slot domain.Slot, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Closed {
		return domain.ErrSessionClosed
	}
	file, ok := c.state.lookup(slot, name)
	if !ok {
		return domain.WrapError(domain.ErrFileNotTracked, "open preview", fmt.Errorf("%s %q", slot, name))
	}

	c.releasePreviewLocked()

	preview := &previewState{
		handle:   c.deps.Previews.Acquire(file),
		file:     file,
		category: domain.CategoryOf(file.MediaType),
	}

	switch preview.category {
	case domain.CategoryPDF:
		if c.deps.PDF != nil {
			pages, err := c.deps.PDF.PageCount(file)
			if err != nil {
				slog.Warn("pdf_inspect_failed", "session_id", c.sessionID, "file", file.Name, "error", err)
			} else {
				preview.pageCount = pages
			}
		}
	case domain.CategoryText:
		if c.deps.Text != nil {
			preview.textPending = true
			c.background.Add(1)
			go c.loadText(preview.handle.ID, file)
		}
	}

	c.state.Preview = preview
	if c.deps.Observer != nil {
		c.deps.Observer.ObservePreviewOpened(string(preview.category))
	}
	return nil
}

func (c *FormController) ClosePreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releasePreviewLocked()
}

func (c *FormController) releasePreviewLocked() {
	if c.state.Preview == nil {
		return
	}
	c.deps.Previews.Revoke(c.state.Preview.handle.ID)
	c.state.Preview = nil
}

// loadText decodes a text file off the lock. The result is written only if
// the same handle is still on display when the read finishes.
func (c *FormController) loadText(handleID string, file domain.File) {
	defer c.background.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.deps.TextReadTimeout)
	defer cancel()
	text, err := c.deps.Text.Decode(ctx, file)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Preview == nil || c.state.Preview.handle.ID != handleID {
		slog.Debug("text_preview_discarded", "session_id", c.sessionID, "file", file.Name)
		return
	}
	c.state.Preview.textPending = false
	if err != nil {
		slog.Error("text_preview_read_failed", "session_id", c.sessionID, "file", file.Name, "error", err)
		return
	}
	c.state.Preview.text = text
}
