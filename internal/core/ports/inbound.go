package ports

import (
	"context"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

// FormController is the inbound contract for one browser session's form.
type FormController interface {
	SelectPrimary(file *domain.File)
	RemovePrimary()
	AppendAttachments(files []domain.File)
	RemoveAttachment(name string)
	Submit(ctx context.Context) error
	SubmitAsync(ctx context.Context) error
	OpenPreview(slot domain.Slot, name string) error
	ClosePreview()
	View() domain.FormView
}

// SessionRegistry resolves the form controller bound to a browser session.
type SessionRegistry interface {
	Get(id string) (FormController, bool)
	Create() (string, FormController)
}
