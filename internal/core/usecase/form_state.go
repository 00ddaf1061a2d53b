package usecase

import (
	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/core/ports"
)

const validationMessage = "Please upload an email file"

// InputControl stands for a browser file input. Resetting it gives the
// rendered input a new key so the browser drops its remembered value.
type InputControl struct {
	Generation int
}

func (c *InputControl) Reset() {
	c.Generation++
}

// FormState is the whole mutable state of one form. Every event is a method
// below; nothing else writes these fields.
type FormState struct {
	Primary         *domain.File
	Attachments     []domain.File
	PrimaryInput    InputControl
	AttachmentInput InputControl

	Loading bool
	Error   string
	Result  *domain.ClassificationResult

	Preview *previewState
	Closed  bool
}

type previewState struct {
	handle      ports.PreviewHandle
	file        domain.File
	category    domain.FileCategory
	text        string
	textPending bool
	pageCount   int
}

type submitJob struct {
	email       domain.File
	attachments []domain.File
}

func (s *FormState) selectPrimary(file domain.File) {
	s.Primary = &file
}

func (s *FormState) removePrimary() {
	s.Primary = nil
	s.PrimaryInput.Reset()
}

// appendAttachments keeps insertion order and drops any file whose name is
// already tracked, including duplicates within the same batch.
func (s *FormState) appendAttachments(files []domain.File) int {
	if len(files) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(s.Attachments)+len(files))
	for _, existing := range s.Attachments {
		seen[existing.Name] = struct{}{}
	}
	added := 0
	for _, f := range files {
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		s.Attachments = append(s.Attachments, f)
		added++
	}
	s.AttachmentInput.Reset()
	return added
}

func (s *FormState) removeAttachment(name string) bool {
	kept := s.Attachments[:0]
	removed := false
	for _, f := range s.Attachments {
		if f.Name == name {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	s.Attachments = kept
	return removed
}

func (s *FormState) lookup(slot domain.Slot, name string) (domain.File, bool) {
	switch slot {
	case domain.SlotEmail:
		if s.Primary == nil {
			return domain.File{}, false
		}
		if name != "" && s.Primary.Name != name {
			return domain.File{}, false
		}
		return *s.Primary, true
	case domain.SlotAttachment:
		for _, f := range s.Attachments {
			if f.Name == name {
				return f, true
			}
		}
	}
	return domain.File{}, false
}

// beginSubmit validates the form and moves it into the loading state. The
// returned job is a snapshot, so later selections do not change the request.
func (s *FormState) beginSubmit() (submitJob, error) {
	if s.Closed {
		return submitJob{}, domain.ErrSessionClosed
	}
	if s.Loading {
		return submitJob{}, domain.ErrSubmissionInFlight
	}
	if s.Primary == nil {
		s.Error = validationMessage
		return submitJob{}, domain.WrapError(domain.ErrNoPrimaryFile, "submit", domain.ErrInvalidInput)
	}

	s.Loading = true
	s.Error = ""

	job := submitJob{email: *s.Primary}
	if len(s.Attachments) > 0 {
		job.attachments = make([]domain.File, len(s.Attachments))
		copy(job.attachments, s.Attachments)
	}
	return job, nil
}

func (s *FormState) failSubmit(message string) {
	s.Loading = false
	s.Error = message
}

func (s *FormState) completeSubmit(result *domain.ClassificationResult) {
	s.Loading = false
	s.Result = result
	s.Primary = nil
	s.Attachments = nil
	s.PrimaryInput.Reset()
	s.AttachmentInput.Reset()
}

func (s *FormState) view() domain.FormView {
	v := domain.FormView{
		Attachments:        make([]domain.FileView, 0, len(s.Attachments)),
		EmailInputKey:      s.PrimaryInput.Generation,
		AttachmentInputKey: s.AttachmentInput.Generation,
		Loading:            s.Loading,
		SubmitLabel:        domain.SubmitLabelIdle,
		SubmitDisabled:     s.Loading || s.Primary == nil,
		Error:              s.Error,
		Result:             domain.NewResultView(s.Result),
	}
	if s.Loading {
		v.SubmitLabel = domain.SubmitLabelLoading
	}
	if s.Primary != nil {
		fv := domain.NewFileView(*s.Primary)
		v.Email = &fv
	}
	for _, f := range s.Attachments {
		v.Attachments = append(v.Attachments, domain.NewFileView(f))
	}
	if s.Preview != nil {
		v.Preview = s.Preview.view()
	}
	return v
}

func (p *previewState) view() *domain.PreviewView {
	v := &domain.PreviewView{
		Name:        p.file.Name,
		Category:    p.category,
		URL:         p.handle.URL,
		DownloadURL: p.handle.URL + "?download=1",
		Text:        p.text,
		TextPending: p.textPending,
		PageCount:   p.pageCount,
	}
	switch p.category {
	case domain.CategoryWord:
		v.Notice = "Word document preview not available"
	case domain.CategoryOther:
		v.Notice = "Preview not available for this file type"
	}
	return v
}
