package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

const (
	emailAccept      = ".pdf, .docx, .txt, .eml, .email, .msg"
	attachmentAccept = ".pdf, .doc, .docx, .txt"
)

type pageData struct {
	View             domain.FormView
	AutoRefresh      bool
	EmailAccept      string
	AttachmentAccept string
}

func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	view := rt.session(w, r).View()
	data := pageData{
		View:             view,
		AutoRefresh:      view.Loading || (view.Preview != nil && view.Preview.TextPending),
		EmailAccept:      emailAccept,
		AttachmentAccept: attachmentAccept,
	}

	var buf bytes.Buffer
	if err := rt.page.Execute(&buf, data); err != nil {
		slog.Error("page_render_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render page"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) selectEmail(w http.ResponseWriter, r *http.Request) {
	controller := rt.session(w, r)
	files, err := rt.readUploads(w, r, "email")
	if err != nil {
		writeError(w, err)
		return
	}
	if len(files) > 0 {
		controller.SelectPrimary(&files[0])
	}
	redirectHome(w, r)
}

func (rt *Router) removeEmail(w http.ResponseWriter, r *http.Request) {
	rt.session(w, r).RemovePrimary()
	redirectHome(w, r)
}

func (rt *Router) appendAttachments(w http.ResponseWriter, r *http.Request) {
	controller := rt.session(w, r)
	files, err := rt.readUploads(w, r, "attachments")
	if err != nil {
		writeError(w, err)
		return
	}
	controller.AppendAttachments(files)
	redirectHome(w, r)
}

func (rt *Router) removeAttachment(w http.ResponseWriter, r *http.Request) {
	controller := rt.session(w, r)
	name := r.FormValue("name")
	if name == "" {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "remove attachment", errors.New("form field 'name' is required")))
		return
	}
	controller.RemoveAttachment(name)
	redirectHome(w, r)
}

// predict starts a submission. With wait=1 the response is sent only after
// the classification call finished.
func (rt *Router) predict(w http.ResponseWriter, r *http.Request) {
	controller := rt.session(w, r)

	var err error
	if r.FormValue("wait") == "1" {
		err = controller.Submit(r.Context())
	} else {
		err = controller.SubmitAsync(r.Context())
	}
	switch {
	case err == nil,
		domain.IsKind(err, domain.ErrNoPrimaryFile),
		domain.IsKind(err, domain.ErrSubmissionInFlight),
		domain.IsKind(err, domain.ErrTransport),
		domain.IsKind(err, domain.ErrApplication),
		domain.IsKind(err, domain.ErrRateLimited):
		// The outcome is part of the form state.
		redirectHome(w, r)
	default:
		writeError(w, err)
	}
}

func (rt *Router) openPreview(w http.ResponseWriter, r *http.Request) {
	controller := rt.session(w, r)
	slot, ok := domain.ParseSlot(r.FormValue("slot"))
	if !ok {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "open preview", fmt.Errorf("unknown slot %q", r.FormValue("slot"))))
		return
	}
	if err := controller.OpenPreview(slot, r.FormValue("name")); err != nil {
		writeError(w, err)
		return
	}
	redirectHome(w, r)
}

func (rt *Router) closePreview(w http.ResponseWriter, r *http.Request) {
	rt.session(w, r).ClosePreview()
	redirectHome(w, r)
}

func (rt *Router) previewContent(w http.ResponseWriter, r *http.Request) {
	file, err := rt.previews.Open(r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	disposition := "inline"
	if r.URL.Query().Get("download") == "1" {
		disposition = "attachment"
	}
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox")
	http.ServeContent(w, r, file.Name, time.Time{}, bytes.NewReader(file.Content))
}

// readUploads reads every file posted under field. A form without the field
// is an empty selection.
func (rt *Router) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]domain.File, error) {
	maxBytes := int64(rt.cfg.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("upload exceeds %d MB", maxBytes>>20))
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[field]
	files := make([]domain.File, 0, len(headers))
	for _, header := range headers {
		file, err := readUpload(header)
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
		}
		files = append(files, file)
	}
	return files, nil
}

func readUpload(header *multipart.FileHeader) (domain.File, error) {
	src, err := header.Open()
	if err != nil {
		return domain.File{}, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return domain.File{
		Name:      filepath.Base(header.Filename),
		MediaType: uploadMediaType(header),
		Content:   content,
	}, nil
}

// uploadMediaType prefers the type the browser declared and falls back to
// the file extension.
func uploadMediaType(header *multipart.FileHeader) string {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
		return byExt
	}
	return declared
}
