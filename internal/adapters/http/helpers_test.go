package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/config"
	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/core/usecase"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/preview"
)

type classifierFake struct {
	mu    sync.Mutex
	calls int
	names []string

	result *domain.ClassificationResult
	err    error
}

func (f *classifierFake) Classify(_ context.Context, email domain.File, attachments []domain.File) (*domain.ClassificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.names = []string{email.Name}
	for _, a := range attachments {
		f.names = append(f.names, a.Name)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &domain.ClassificationResult{}, nil
	}
	return f.result, nil
}

func (f *classifierFake) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type consoleFixture struct {
	handler    http.Handler
	sessions   *usecase.SessionManager
	previews   *preview.Registry
	classifier *classifierFake
}

func newConsoleFixture(t *testing.T, cfg config.Config, classifier *classifierFake) *consoleFixture {
	t.Helper()
	if classifier == nil {
		classifier = &classifierFake{}
	}
	previews := preview.NewRegistry("")
	sessions := usecase.NewSessionManager(usecase.FormControllerDeps{
		Classifier: classifier,
		Previews:   previews,
	}, time.Minute)
	t.Cleanup(sessions.Close)

	return &consoleFixture{
		handler:    NewRouter(cfg, sessions, previews).Handler(),
		sessions:   sessions,
		previews:   previews,
		classifier: classifier,
	}
}

// browser replays the session cookie like a real browser would.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func (f *consoleFixture) browser(t *testing.T) *browser {
	return &browser{t: t, handler: f.handler}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	res := httptest.NewRecorder()
	b.handler.ServeHTTP(res, req)
	for _, c := range res.Result().Cookies() {
		if c.Name == sessionCookieName {
			b.cookie = c
		}
	}
	return res
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

type upload struct {
	name      string
	mediaType string
	content   string
}

func (b *browser) postFiles(path, field string, files ...upload) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+f.name+`"`)
		if f.mediaType != "" {
			header.Set("Content-Type", f.mediaType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			b.t.Fatalf("CreatePart() error = %v", err)
		}
		if _, err := part.Write([]byte(f.content)); err != nil {
			b.t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		b.t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return b.do(req)
}

func (b *browser) state() domain.FormView {
	b.t.Helper()
	res := b.get("/v1/state")
	if res.Code != http.StatusOK {
		b.t.Fatalf("GET /v1/state expected 200, got %d", res.Code)
	}
	var view domain.FormView
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		b.t.Fatalf("decode state: %v", err)
	}
	return view
}

func expectRedirect(t *testing.T, res *httptest.ResponseRecorder) {
	t.Helper()
	if res.Code != http.StatusSeeOther || res.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q: %s", res.Code, res.Header().Get("Location"), res.Body.String())
	}
}
