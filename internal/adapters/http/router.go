package httpadapter

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/config"
	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/core/ports"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/resilience"
)

const sessionCookieName = "rcc_session"

// PreviewContent serves the bytes behind a live preview handle.
type PreviewContent interface {
	Open(id string) (domain.File, error)
}

// Instrumentation is the metrics surface the router exposes and records into.
type Instrumentation interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// BreakerStates reports circuit breaker state per outbound operation.
type BreakerStates interface {
	States() []resilience.OperationState
}

type Router struct {
	cfg      config.Config
	sessions ports.SessionRegistry
	previews PreviewContent
	metrics  Instrumentation
	breakers BreakerStates
	page     *template.Template
}

func NewRouter(cfg config.Config, sessions ports.SessionRegistry, previews PreviewContent) *Router {
	return &Router{
		cfg:      cfg,
		sessions: sessions,
		previews: previews,
		page:     pageTemplate,
	}
}

func (rt *Router) WithMetrics(m Instrumentation) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) WithBreakers(b BreakerStates) *Router {
	rt.breakers = b
	return rt
}

func (rt *Router) Handler() http.Handler {
	app := http.NewServeMux()
	app.HandleFunc("GET /{$}", rt.index)
	app.HandleFunc("POST /email", rt.selectEmail)
	app.HandleFunc("POST /email/remove", rt.removeEmail)
	app.HandleFunc("POST /attachments", rt.appendAttachments)
	app.HandleFunc("POST /attachments/remove", rt.removeAttachment)
	app.HandleFunc("POST /predict", rt.predict)
	app.HandleFunc("POST /preview", rt.openPreview)
	app.HandleFunc("POST /preview/close", rt.closePreview)
	app.HandleFunc("GET /preview/content/{token}", rt.previewContent)
	app.HandleFunc("GET /v1/state", rt.state)

	limited := backpressureMiddleware(app, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	limited = rateLimitMiddleware(limited, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/", limited)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

// healthz stays 200 while a breaker is open; the console still serves its
// form and reports the outage per submission.
func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	if rt.breakers == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := "ok"
	states := rt.breakers.States()
	for _, s := range states {
		if s.State != "closed" {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "breakers": states})
}

// session returns the caller's form controller, starting a new session when
// the cookie is missing or has expired.
func (rt *Router) session(w http.ResponseWriter, r *http.Request) ports.FormController {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if controller, ok := rt.sessions.Get(cookie.Value); ok {
			return controller
		}
	}
	id, controller := rt.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return controller
}

func (rt *Router) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.session(w, r).View())
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
