// Package site serves the server-rendered fortune pages. Each browser gets a
// session through a cookie and every page shows that session's current step.
package site

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/okian/wangcai/internal/adapters/http/api"
	"github.com/okian/wangcai/internal/adapters/repository"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

const (
	// CookieName holds the session id.
	CookieName = "wangcai_session"

	maxFormBody = 64 << 10

	// invalidFormMessage is shown when a hand-crafted form skips a choice.
	invalidFormMessage = "问卷没填完整，边牧看不懂，请再检查一下～"
)

// Dependencies are the session operations the pages drive.
type Dependencies interface {
	CreateSession(ctx context.Context) (string, workflow.Snapshot, error)
	Session(ctx context.Context, id string) (workflow.Snapshot, error)
	StartSession(ctx context.Context, id string) (workflow.Snapshot, error)
	Submit(ctx context.Context, id string, fields profile.Fields) (workflow.Snapshot, error)
	Reset(ctx context.Context, id string) (workflow.Snapshot, error)
}

// Handler renders pages and handles the form posts.
type Handler struct {
	deps         Dependencies
	pages        map[workflow.Step]*template.Template
	publicURL    string
	secureCookie bool
	logger       logger.Logger
}

// NewHandler parses the embedded templates. It panics on a broken template,
// which can only happen at build time.
func NewHandler(deps Dependencies, opts ...Option) *Handler {
	h := &Handler{
		deps:   deps,
		pages:  parsePages(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the page routes and the embedded static assets to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.HandleRoot, "site_root"))
	mux.HandleFunc("POST /start", api.MetricsMiddleware(h.HandleStart, "site_start"))
	mux.HandleFunc("POST /submit", api.MetricsMiddleware(h.HandleSubmit, "site_submit"))
	mux.HandleFunc("POST /reset", api.MetricsMiddleware(h.HandleReset, "site_reset"))
}

// HandleRoot renders the current step, opening a session when the browser
// has none or its session expired.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.current(r)
	if err != nil {
		var id string
		id, snap, err = h.deps.CreateSession(ctx)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.setCookie(w, id)
	}

	if err := h.render(w, http.StatusOK, pageFor(snap, h.link(r))); err != nil {
		h.fail(w, r, err)
	}
}

// HandleStart handles POST /start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.deps.StartSession)
}

// HandleReset handles POST /reset. A reset during loading is ignored and the
// loading page simply shows again.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.deps.Reset)
}

// HandleSubmit handles POST /submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	fields := fieldsFrom(r)

	id, ok := h.sessionID(r)
	if !ok {
		seeOther(w, r)
		return
	}
	snap, err := h.deps.Submit(r.Context(), id, fields)
	switch {
	case errors.Is(err, profile.ErrInvalidProfile) && snap.Step == workflow.StepForm:
		p := pageFor(snap, h.link(r))
		p.Form = newForm(fields)
		p.Error = invalidFormMessage
		if rerr := h.render(w, http.StatusBadRequest, p); rerr != nil {
			h.fail(w, r, rerr)
		}
		return
	case err != nil && !isExpected(err) && !errors.Is(err, profile.ErrInvalidProfile):
		h.fail(w, r, err)
		return
	}
	seeOther(w, r)
}

func (h *Handler) act(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (workflow.Snapshot, error)) {
	if id, ok := h.sessionID(r); ok {
		if _, err := op(r.Context(), id); err != nil && !isExpected(err) {
			h.fail(w, r, err)
			return
		}
	}
	seeOther(w, r)
}

// isExpected covers a stale tab or a double click: the next page load shows
// the real state.
func isExpected(err error) bool {
	return errors.Is(err, workflow.ErrInvalidTransition) || isGone(err)
}

func isGone(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID)
}

func (h *Handler) current(r *http.Request) (workflow.Snapshot, error) {
	id, ok := h.sessionID(r)
	if !ok {
		return workflow.Snapshot{}, http.ErrNoCookie
	}
	return h.deps.Session(r.Context(), id)
}

func (h *Handler) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (h *Handler) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "page failed", logger.String("path", r.URL.Path), logger.Error(err))
	http.Error(w, workflow.FailureMessage, http.StatusInternalServerError)
}

// link is the public URL when configured, else the root of the request host.
func (h *Handler) link(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func seeOther(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func fieldsFrom(r *http.Request) profile.Fields {
	return profile.Fields{
		Zodiac:         r.PostFormValue("zodiac"),
		CurrentMood:    r.PostFormValue("currentMood"),
		FinancialGoal:  r.PostFormValue("financialGoal"),
		RecentThoughts: r.PostFormValue("recentThoughts"),
		DailyEvents:    r.PostFormValue("dailyEvents"),
		GlobalAnswers: profile.Answers{
			TechView:   r.PostFormValue("techView"),
			EnergyView: r.PostFormValue("energyView"),
			MacroView:  r.PostFormValue("macroView"),
		},
	}
}
