package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

const maxSubmitBody = 64 << 10

// sessionResponse is a snapshot tagged with its session id.
type sessionResponse struct {
	ID string `json:"id"`
	workflow.Snapshot
}

type shareResponse struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Notice   string `json:"notice"`
	URL      string `json:"url"`
	Fallback string `json:"fallback"`
}

// SessionsHandler serves /api/sessions.
type SessionsHandler struct {
	deps      Dependencies
	publicURL string
	logger    logger.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps, logger: logger.Nop()}
}

// HandleCreate handles POST /api/sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, snap, err := h.deps.CreateSession(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Snapshot: snap})
}

// HandleGet handles GET /api/sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.deps.Session)
}

// HandleStart handles POST /api/sessions/{id}/start.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.deps.StartSession)
}

// HandleReset handles POST /api/sessions/{id}/reset.
func (h *SessionsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.deps.Reset)
}

// HandleSubmit handles POST /api/sessions/{id}/submit. The body is the
// questionnaire; the reply is 202 with the session in loading, or already
// back on the form when the job could not be queued.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var fields profile.Fields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	h.respond(w, r, http.StatusAccepted, func(ctx context.Context, id string) (workflow.Snapshot, error) {
		return h.deps.Submit(ctx, id, fields)
	})
}

// HandleShare handles GET /api/sessions/{id}/share.
func (h *SessionsHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	share, err := h.deps.Share(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	link := h.link(r)
	writeJSON(w, http.StatusOK, shareResponse{
		Title:    share.Title,
		Text:     share.Text,
		Notice:   share.Notice,
		URL:      link,
		Fallback: share.Fallback(link),
	})
}

func (h *SessionsHandler) respond(w http.ResponseWriter, r *http.Request, status int,
	op func(ctx context.Context, id string) (workflow.Snapshot, error),
) {
	id := r.PathValue("id")
	snap, err := op(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{ID: id, Snapshot: snap})
}

func (h *SessionsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// link is the public URL when configured, else the root of the request host.
func (h *SessionsHandler) link(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + r.Host + "/"
}
