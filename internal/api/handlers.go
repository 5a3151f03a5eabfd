package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/session"
)

// Handler holds dependencies for the session handlers
type Handler struct {
	sessions *session.Manager
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

// OpenSessionRequest is the optional body of POST /v1/sessions/{id}/open
type OpenSessionRequest struct {
	Args []string `json:"args"`
}

// ListSessions handles GET /v1/sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	status := models.SessionStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
		return
	}

	writeJSON(w, http.StatusOK, h.sessions.Sessions(status))
}

// SyncSessions handles POST /v1/sessions/sync
func (h *Handler) SyncSessions(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessions.Synchronize(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetSession handles GET /v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.GetSession(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// RefreshSession handles POST /v1/sessions/{id}/refresh
func (h *Handler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Refresh(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// OpenSession handles POST /v1/sessions/{id}/open
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := h.sessions.Open(r.Context(), mux.Vars(r)["id"], req.Args)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// CloseSession handles DELETE /v1/sessions/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Close(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// GetDebugURL handles GET /v1/sessions/{id}/debug
func (h *Handler) GetDebugURL(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.GetSession(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if sess.Status != models.StatusOpen {
		writeMessage(w, http.StatusConflict, "Session is not open")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"debuggerUrl": fmt.Sprintf("ws://%s/v1/sessions/%s/ws", r.Host, sess.ID),
		"browserWs":   sess.WS,
		"browserHttp": sess.HTTP,
		"sessionId":   sess.ID,
		"status":      string(sess.Status),
	})
}
