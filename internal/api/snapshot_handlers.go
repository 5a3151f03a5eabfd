package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/bitbrowser-go/internal/snapshot"
)

// SnapshotHandler holds dependencies for the cookie snapshot handlers
type SnapshotHandler struct {
	store *snapshot.Store
}

// NewSnapshotHandler creates a new snapshot HTTP handler
func NewSnapshotHandler(store *snapshot.Store) *SnapshotHandler {
	return &SnapshotHandler{
		store: store,
	}
}

// RestoreRequest is the body of POST /v1/snapshots/{id}/restore. An empty
// browserId restores into the profile the snapshot came from.
type RestoreRequest struct {
	BrowserID string `json:"browserId"`
}

// CaptureCookies handles POST /v1/sessions/{id}/cookies/snapshots
func (h *SnapshotHandler) CaptureCookies(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Capture(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snap)
}

// ListSnapshots handles GET /v1/snapshots
func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List(r.URL.Query().Get("browserId")))
}

// GetSnapshot handles GET /v1/snapshots/{id}
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	f, err := h.store.Load(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

// RestoreSnapshot handles POST /v1/snapshots/{id}/restore
func (h *SnapshotHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	snap, err := h.store.Restore(r.Context(), mux.Vars(r)["id"], req.BrowserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// DeleteSnapshot handles DELETE /v1/snapshots/{id}
func (h *SnapshotHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
