package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/shehryarbajwa/bitbrowser-go/internal/proxy"
	"github.com/shehryarbajwa/bitbrowser-go/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes
func (h *Handler) SetupRoutes(snapshots *SnapshotHandler, relay *proxy.Relay, limiter *ratelimit.Limiter, logger logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/v1").Subrouter()

	// Everything that reaches BitBrowser is rate limited and logged
	limited := api.PathPrefix("").Subrouter()
	limited.Use(loggingMiddleware(logger), RateLimitMiddleware(limiter))

	limited.HandleFunc("/sessions", h.ListSessions).Methods(http.MethodGet)
	limited.HandleFunc("/sessions/sync", h.SyncSessions).Methods(http.MethodPost)
	limited.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	limited.HandleFunc("/sessions/{id}", h.CloseSession).Methods(http.MethodDelete)
	limited.HandleFunc("/sessions/{id}/refresh", h.RefreshSession).Methods(http.MethodPost)
	limited.HandleFunc("/sessions/{id}/open", h.OpenSession).Methods(http.MethodPost)
	limited.HandleFunc("/sessions/{id}/debug", h.GetDebugURL).Methods(http.MethodGet)
	limited.HandleFunc("/sessions/{id}/cookies/snapshots", snapshots.CaptureCookies).Methods(http.MethodPost)

	limited.HandleFunc("/snapshots", snapshots.ListSnapshots).Methods(http.MethodGet)
	limited.HandleFunc("/snapshots/{id}", snapshots.GetSnapshot).Methods(http.MethodGet)
	limited.HandleFunc("/snapshots/{id}", snapshots.DeleteSnapshot).Methods(http.MethodDelete)
	limited.HandleFunc("/snapshots/{id}/restore", snapshots.RestoreSnapshot).Methods(http.MethodPost)

	// Debug relay (not rate limited, long lived)
	api.HandleFunc("/sessions/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
		relay.HandleDebugConnection(w, r, mux.Vars(r)["id"])
	}).Methods(http.MethodGet)

	r.Use(corsMiddleware)

	return r
}
