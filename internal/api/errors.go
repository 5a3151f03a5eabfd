package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shehryarbajwa/bitbrowser-go/internal/snapshot"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/client"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/session"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps transport errors onto the status this API answers with.
// Refusals by BitBrowser are the caller's problem (422); anything wrong with
// reaching or understanding BitBrowser is a bad gateway.
func statusFor(err error) (int, string) {
	var (
		apiErr        *client.APIError
		statusErr     *client.HTTPStatusError
		networkErr    *client.NetworkError
		decodeErr     *client.ResponseDecodeError
		validationErr *client.ResponseValidationError
	)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, snapshot.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &apiErr):
		return http.StatusUnprocessableEntity, "api"
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, "http_status"
	case errors.As(err, &networkErr):
		return http.StatusBadGateway, "network"
	case errors.As(err, &decodeErr):
		return http.StatusBadGateway, "decode"
	case errors.As(err, &validationErr):
		return http.StatusBadGateway, "validation"
	default:
		return http.StatusInternalServerError, ""
	}
}

func writeError(w http.ResponseWriter, err error) {
	code, kind := statusFor(err)
	writeJSON(w, code, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
