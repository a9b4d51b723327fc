package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
	"github.com/MrSnakeDoc/utmgen/internal/session"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrMalformedURL):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNothingToSave):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err as {"error": ...}. Backend failures are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sessionID returns the id set by the session middleware, failing the request when absent.
func sessionID(w http.ResponseWriter, r *http.Request, d deps.Deps) (string, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, r, d, errors.New("no session in request context"))
		return "", false
	}
	return id, true
}
