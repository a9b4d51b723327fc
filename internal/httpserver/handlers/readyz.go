package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Store string `json:"store"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the session store answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed",
				logger.String("store", d.Store.Name()),
				logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Store: d.Store.Name(),
				Error: "session store unreachable",
			})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Store: d.Store.Name()})
	}
}
