package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
)

type recordsResponse struct {
	Records []domain.SavedRecord `json:"records"`
}

func ListRecords(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		records, err := d.Campaigns.List(r.Context(), sid)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, recordsResponse{Records: records})
	}
}

// SaveRecord stores the current name/URL pair.
func SaveRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		rec, err := d.Campaigns.Save(r.Context(), sid)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// RemoveRecord deletes by list position, not by record id.
func RemoveRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		raw := chi.URLParam(r, "index")
		index, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "index must be an integer, got "+strconv.Quote(raw))
			return
		}

		records, err := d.Campaigns.Remove(r.Context(), sid, index)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, recordsResponse{Records: records})
	}
}
