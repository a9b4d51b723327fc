package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
)

type sessionResponse struct {
	*domain.SessionState
	CanSave bool `json:"can_save"`
}

func SessionState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		st, err := d.Campaigns.State(r.Context(), sid)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{SessionState: st, CanSave: st.CanSave()})
	}
}

// EndSession drops the session state and expires the cookie.
func EndSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		if err := d.Campaigns.End(r.Context(), sid); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Sessions.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
