package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/utmgen/internal/campaign"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
)

type urlResponse struct {
	URL string `json:"url"`
}

func GenerateURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		var req campaign.URLRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}

		u, err := d.Campaigns.GenerateURL(r.Context(), sid, req)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, urlResponse{URL: u})
	}
}
