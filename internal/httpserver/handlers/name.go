package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/utmgen/internal/campaign"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
)

type nameResponse struct {
	CampaignName string `json:"campaign_name"`
}

type existingNameRequest struct {
	CampaignName string `json:"campaign_name"`
}

func GenerateName(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		var req campaign.NameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}

		name, err := d.Campaigns.GenerateName(r.Context(), sid, req)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, nameResponse{CampaignName: name})
	}
}

func UseExistingName(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r, d)
		if !ok {
			return
		}

		var req existingNameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}

		name, err := d.Campaigns.UseExistingName(r.Context(), sid, req.CampaignName)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, nameResponse{CampaignName: name})
	}
}
