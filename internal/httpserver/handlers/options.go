package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
)

type categoriesResponse struct {
	Group      string   `json:"group"`
	Categories []string `json:"categories"`
}

type sourcesResponse struct {
	Group    string   `json:"group"`
	Category string   `json:"category"`
	Sources  []string `json:"sources"`
}

func Options(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Campaigns.Options())
	}
}

// Categories answers the second level of the lead-source cascade.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := r.URL.Query().Get("group")
		writeJSON(w, http.StatusOK, categoriesResponse{
			Group:      group,
			Categories: d.Campaigns.Categories(group),
		})
	}
}

// Sources answers the last level of the lead-source cascade.
func Sources(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		group, category := q.Get("group"), q.Get("category")
		writeJSON(w, http.StatusOK, sourcesResponse{
			Group:    group,
			Category: category,
			Sources:  d.Campaigns.Sources(group, category),
		})
	}
}
