package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	Source      string `json:"source,omitempty"`
	LeadSources *int   `json:"lead_sources,omitempty"`
	Sessions    *int   `json:"sessions,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Backend     string `json:"backend,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog": checkCatalog(d),
			"store":   checkStore(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical" // sessions cannot be read or written
	}
	if catalog, ok := components["catalog"]; ok && !catalog.OK {
		return "degraded"
	}
	return "operational"
}

func checkCatalog(d deps.Deps) componentStatus {
	count := d.Catalog.Count()
	lastReload := "never"
	if t := d.Catalog.GetLastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}

	status := componentStatus{
		OK:          count > 0,
		Source:      d.Catalog.Source(),
		LeadSources: &count,
		LastReload:  lastReload,
	}
	if d.CatalogFile != "" && status.Source != d.CatalogFile {
		status.OK = false
		status.Impact = "serving-builtin-catalog"
		status.Error = "catalog file not loaded"
	}
	return status
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.Store.Name(),
			Impact:  "sessions-unavailable",
			Error:   "ping failed",
		}
	}

	status := componentStatus{OK: true, Backend: d.Store.Name()}
	if n, err := d.Store.Len(ctx); err == nil {
		status.Sessions = &n
	}
	return status
}
