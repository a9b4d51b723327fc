package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/handlers"
)

func init() {
	RegisterAPI(registerSession)
	RegisterAPI(registerRecords)
}

func registerSession(r chi.Router, d deps.Deps) {
	r.Get("/session", handlers.SessionState(d))
	r.Delete("/session", handlers.EndSession(d))
}

func registerRecords(r chi.Router, d deps.Deps) {
	r.Get("/records", handlers.ListRecords(d))
	r.Post("/records", handlers.SaveRecord(d))
	r.Delete("/records/{index}", handlers.RemoveRecord(d))
}
