package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/handlers"
)

func init() {
	RegisterAPI(registerOptions)
	RegisterAPI(registerNaming)
	RegisterAPI(registerURL)
}

func registerOptions(r chi.Router, d deps.Deps) {
	r.Get("/options", handlers.Options(d))
	r.Get("/taxonomy/categories", handlers.Categories(d))
	r.Get("/taxonomy/sources", handlers.Sources(d))
}

func registerNaming(r chi.Router, d deps.Deps) {
	r.Post("/name", handlers.GenerateName(d))
	r.Post("/name/existing", handlers.UseExistingName(d))
}

func registerURL(r chi.Router, d deps.Deps) {
	r.Post("/url", handlers.GenerateURL(d))
}
