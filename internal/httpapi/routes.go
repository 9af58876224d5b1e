package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kvolkov/quizroom/internal/engine"
)

// SetupRoutes builds the local debug surface: a health probe and a
// read-only session snapshot.
func SetupRoutes(c *engine.Controller) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", State(c))
	return r
}
