package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(CORSMiddleware)

	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Options("/", Preflight)
		r.Get("/", h.ListReviews)
		r.Post("/", h.CreateReview)
	})

	r.Route("/logs", func(r chi.Router) {
		r.Options("/", Preflight)
		r.Get("/", h.ListLogs)
		r.Post("/", h.CreateLog)
	})

	return r
}
