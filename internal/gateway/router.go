package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the storefront API under /api/v1.
func NewRouter(h *Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Post("/sessions", h.CreateSession)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(h.registry))

			r.Delete("/session", h.DeleteSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/items", h.AddItem)
				r.Delete("/items/{product_id}", h.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", h.GetCheckout)
				r.Post("/", h.OpenCheckout)
				r.Delete("/", h.DismissCheckout)
				r.Post("/payment", h.ConfirmPayment)
			})

			r.Route("/promo", func(r chi.Router) {
				r.Get("/", h.GetPromo)
				r.Post("/", h.ApplyPromo)
				r.Delete("/", h.RevokePromo)
			})

			r.Get("/logs", h.GetLogs)

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", h.GetReviews)
				r.Post("/", h.SubmitReview)
				r.Get("/draft", h.GetReviewDraft)
			})
		})
	})

	return r
}
