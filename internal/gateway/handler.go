package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/goldshop/internal/catalog"
	"github.com/fjod/goldshop/internal/domain"
	"github.com/fjod/goldshop/internal/session"
	"github.com/go-chi/chi/v5"
)

const maxRequestBodySize = 1 << 20 // 1MB

type Handler struct {
	registry *session.Registry
	catalog  *catalog.Catalog
}

func NewHandler(registry *session.Registry, catalog *catalog.Catalog) *Handler {
	return &Handler{
		registry: registry,
		catalog:  catalog,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type PaymentRequestDTO struct {
	PlayerID      string `json:"player_id"`
	PaymentMethod string `json:"payment_method"`
}

type PromoRequestDTO struct {
	Code string `json:"code"`
}

type ReviewRequestDTO struct {
	Username string `json:"username"`
	Rating   *int   `json:"rating"`
	Comment  string `json:"comment"`
}

type SessionResponseDTO struct {
	SessionID string `json:"session_id"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Envelope{
		Data:          h.catalog.Products(),
		Notifications: []domain.Notification{},
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()
	w.Header().Set(SessionHeader, s.ID())
	respond(w, s, http.StatusCreated, SessionResponseDTO{SessionID: s.ID()})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if err := h.registry.Delete(s.ID()); err != nil {
		respondSessionError(w, s, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	view, err := s.Cart()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, view)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	view, err := s.AddToCart(req.ProductID)
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusCreated, view)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	view, err := s.RemoveFromCart(productID)
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, view)
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	state, err := s.Checkout()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, state)
}

func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	state, err := s.OpenCheckout()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, state)
}

func (h *Handler) DismissCheckout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	state, err := s.DismissCheckout()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, state)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req PaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
		return
	}

	receipt, err := s.ConfirmPayment(req.PlayerID, method)
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, receipt)
}

func (h *Handler) GetPromo(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	state, err := s.Promo()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, state)
}

func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req PromoRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := s.ApplyPromoCode(req.Code)
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, state)
}

func (h *Handler) RevokePromo(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	state, err := s.RevokePrivilege()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, state)
}

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	entries, err := s.PurchaseLogs()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, entries)
}

func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respond(w, s, http.StatusOK, s.Reviews())
}

func (h *Handler) GetReviewDraft(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	draft, err := s.ReviewDraft()
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusOK, draft)
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req ReviewRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	draft := domain.NewReviewDraft()
	draft.Username = req.Username
	draft.Comment = req.Comment
	if req.Rating != nil {
		draft.Rating = *req.Rating
	}

	list, err := s.SubmitReview(r.Context(), draft)
	if err != nil {
		respondSessionError(w, s, err)
		return
	}
	respond(w, s, http.StatusCreated, list)
}

// Health reports ok while the registry accepts requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.registry.Len(),
	})
}
