package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/goldshop/internal/catalog"
	"github.com/fjod/goldshop/internal/checkout"
	"github.com/fjod/goldshop/internal/domain"
	"github.com/fjod/goldshop/internal/promo"
	"github.com/fjod/goldshop/internal/reviews"
	"github.com/fjod/goldshop/internal/session"
)

// Envelope wraps every successful response together with the notifications
// raised while serving it.
type Envelope struct {
	Data          any                   `json:"data"`
	Notifications []domain.Notification `json:"notifications"`
}

type ErrorResponse struct {
	Error         string                `json:"error"`
	Code          string                `json:"code,omitempty"`
	Notifications []domain.Notification `json:"notifications,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respond sends data with the session's pending notifications.
func respond(w http.ResponseWriter, s *session.Session, status int, data any) {
	notes := s.DrainNotifications()
	if notes == nil {
		notes = []domain.Notification{}
	}
	respondJSON(w, status, Envelope{Data: data, Notifications: notes})
}

// respondSessionError maps a session error onto a status and code and attaches
// the notifications the failed operation raised.
func respondSessionError(w http.ResponseWriter, s *session.Session, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:         err.Error(),
		Code:          code,
		Notifications: s.DrainNotifications(),
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, checkout.ErrInvalidPlayerID):
		return http.StatusUnprocessableEntity, "invalid_player_id"
	case errors.Is(err, reviews.ErrIncompleteReview):
		return http.StatusUnprocessableEntity, "incomplete_review"
	case errors.Is(err, reviews.ErrInvalidRating):
		return http.StatusUnprocessableEntity, "invalid_rating"
	case errors.Is(err, promo.ErrInvalidPromoCode):
		return http.StatusUnprocessableEntity, "invalid_promo_code"
	case errors.Is(err, checkout.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition"
	case errors.Is(err, session.ErrNotPrivileged):
		return http.StatusForbidden, "not_privileged"
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, reviews.ErrSubmitFailed):
		return http.StatusBadGateway, "review_submit_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
