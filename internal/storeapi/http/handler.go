package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/goldshop/internal/domain"
	"github.com/fjod/goldshop/internal/storeapi/service"
)

const maxRequestBodySize = 1 << 20 // 1MB

type StoreService interface {
	ListReviews(ctx context.Context) ([]domain.Review, error)
	CreateReview(ctx context.Context, draft domain.ReviewDraft) (domain.Review, error)
	ListPurchaseLogs(ctx context.Context) ([]domain.PurchaseLogEntry, error)
	CreatePurchaseLog(ctx context.Context, record domain.PurchaseRecord) (domain.PurchaseLogEntry, error)
}

type Handler struct {
	svc     StoreService
	timeout time.Duration
}

func NewHandler(svc StoreService, timeout time.Duration) *Handler {
	return &Handler{
		svc:     svc,
		timeout: timeout,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ReviewRequestDTO struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type ReviewListDTO struct {
	Reviews []domain.Review `json:"reviews"`
}

type ReviewCreatedDTO struct {
	Success bool          `json:"success"`
	Review  domain.Review `json:"review"`
}

type LogRequestDTO struct {
	PlayerID    string          `json:"player_id"`
	ProductName string          `json:"product_name"`
	Amount      int             `json:"amount"`
	Price       decimal.Decimal `json:"price"`
}

// LogDTO is a purchase log entry with the price as a JSON number.
type LogDTO struct {
	ID          int64       `json:"id"`
	PlayerID    string      `json:"player_id"`
	ProductName string      `json:"product_name"`
	Amount      int         `json:"amount"`
	Price       json.Number `json:"price"`
	CreatedAt   time.Time   `json:"created_at"`
}

type LogListDTO struct {
	Logs []LogDTO `json:"logs"`
}

type LogCreatedDTO struct {
	Success bool   `json:"success"`
	Log     LogDTO `json:"log"`
}

func toLogDTO(e domain.PurchaseLogEntry) LogDTO {
	return LogDTO{
		ID:          e.ID,
		PlayerID:    e.PlayerID,
		ProductName: e.ProductName,
		Amount:      e.Amount,
		Price:       json.Number(e.Price.String()),
		CreatedAt:   e.CreatedAt,
	}
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviews, err := h.svc.ListReviews(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	respondJSON(w, http.StatusOK, ReviewListDTO{Reviews: reviews})
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReviewRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.svc.CreateReview(ctx, domain.ReviewDraft{
		Username: req.Username,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ReviewCreatedDTO{Success: true, Review: review})
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	entries, err := h.svc.ListPurchaseLogs(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	logs := make([]LogDTO, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, toLogDTO(e))
	}
	respondJSON(w, http.StatusOK, LogListDTO{Logs: logs})
}

func (h *Handler) CreateLog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LogRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.svc.CreatePurchaseLog(ctx, domain.PurchaseRecord{
		PlayerID:    req.PlayerID,
		ProductName: req.ProductName,
		Amount:      req.Amount,
		Price:       req.Price,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, LogCreatedDTO{Success: true, Log: toLogDTO(entry)})
}

// Preflight answers CORS preflight requests.
func Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusOK)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
}

// CORSMiddleware allows any origin on every response.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return false
	}
	return true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrReviewFieldsRequired),
		errors.Is(err, service.ErrRatingOutOfRange),
		errors.Is(err, service.ErrLogFieldsRequired),
		errors.Is(err, service.ErrNegativeQuantity):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		log.Printf("request failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
