package reviews

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/fjod/goldshop/internal/domain"
)

var (
	ErrIncompleteReview = errors.New("username and comment are required")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrSubmitFailed     = errors.New("review submission failed")
)

type Service interface {
	FetchReviews(ctx context.Context) ([]domain.Review, error)
	AppendReview(ctx context.Context, draft domain.ReviewDraft) error
}

// Module caches the latest review list and submits new reviews.
type Module struct {
	service Service

	mu       sync.RWMutex
	snapshot []domain.Review
}

func NewModule(service Service) *Module {
	return &Module{service: service}
}

// Load replaces the snapshot with the service's list. On failure the previous
// snapshot is kept and the error is only logged and returned.
func (m *Module) Load(ctx context.Context) error {
	list, err := m.service.FetchReviews(ctx)
	if err != nil {
		log.Printf("failed to load reviews: %v", err)
		return err
	}

	m.mu.Lock()
	m.snapshot = list
	m.mu.Unlock()
	return nil
}

func (m *Module) Snapshot() []domain.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Review, len(m.snapshot))
	copy(out, m.snapshot)
	return out
}

// Submit validates the draft, appends it and refreshes the snapshot. Invalid
// drafts never reach the service.
func (m *Module) Submit(ctx context.Context, draft domain.ReviewDraft) error {
	clean, err := Validate(draft)
	if err != nil {
		return err
	}

	if err := m.service.AppendReview(ctx, clean); err != nil {
		log.Printf("failed to submit review username = %v: %v", clean.Username, err)
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	// the submission succeeded even if the refresh does not
	_ = m.Load(ctx)
	return nil
}

// Validate trims the text fields and checks the review form.
func Validate(draft domain.ReviewDraft) (domain.ReviewDraft, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	draft.Comment = strings.TrimSpace(draft.Comment)
	if draft.Username == "" || draft.Comment == "" {
		return draft, ErrIncompleteReview
	}
	if draft.Rating < domain.MinRating || draft.Rating > domain.MaxRating {
		return draft, ErrInvalidRating
	}
	return draft, nil
}
