package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/goldshop/internal/domain"
	"github.com/fjod/goldshop/internal/storeapi/cache"
)

const (
	ReviewListLimit = 50
	LogListLimit    = 100
)

type Repository interface {
	ListReviews(ctx context.Context, limit int) ([]domain.Review, error)
	CreateReview(ctx context.Context, draft domain.ReviewDraft) (domain.Review, error)
	ListPurchaseLogs(ctx context.Context, limit int) ([]domain.PurchaseLogEntry, error)
	CreatePurchaseLog(ctx context.Context, record domain.PurchaseRecord) (domain.PurchaseLogEntry, error)
}

type StoreService struct {
	repo  Repository
	cache cache.ReviewCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewStoreService(repo Repository, cache cache.ReviewCache) *StoreService {
	return &StoreService{
		repo:  repo,
		cache: cache,
	}
}

// ListReviews serves the newest reviews, from cache when possible.
func (s *StoreService) ListReviews(ctx context.Context) ([]domain.Review, error) {
	v, err, _ := s.sfg.Do("reviews", func() (interface{}, error) {
		reviews, err := s.cache.Get(ctx)
		if err == nil {
			return reviews, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		reviews, err = s.repo.ListReviews(ctx, ReviewListLimit)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, reviews); err != nil {
			log.Printf("cache set error: %v", err)
		}
		return reviews, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Review), nil
}

// CreateReview trims and validates the draft, stores it and drops the cached list.
func (s *StoreService) CreateReview(ctx context.Context, draft domain.ReviewDraft) (domain.Review, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	draft.Comment = strings.TrimSpace(draft.Comment)
	if draft.Username == "" || draft.Comment == "" {
		return domain.Review{}, ErrReviewFieldsRequired
	}
	if draft.Rating < domain.MinRating || draft.Rating > domain.MaxRating {
		return domain.Review{}, ErrRatingOutOfRange
	}

	review, err := s.repo.CreateReview(ctx, draft)
	if err != nil {
		return domain.Review{}, err
	}

	if err := s.cache.Delete(ctx); err != nil {
		log.Printf("cache delete error: %v", err)
	}
	log.Printf("review created id = %v rating = %v", review.ID, review.Rating)
	return review, nil
}

func (s *StoreService) ListPurchaseLogs(ctx context.Context) ([]domain.PurchaseLogEntry, error) {
	return s.repo.ListPurchaseLogs(ctx, LogListLimit)
}

func (s *StoreService) CreatePurchaseLog(ctx context.Context, record domain.PurchaseRecord) (domain.PurchaseLogEntry, error) {
	if record.PlayerID == "" || record.ProductName == "" {
		return domain.PurchaseLogEntry{}, ErrLogFieldsRequired
	}
	if record.Amount < 0 || record.Price.IsNegative() {
		return domain.PurchaseLogEntry{}, ErrNegativeQuantity
	}

	entry, err := s.repo.CreatePurchaseLog(ctx, record)
	if err != nil {
		return domain.PurchaseLogEntry{}, err
	}
	log.Printf("purchase logged id = %v player_id = %v product = %v", entry.ID, entry.PlayerID, entry.ProductName)
	return entry, nil
}
