package cache

import (
	"context"
	"errors"

	"github.com/fjod/goldshop/internal/domain"
)

// ReviewCache holds the latest review list served by GET /reviews.
type ReviewCache interface {
	Get(ctx context.Context) ([]domain.Review, error)
	Set(ctx context.Context, reviews []domain.Review) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
