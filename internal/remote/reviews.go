package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/goldshop/internal/domain"
)

type reviewDTO struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Rating    int     `json:"rating"`
	Comment   string  `json:"comment"`
	CreatedAt *string `json:"created_at"`
}

type reviewsResponse struct {
	Reviews []reviewDTO `json:"reviews"`
}

type appendReviewRequest struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// ReviewClient talks to the review service.
type ReviewClient struct {
	endpoint *endpoint
}

func NewReviewClient(url string, timeout time.Duration) *ReviewClient {
	return &ReviewClient{endpoint: newEndpoint("review-service", url, timeout)}
}

func (c *ReviewClient) FetchReviews(ctx context.Context) ([]domain.Review, error) {
	data, err := c.endpoint.get(ctx)
	if err != nil {
		return nil, err
	}

	var resp reviewsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	reviews := make([]domain.Review, 0, len(resp.Reviews))
	for _, r := range resp.Reviews {
		reviews = append(reviews, domain.Review{
			ID:        r.ID,
			Username:  r.Username,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: parseTimestamp(r.CreatedAt),
		})
	}
	return reviews, nil
}

func (c *ReviewClient) AppendReview(ctx context.Context, draft domain.ReviewDraft) error {
	_, err := c.endpoint.post(ctx, appendReviewRequest{
		Username: draft.Username,
		Rating:   draft.Rating,
		Comment:  draft.Comment,
	})
	return err
}
