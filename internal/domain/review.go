package domain

import "time"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

type Review struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewDraft holds the review form between submissions.
type ReviewDraft struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func NewReviewDraft() ReviewDraft {
	return ReviewDraft{Rating: DefaultRating}
}
