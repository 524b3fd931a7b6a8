package service

import "errors"

// Validation errors. Their messages are returned to clients as is.
var (
	ErrReviewFieldsRequired = errors.New("Username and comment are required")
	ErrRatingOutOfRange     = errors.New("Rating must be between 1 and 5")
	ErrLogFieldsRequired    = errors.New("player_id and product_name are required")
	ErrNegativeQuantity     = errors.New("amount and price must not be negative")
)
