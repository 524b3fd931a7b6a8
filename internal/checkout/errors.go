package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInvalidPlayerID   = errors.New("player id must be at least 5 characters")
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)
