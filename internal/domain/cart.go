package domain

import "github.com/shopspring/decimal"

// CartLine is a product together with how many times it was added.
// Identity is the product id.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price multiplied by quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is a read-only picture of the cart handed out to callers.
type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
