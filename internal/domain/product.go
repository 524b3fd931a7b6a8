package domain

import "github.com/shopspring/decimal"

// Product is a purchasable gold pack. Catalog entries never change during a session.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Amount   int             `json:"amount"`
	Price    decimal.Decimal `json:"price"`
	Discount int             `json:"discount,omitempty"`
	Image    string          `json:"image"`
}
