package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseLogEntry struct {
	ID          int64           `json:"id"`
	PlayerID    string          `json:"player_id"`
	ProductName string          `json:"product_name"`
	Amount      int             `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseRecord is what gets appended to the purchase log for one cart line.
type PurchaseRecord struct {
	PlayerID    string
	ProductName string
	Amount      int
	Price       decimal.Decimal
}
