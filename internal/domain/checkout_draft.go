package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodSBP is the fast-payment-system option.
	PaymentMethodSBP PaymentMethod = "sbp"
)

// ParsePaymentMethod maps user input onto the closed set of methods.
// An empty string selects the card, which is the preselected option.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case "":
		return PaymentMethodCard, nil
	case PaymentMethodCard, PaymentMethodSBP:
		return PaymentMethod(s), nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// CheckoutDraft lives only while the checkout dialog is open.
type CheckoutDraft struct {
	PlayerID      string        `json:"player_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Receipt summarizes a completed checkout.
type Receipt struct {
	PlayerID      string          `json:"player_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Lines         []CartLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
}
