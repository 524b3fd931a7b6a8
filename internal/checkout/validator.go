package checkout

import (
	"unicode/utf16"

	"github.com/fjod/goldshop/internal/domain"
)

const MinPlayerIDLength = 5

// Validator is the checkout dialog state machine. It holds the draft while
// the dialog is open. It is not safe for concurrent use.
type Validator struct {
	status domain.CheckoutStatus
	draft  domain.CheckoutDraft
}

func NewValidator() *Validator {
	return &Validator{
		status: domain.CheckoutStatusClosed,
		draft:  domain.CheckoutDraft{PaymentMethod: domain.PaymentMethodCard},
	}
}

func (v *Validator) Status() domain.CheckoutStatus {
	return v.status
}

func (v *Validator) IsOpen() bool {
	return v.status == domain.CheckoutStatusOpen
}

func (v *Validator) Draft() domain.CheckoutDraft {
	return v.draft
}

// Open moves the dialog to Open. An empty cart keeps it Closed.
func (v *Validator) Open(cartEmpty bool) error {
	if cartEmpty {
		return ErrEmptyCart
	}
	if v.status == domain.CheckoutStatusOpen {
		return nil
	}
	if !v.status.CanTransitionTo(domain.CheckoutStatusOpen) {
		return ErrIllegalTransition
	}
	v.status = domain.CheckoutStatusOpen
	return nil
}

// Dismiss closes the dialog and discards the draft. The cart is not touched.
func (v *Validator) Dismiss() {
	v.status = domain.CheckoutStatusClosed
	v.draft = domain.CheckoutDraft{PaymentMethod: domain.PaymentMethodCard}
}

// Confirm records the entered values in the draft and checks the player id.
// The dialog stays Open on failure; callers run the purchase side effects and
// then call Complete.
func (v *Validator) Confirm(playerID string, method domain.PaymentMethod) (domain.CheckoutDraft, error) {
	if v.status != domain.CheckoutStatusOpen {
		return domain.CheckoutDraft{}, ErrIllegalTransition
	}

	v.draft.PlayerID = playerID
	if method != "" {
		v.draft.PaymentMethod = method
	}

	if !ValidPlayerID(playerID) {
		return v.draft, ErrInvalidPlayerID
	}
	return v.draft, nil
}

// Complete clears the player id and closes the dialog after a successful payment.
func (v *Validator) Complete() {
	v.draft.PlayerID = ""
	v.status = domain.CheckoutStatusClosed
}

// ValidPlayerID only enforces presence and minimum length. Length is counted
// in UTF-16 code units, so a character outside the BMP counts as two.
func ValidPlayerID(playerID string) bool {
	return playerID != "" && len(utf16.Encode([]rune(playerID))) >= MinPlayerIDLength
}
