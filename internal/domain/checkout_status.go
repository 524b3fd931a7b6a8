package domain

type CheckoutStatus string

const (
	CheckoutStatusClosed CheckoutStatus = "CLOSED"
	CheckoutStatusOpen   CheckoutStatus = "OPEN"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusClosed: {CheckoutStatusOpen},
	CheckoutStatusOpen:   {CheckoutStatusClosed},
}

// CanTransitionTo reports whether the dialog may move from s to next.
func (s CheckoutStatus) CanTransitionTo(next CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
