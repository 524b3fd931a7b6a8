package promo

import (
	"errors"
	"strings"
)

var ErrInvalidPromoCode = errors.New("promo code not recognized")

// Gate unlocks the purchase log view for a session. It is a capability flag
// compared on the storefront side, not an authorization boundary.
type Gate struct {
	secret     string
	privileged bool
}

func NewGate(secret string) *Gate {
	return &Gate{secret: normalize(secret)}
}

// Apply returns changed=true only when the flag flips from false to true.
func (g *Gate) Apply(code string) (changed bool, err error) {
	if g.secret == "" || normalize(code) != g.secret {
		return false, ErrInvalidPromoCode
	}
	if g.privileged {
		return false, nil
	}
	g.privileged = true
	return true, nil
}

// Revoke drops the privilege. Returns true when it was set.
func (g *Gate) Revoke() bool {
	was := g.privileged
	g.privileged = false
	return was
}

func (g *Gate) Privileged() bool {
	return g.privileged
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
