package cart

import (
	"github.com/fjod/goldshop/internal/domain"
	"github.com/shopspring/decimal"
)

// Manager owns the cart lines of one session. It is not safe for concurrent
// use; the session serializes access.
type Manager struct {
	lines []domain.CartLine
}

func NewManager() *Manager {
	return &Manager{}
}

// Add increments the quantity of an existing line or appends a new one.
func (m *Manager) Add(product domain.Product) {
	for i := range m.lines {
		if m.lines[i].ID == product.ID {
			m.lines[i].Quantity++
			return
		}
	}
	m.lines = append(m.lines, domain.CartLine{Product: product, Quantity: 1})
}

// Remove drops the line for productID. Returns false when there was none.
func (m *Manager) Remove(productID int64) bool {
	for i, line := range m.lines {
		if line.ID == productID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range m.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count is the number of distinct lines, not the number of items.
func (m *Manager) Count() int {
	return len(m.lines)
}

func (m *Manager) IsEmpty() bool {
	return len(m.lines) == 0
}

func (m *Manager) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

func (m *Manager) Clear() {
	m.lines = nil
}

func (m *Manager) View() domain.CartView {
	return domain.CartView{
		Lines: m.Lines(),
		Total: m.Total(),
		Count: m.Count(),
	}
}
