package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/goldshop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAppender struct {
	m       sync.Mutex
	records []domain.PurchaseRecord
	failOn  string
}

func (m *mockAppender) AppendLog(_ context.Context, record domain.PurchaseRecord) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.records = append(m.records, record)
	if record.ProductName == m.failOn {
		return errors.New("purchase log unavailable")
	}
	return nil
}

func (m *mockAppender) getRecords() []domain.PurchaseRecord {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]domain.PurchaseRecord, len(m.records))
	copy(out, m.records)
	return out
}

func line(id int64, name string, amount int, price int64, qty int) domain.CartLine {
	return domain.CartLine{
		Product:  domain.Product{ID: id, Name: name, Amount: amount, Price: decimal.NewFromInt(price)},
		Quantity: qty,
	}
}

func TestRecord_OneAppendPerLine(t *testing.T) {
	appender := &mockAppender{}
	r := NewRecorder(appender, time.Second)

	r.Record("12345", []domain.CartLine{line(1, "100 GOLD", 100, 119, 1)})
	r.Wait()

	records := appender.getRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "12345", records[0].PlayerID)
	assert.Equal(t, "100 GOLD", records[0].ProductName)
	assert.Equal(t, 100, records[0].Amount)
	assert.True(t, decimal.NewFromInt(119).Equal(records[0].Price))
}

func TestRecord_QuantityDoesNotMultiplyAppends(t *testing.T) {
	appender := &mockAppender{}
	r := NewRecorder(appender, time.Second)

	r.Record("12345", []domain.CartLine{
		line(1, "100 GOLD", 100, 119, 3),
		line(2, "500 GOLD", 500, 499, 1),
	})
	r.Wait()

	assert.Len(t, appender.getRecords(), 2)
}

func TestRecord_FailureDoesNotStopSiblings(t *testing.T) {
	appender := &mockAppender{failOn: "500 GOLD"}
	r := NewRecorder(appender, time.Second)

	r.Record("12345", []domain.CartLine{
		line(1, "100 GOLD", 100, 119, 1),
		line(2, "500 GOLD", 500, 499, 1),
		line(3, "1000 GOLD", 1000, 899, 1),
	})
	r.Wait()

	names := []string{}
	for _, rec := range appender.getRecords() {
		names = append(names, rec.ProductName)
	}
	assert.ElementsMatch(t, []string{"100 GOLD", "500 GOLD", "1000 GOLD"}, names)
}
