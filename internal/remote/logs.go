package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/goldshop/internal/domain"
	"github.com/shopspring/decimal"
)

type logDTO struct {
	ID          int64           `json:"id"`
	PlayerID    string          `json:"player_id"`
	ProductName string          `json:"product_name"`
	Amount      int             `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   *string         `json:"created_at"`
}

type logsResponse struct {
	Logs []logDTO `json:"logs"`
}

type appendLogRequest struct {
	PlayerID    string      `json:"player_id"`
	ProductName string      `json:"product_name"`
	Amount      int         `json:"amount"`
	Price       json.Number `json:"price"`
}

// LogClient talks to the purchase-log service.
type LogClient struct {
	endpoint *endpoint
}

func NewLogClient(url string, timeout time.Duration) *LogClient {
	return &LogClient{endpoint: newEndpoint("purchase-log-service", url, timeout)}
}

func (c *LogClient) FetchLogs(ctx context.Context) ([]domain.PurchaseLogEntry, error) {
	data, err := c.endpoint.get(ctx)
	if err != nil {
		return nil, err
	}

	var resp logsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode purchase logs: %w", err)
	}

	logs := make([]domain.PurchaseLogEntry, 0, len(resp.Logs))
	for _, l := range resp.Logs {
		logs = append(logs, domain.PurchaseLogEntry{
			ID:          l.ID,
			PlayerID:    l.PlayerID,
			ProductName: l.ProductName,
			Amount:      l.Amount,
			Price:       l.Price,
			CreatedAt:   parseTimestamp(l.CreatedAt),
		})
	}
	return logs, nil
}

func (c *LogClient) AppendLog(ctx context.Context, record domain.PurchaseRecord) error {
	_, err := c.endpoint.post(ctx, appendLogRequest{
		PlayerID:    record.PlayerID,
		ProductName: record.ProductName,
		Amount:      record.Amount,
		Price:       json.Number(record.Price.String()),
	})
	return err
}
