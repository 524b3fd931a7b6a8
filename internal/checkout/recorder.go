package checkout

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fjod/goldshop/internal/domain"
)

// LogAppender appends one entry to the purchase log service.
type LogAppender interface {
	AppendLog(ctx context.Context, record domain.PurchaseRecord) error
}

// Recorder sends one purchase log append per cart line. Appends are
// fire-and-forget: they run detached from the caller, failures are logged and
// nothing is retried.
type Recorder struct {
	appender LogAppender
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewRecorder(appender LogAppender, timeout time.Duration) *Recorder {
	return &Recorder{
		appender: appender,
		timeout:  timeout,
	}
}

func (r *Recorder) Record(playerID string, lines []domain.CartLine) {
	for _, line := range lines {
		record := domain.PurchaseRecord{
			PlayerID:    playerID,
			ProductName: line.Name,
			Amount:      line.Amount,
			Price:       line.Price,
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			defer cancel()
			if err := r.appender.AppendLog(ctx, record); err != nil {
				log.Printf("failed to record purchase player_id = %v product = %v: %v", record.PlayerID, record.ProductName, err)
			}
		}()
	}
}

// Wait blocks until every append started so far has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
