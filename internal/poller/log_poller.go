package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fjod/goldshop/internal/domain"
)

const DefaultInterval = 5 * time.Second

type LogFetcher interface {
	FetchLogs(ctx context.Context) ([]domain.PurchaseLogEntry, error)
}

// LogPoller keeps a snapshot of the purchase log fresh while it runs. Every
// successful fetch replaces the whole snapshot; failed fetches leave it as is.
type LogPoller struct {
	fetcher  LogFetcher
	interval time.Duration
	ticker   func(time.Duration) (<-chan time.Time, func())

	mu       sync.RWMutex
	snapshot []domain.PurchaseLogEntry

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLogPoller(fetcher LogFetcher, interval time.Duration) *LogPoller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &LogPoller{
		fetcher:  fetcher,
		interval: interval,
		ticker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Start fetches once right away and then on every interval until Stop or ctx
// is done. Returns false if the poller is already running.
func (p *LogPoller) Start(ctx context.Context) bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.run(runCtx, done)
	return true
}

// Stop cancels the timer and waits for the loop to exit. No fetch starts after
// Stop returns.
func (p *LogPoller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *LogPoller) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}

func (p *LogPoller) Snapshot() []domain.PurchaseLogEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.PurchaseLogEntry, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}

func (p *LogPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.fetch(ctx)

	tick, stop := p.ticker(p.interval)
	defer stop()
	for {
		select {
		case <-tick:
			if ctx.Err() != nil {
				return
			}
			p.fetch(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *LogPoller) fetch(ctx context.Context) {
	logs, err := p.fetcher.FetchLogs(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("failed to fetch purchase logs: %v", err)
		}
		return
	}

	p.mu.Lock()
	p.snapshot = logs
	p.mu.Unlock()
}
