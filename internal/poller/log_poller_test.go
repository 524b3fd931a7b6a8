package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/goldshop/internal/domain"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

type mockFetcher struct {
	m       sync.Mutex
	calls   int
	results [][]domain.PurchaseLogEntry
	errs    []error
}

func (m *mockFetcher) FetchLogs(context.Context) ([]domain.PurchaseLogEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.results) {
		return m.results[i], nil
	}
	return nil, nil
}

func (m *mockFetcher) getCalls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

func entry(id int64) domain.PurchaseLogEntry {
	return domain.PurchaseLogEntry{ID: id, PlayerID: "12345", ProductName: "100 GOLD", Amount: 100}
}

// manualTicker lets a test decide when the interval elapses.
func manualTicker(p *LogPoller) chan time.Time {
	ch := make(chan time.Time)
	p.ticker = func(time.Duration) (<-chan time.Time, func()) {
		return ch, func() {}
	}
	return ch
}

func TestLogPoller_FetchesImmediatelyThenOncePerTick(t *testing.T) {
	fetcher := &mockFetcher{}
	p := NewLogPoller(fetcher, DefaultInterval)
	tick := manualTicker(p)

	require.True(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return fetcher.getCalls() == 1 }, time.Second, 5*time.Millisecond)

	for i := 2; i <= 4; i++ {
		tick <- time.Now()
		want := i
		require.Eventually(t, func() bool { return fetcher.getCalls() == want }, time.Second, 5*time.Millisecond)
	}

	p.Stop()
	assert.Equal(t, 4, fetcher.getCalls())
	assert.Assert(t, !p.Running())
}

func TestLogPoller_TicksAtDefaultInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		p := NewLogPoller(&mockFetcher{}, interval)
		got := make(chan time.Duration, 1)
		p.ticker = func(d time.Duration) (<-chan time.Time, func()) {
			got <- d
			return make(chan time.Time), func() {}
		}

		require.True(t, p.Start(context.Background()))
		select {
		case d := <-got:
			assert.Equal(t, DefaultInterval, d)
		case <-time.After(time.Second):
			t.Fatal("ticker was never started")
		}
		p.Stop()
	}
	assert.Equal(t, 5*time.Second, DefaultInterval)
}

func TestLogPoller_NoFetchAfterStop(t *testing.T) {
	fetcher := &mockFetcher{}
	p := NewLogPoller(fetcher, 10*time.Millisecond)

	p.Start(context.Background())
	require.Eventually(t, func() bool { return fetcher.getCalls() >= 3 }, 2*time.Second, 5*time.Millisecond)

	p.Stop()
	stoppedAt := fetcher.getCalls()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, stoppedAt, fetcher.getCalls())
}

func TestLogPoller_LastFetchWins(t *testing.T) {
	fetcher := &mockFetcher{results: [][]domain.PurchaseLogEntry{
		{entry(1)},
		{entry(3), entry(2)},
	}}
	p := NewLogPoller(fetcher, DefaultInterval)
	tick := manualTicker(p)

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool { return len(p.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	tick <- time.Now()
	require.Eventually(t, func() bool { return len(p.Snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(3), p.Snapshot()[0].ID)
}

func TestLogPoller_FailureKeepsPreviousSnapshotAndTimer(t *testing.T) {
	fetcher := &mockFetcher{
		results: [][]domain.PurchaseLogEntry{{entry(1)}, nil, {entry(2)}},
		errs:    []error{nil, errors.New("service down"), nil},
	}
	p := NewLogPoller(fetcher, DefaultInterval)
	tick := manualTicker(p)

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool { return len(p.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	tick <- time.Now()
	require.Eventually(t, func() bool { return fetcher.getCalls() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), p.Snapshot()[0].ID)

	tick <- time.Now()
	require.Eventually(t, func() bool {
		s := p.Snapshot()
		return len(s) == 1 && s[0].ID == 2
	}, time.Second, 5*time.Millisecond)
}

func TestLogPoller_StartTwiceRunsOneLoop(t *testing.T) {
	fetcher := &mockFetcher{}
	p := NewLogPoller(fetcher, DefaultInterval)
	manualTicker(p)

	assert.Assert(t, p.Start(context.Background()))
	assert.Assert(t, !p.Start(context.Background()))
	require.Eventually(t, func() bool { return fetcher.getCalls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, fetcher.getCalls())

	p.Stop()
	p.Stop()
}

func TestLogPoller_ParentContextCancelStopsLoop(t *testing.T) {
	fetcher := &mockFetcher{}
	p := NewLogPoller(fetcher, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)
	require.Eventually(t, func() bool { return fetcher.getCalls() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	stoppedAt := fetcher.getCalls()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, stoppedAt, fetcher.getCalls())
	p.Stop()
}
