package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/goldshop/internal/catalog"
	"github.com/fjod/goldshop/internal/domain"
)

type fakeReviews struct {
	mu        sync.Mutex
	list      []domain.Review
	appended  []domain.ReviewDraft
	fetchErr  error
	appendErr error
}

func (f *fakeReviews) FetchReviews(ctx context.Context) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Review, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeReviews) AppendReview(ctx context.Context, draft domain.ReviewDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, draft)
	f.list = append([]domain.Review{{
		ID:        int64(len(f.list) + 1),
		Username:  draft.Username,
		Rating:    draft.Rating,
		Comment:   draft.Comment,
		CreatedAt: time.Now(),
	}}, f.list...)
	return nil
}

type fakeLogs struct {
	mu        sync.Mutex
	entries   []domain.PurchaseLogEntry
	records   []domain.PurchaseRecord
	fetches   int
	appendErr error
}

func (f *fakeLogs) FetchLogs(ctx context.Context) ([]domain.PurchaseLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	out := make([]domain.PurchaseLogEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeLogs) AppendLog(ctx context.Context, record domain.PurchaseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeLogs) Records() []domain.PurchaseRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PurchaseRecord, len(f.records))
	copy(out, f.records)
	return out
}

func (f *fakeLogs) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

var errServiceDown = errors.New("service down")

func testDeps(r *fakeReviews, l *fakeLogs) Deps {
	return Deps{
		Catalog:        catalog.Default(),
		Reviews:        r,
		Logs:           l,
		PromoCode:      "GOLDADMIN",
		PollInterval:   time.Hour,
		RequestTimeout: time.Second,
	}
}
