package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fjod/goldshop/internal/cart"
	"github.com/fjod/goldshop/internal/catalog"
	"github.com/fjod/goldshop/internal/checkout"
	"github.com/fjod/goldshop/internal/domain"
	"github.com/fjod/goldshop/internal/poller"
	"github.com/fjod/goldshop/internal/promo"
	"github.com/fjod/goldshop/internal/reviews"
)

var (
	ErrNotPrivileged = errors.New("purchase log requires an activated promo code")
	ErrSessionClosed = errors.New("session is closed")
)

// LogService is the purchase-log service as seen by a session.
type LogService interface {
	checkout.LogAppender
	poller.LogFetcher
}

// Deps are shared by every session of the process.
type Deps struct {
	Catalog        *catalog.Catalog
	Reviews        reviews.Service
	Logs           LogService
	PromoCode      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// Session owns all state of one shopper: cart, checkout dialog, privilege
// flag, drafts and pending notifications. Mutations are serialized by mu.
type Session struct {
	id        string
	createdAt time.Time
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	catalog  *catalog.Catalog
	recorder *checkout.Recorder
	poller   *poller.LogPoller
	reviews  *reviews.Module

	mu          sync.Mutex
	lastSeen    time.Time
	closed      bool
	cart        *cart.Manager
	checkout    *checkout.Validator
	promo       *promo.Gate
	promoInput  string
	reviewDraft domain.ReviewDraft
	notices     []domain.Notification
}

func New(id string, deps Deps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	now := time.Now()
	return &Session{
		id:          id,
		createdAt:   now,
		timeout:     timeout,
		ctx:         ctx,
		cancel:      cancel,
		catalog:     deps.Catalog,
		recorder:    checkout.NewRecorder(deps.Logs, timeout),
		poller:      poller.NewLogPoller(deps.Logs, deps.PollInterval),
		reviews:     reviews.NewModule(deps.Reviews),
		lastSeen:    now,
		cart:        cart.NewManager(),
		checkout:    checkout.NewValidator(),
		promo:       promo.NewGate(deps.PromoCode),
		reviewDraft: domain.NewReviewDraft(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start runs the initial review load in the background.
func (s *Session) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		_ = s.reviews.Load(ctx)
	}()
}

// Close ends the session: the log poller is stopped and further operations
// fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.poller.Stop()
}

// Wait blocks until background loads and purchase appends have finished.
func (s *Session) Wait() {
	s.wg.Wait()
	s.recorder.Wait()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// lock must be paired with s.mu.Unlock.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.lastSeen = time.Now()
	return nil
}

func (s *Session) notify(n domain.Notification) {
	s.notices = append(s.notices, n)
}

// DrainNotifications hands out pending notifications once.
func (s *Session) DrainNotifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

func (s *Session) Catalog() []domain.Product {
	return s.catalog.Products()
}

func (s *Session) AddToCart(productID int64) (domain.CartView, error) {
	product, err := s.catalog.Lookup(productID)
	if err != nil {
		return domain.CartView{}, err
	}

	if err := s.lock(); err != nil {
		return domain.CartView{}, err
	}
	defer s.mu.Unlock()

	s.cart.Add(product)
	s.notify(addedToCart(product.Name))
	return s.cart.View(), nil
}

// RemoveFromCart confirms the removal even when the product was not in the cart.
func (s *Session) RemoveFromCart(productID int64) (domain.CartView, error) {
	if err := s.lock(); err != nil {
		return domain.CartView{}, err
	}
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	s.notify(removedFromCart)
	return s.cart.View(), nil
}

func (s *Session) Cart() (domain.CartView, error) {
	if err := s.lock(); err != nil {
		return domain.CartView{}, err
	}
	defer s.mu.Unlock()
	return s.cart.View(), nil
}

// CheckoutState is the checkout dialog as seen by the shopper.
type CheckoutState struct {
	Status domain.CheckoutStatus `json:"status"`
	Draft  domain.CheckoutDraft  `json:"draft"`
	Total  string                `json:"total"`
}

func (s *Session) checkoutState() CheckoutState {
	return CheckoutState{
		Status: s.checkout.Status(),
		Draft:  s.checkout.Draft(),
		Total:  s.cart.Total().String(),
	}
}

func (s *Session) Checkout() (CheckoutState, error) {
	if err := s.lock(); err != nil {
		return CheckoutState{}, err
	}
	defer s.mu.Unlock()
	return s.checkoutState(), nil
}

func (s *Session) OpenCheckout() (CheckoutState, error) {
	if err := s.lock(); err != nil {
		return CheckoutState{}, err
	}
	defer s.mu.Unlock()

	if err := s.checkout.Open(s.cart.IsEmpty()); err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			s.notify(cartIsEmpty)
		}
		return s.checkoutState(), err
	}
	return s.checkoutState(), nil
}

func (s *Session) DismissCheckout() (CheckoutState, error) {
	if err := s.lock(); err != nil {
		return CheckoutState{}, err
	}
	defer s.mu.Unlock()

	s.checkout.Dismiss()
	return s.checkoutState(), nil
}

// ConfirmPayment validates the player id and completes the simulated payment:
// purchase log appends are started for every line, the shopper is told the
// payment succeeded, then the cart and player id are cleared and the dialog
// closes.
func (s *Session) ConfirmPayment(playerID string, method domain.PaymentMethod) (domain.Receipt, error) {
	if err := s.lock(); err != nil {
		return domain.Receipt{}, err
	}
	defer s.mu.Unlock()

	draft, err := s.checkout.Confirm(playerID, method)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidPlayerID) {
			s.notify(invalidPlayerID)
		}
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		PlayerID:      draft.PlayerID,
		PaymentMethod: draft.PaymentMethod,
		Lines:         s.cart.Lines(),
		Total:         s.cart.Total(),
	}

	s.recorder.Record(draft.PlayerID, receipt.Lines)
	log.Printf("checkout completed session = %v player_id = %v method = %v total = %v", s.id, draft.PlayerID, draft.PaymentMethod, receipt.Total)
	s.notify(paymentSucceeded)
	s.cart.Clear()
	s.checkout.Complete()

	return receipt, nil
}

// PromoState is the promo form as seen by the shopper.
type PromoState struct {
	Input      string `json:"input"`
	Privileged bool   `json:"privileged"`
}

// ApplyPromoCode unlocks the purchase log and starts polling it on a match.
// A wrong code keeps the typed input and the current privilege.
func (s *Session) ApplyPromoCode(code string) (PromoState, error) {
	if err := s.lock(); err != nil {
		return PromoState{}, err
	}
	defer s.mu.Unlock()

	s.promoInput = code
	changed, err := s.promo.Apply(code)
	if err != nil {
		s.notify(promoRejected)
		return s.promoState(), err
	}

	s.promoInput = ""
	s.notify(promoAccepted)
	if changed {
		log.Printf("purchase log unlocked session = %v", s.id)
		s.poller.Start(s.ctx)
	}
	return s.promoState(), nil
}

// RevokePrivilege drops the privilege flag and stops the log poller.
func (s *Session) RevokePrivilege() (PromoState, error) {
	if err := s.lock(); err != nil {
		return PromoState{}, err
	}
	defer s.mu.Unlock()

	if s.promo.Revoke() {
		s.poller.Stop()
		log.Printf("purchase log locked session = %v", s.id)
	}
	return s.promoState(), nil
}

func (s *Session) promoState() PromoState {
	return PromoState{Input: s.promoInput, Privileged: s.promo.Privileged()}
}

func (s *Session) Promo() (PromoState, error) {
	if err := s.lock(); err != nil {
		return PromoState{}, err
	}
	defer s.mu.Unlock()
	return s.promoState(), nil
}

func (s *Session) Privileged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promo.Privileged()
}

// PurchaseLogs returns the latest polled snapshot.
func (s *Session) PurchaseLogs() ([]domain.PurchaseLogEntry, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if !s.promo.Privileged() {
		return nil, ErrNotPrivileged
	}
	return s.poller.Snapshot(), nil
}

func (s *Session) Reviews() []domain.Review {
	return s.reviews.Snapshot()
}

func (s *Session) ReviewDraft() (domain.ReviewDraft, error) {
	if err := s.lock(); err != nil {
		return domain.ReviewDraft{}, err
	}
	defer s.mu.Unlock()
	return s.reviewDraft, nil
}

// SubmitReview keeps the draft on any failure so it can be resubmitted, and
// resets it after a successful submission. The session is not locked while
// the review service is called.
func (s *Session) SubmitReview(ctx context.Context, draft domain.ReviewDraft) ([]domain.Review, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	s.reviewDraft = draft
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.reviews.Submit(ctx, draft)

	if lockErr := s.lock(); lockErr != nil {
		return nil, lockErr
	}
	defer s.mu.Unlock()

	switch {
	case err == nil:
		s.reviewDraft = domain.NewReviewDraft()
		s.notify(reviewPublished)
	case errors.Is(err, reviews.ErrIncompleteReview):
		s.notify(reviewIncomplete)
	case errors.Is(err, reviews.ErrInvalidRating):
		s.notify(reviewBadRating)
	default:
		s.notify(reviewFailed)
	}
	return s.reviews.Snapshot(), err
}
