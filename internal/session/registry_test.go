package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateGetDelete(t *testing.T) {
	reg := NewRegistry(testDeps(&fakeReviews{}, &fakeLogs{}), time.Minute)
	defer reg.Close()

	s := reg.Create()
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, reg.Delete(s.ID()))
	_, err = reg.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, reg.Delete(s.ID()), ErrSessionNotFound)

	_, err = s.Cart()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	reg := NewRegistry(testDeps(&fakeReviews{}, &fakeLogs{}), time.Minute)
	defer reg.Close()

	a := reg.Create()
	b := reg.Create()
	assert.NotEqual(t, a.ID(), b.ID())

	_, err := a.AddToCart(1)
	require.NoError(t, err)

	view, err := b.Cart()
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestRegistry_ExpireIdle(t *testing.T) {
	reg := NewRegistry(testDeps(&fakeReviews{}, &fakeLogs{}), time.Minute)
	defer reg.Close()

	stale := reg.Create()
	fresh := reg.Create()

	_, err := fresh.Cart()
	require.NoError(t, err)
	assert.Equal(t, 0, reg.expireIdle())

	reg.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 2, reg.expireIdle())

	reg.now = time.Now
	again := reg.Create()
	assert.Equal(t, 0, reg.expireIdle())

	_, err = reg.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = stale.Cart()
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = reg.Get(fresh.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = reg.Get(again.ID())
	require.NoError(t, err)
}

func TestRegistry_Close(t *testing.T) {
	logs := &fakeLogs{}
	reg := NewRegistry(testDeps(&fakeReviews{}, logs), time.Minute)

	s := reg.Create()
	_, err := s.AddToCart(1)
	require.NoError(t, err)
	_, err = s.OpenCheckout()
	require.NoError(t, err)
	_, err = s.ConfirmPayment("player123", "card")
	require.NoError(t, err)

	require.NoError(t, reg.Close())
	assert.Equal(t, 0, reg.Len())
	assert.Len(t, logs.Records(), 1)
}
