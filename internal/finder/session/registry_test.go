package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistryCreateGetDelete(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Hour)
	id, state := r.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	got, ok := r.Get(id)
	require.True(t, ok)
	require.Same(t, state, got)

	otherID, other := r.Create()
	require.NotEqual(t, id, otherID)
	require.NotSame(t, state, other)
	require.Equal(t, 2, r.Len())

	require.True(t, r.Delete(id))
	require.False(t, r.Delete(id))
	_, ok = r.Get(id)
	require.False(t, ok)
}

func TestRegistrySweepExpiresIdle(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(10*time.Minute, WithClock(clock.Now))

	stale, _ := r.Create()
	fresh, _ := r.Create()

	clock.Advance(8 * time.Minute)
	_, ok := r.Get(fresh)
	require.True(t, ok)

	clock.Advance(5 * time.Minute)
	require.Equal(t, 1, r.Sweep())

	_, ok = r.Get(stale)
	require.False(t, ok)
	_, ok = r.Get(fresh)
	require.True(t, ok)
}

func TestRegistryWithoutTTLNeverExpires(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0)}
	r := NewRegistry(0, WithClock(clock.Now))
	r.Create()
	clock.Advance(24 * time.Hour)
	require.Zero(t, r.Sweep())
	require.Equal(t, 1, r.Len())
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
