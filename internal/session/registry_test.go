package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-session/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, reg prometheus.Registerer) (*Registry, *time.Time) {
	t.Helper()
	r, err := NewRegistry(RegistryParams{
		Metrics: metrics.NewSessionMetrics(reg),
		Factory: func(string) *Visitor { return &Visitor{} },
		IdleTTL: 10 * time.Minute,
	})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestNewRegistryRequiresFactory(t *testing.T) {
	if _, err := NewRegistry(RegistryParams{}); err == nil {
		t.Fatal("expected error without factory")
	}
}

func TestResolveIssuesAndReuses(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	first, created := r.Resolve("")
	require.True(t, created)
	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)

	again, created := r.Resolve(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created := r.Resolve("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, 2, r.Len())
}

func TestResolveDoesNotAdoptUnknownIDs(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	supplied := uuid.NewString()

	visitor, created := r.Resolve(supplied)
	assert.True(t, created)
	assert.NotEqual(t, supplied, visitor.ID)
}

func TestIdleVisitorsExpire(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, now := newTestRegistry(t, reg)

	stale, _ := r.Resolve("")
	*now = now.Add(6 * time.Minute)
	fresh, _ := r.Resolve("")
	*now = now.Add(5 * time.Minute)

	_, created := r.Resolve(stale.ID)
	assert.True(t, created, "expired visitor must be replaced")

	removed := r.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, r.Len())

	_, created = r.Resolve(fresh.ID)
	assert.False(t, created)

	gauge, err := testutil.GatherAndCount(reg, "storefront_sessions_active")
	require.NoError(t, err)
	assert.Equal(t, 1, gauge)
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	r.sweepInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
