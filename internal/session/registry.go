package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-session/internal/browse"
	"github.com/angelmondragon/storefront-session/internal/cart"
	"github.com/angelmondragon/storefront-session/pkg/logger"
	"github.com/angelmondragon/storefront-session/pkg/metrics"
	"github.com/google/uuid"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Visitor bundles the per-visitor state held by the service.
type Visitor struct {
	ID     string
	Browse *browse.Session
	Cart   *cart.Model
}

// Factory builds the state for a newly issued visitor id.
type Factory func(id string) *Visitor

// RegistryParams configure the visitor registry.
type RegistryParams struct {
	Logger        *logger.Logger
	Metrics       *metrics.SessionMetrics
	Factory       Factory
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type entry struct {
	visitor  *Visitor
	lastSeen time.Time
}

// Registry keeps visitors in memory and evicts them after an idle period.
type Registry struct {
	logg          *logger.Logger
	metrics       *metrics.SessionMetrics
	factory       Factory
	idleTTL       time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Factory == nil {
		return nil, fmt.Errorf("visitor factory required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ttl := params.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	interval := params.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Registry{
		logg:          logg,
		metrics:       params.Metrics,
		factory:       params.Factory,
		idleTTL:       ttl,
		sweepInterval: interval,
		now:           time.Now,
		entries:       map[string]*entry{},
	}, nil
}

// Resolve returns the visitor for id, issuing a fresh visitor when id is
// unknown, expired or malformed. created reports whether a new id was issued.
func (r *Registry) Resolve(id string) (visitor *Visitor, created bool) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if e, ok := r.entries[id]; ok && now.Sub(e.lastSeen) < r.idleTTL {
			e.lastSeen = now
			return e.visitor, false
		}
	}

	fresh := uuid.NewString()
	visitor = r.factory(fresh)
	visitor.ID = fresh
	r.entries[fresh] = &entry{visitor: visitor, lastSeen: now}
	r.metrics.SetActive(len(r.entries))
	return visitor, true
}

// Sweep evicts idle visitors and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) >= r.idleTTL {
			delete(r.entries, id)
			removed++
		}
	}
	r.metrics.SetActive(len(r.entries))
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps on a fixed cadence until the context is canceled.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logg.Info(ctx, "session sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logg.Info(r.logg.WithField(ctx, "evicted", removed), "idle sessions evicted")
			}
		}
	}
}
