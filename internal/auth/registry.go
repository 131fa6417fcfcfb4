package auth

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dimitrije/portfolio-api/internal/metrics"
	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/google/uuid"
)

// Profiles is what the auth layer needs from the profiles table.
type Profiles interface {
	RoleLookup
	ProfileStore
}

// ClientFactory creates a provider client for a new visitor.
type ClientFactory func() provider.Client

// Visitor is one browser: its auth state, operations and pending notifications.
type Visitor struct {
	ID     string
	Store  *Store
	Ops    *Operations
	Toasts *Toasts

	lastSeen atomic.Int64
}

func (v *Visitor) touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

type RegistryConfig struct {
	Operations OperationsConfig
	// ConfigError is shown when no client factory is available.
	ConfigError string
	IdleTimeout time.Duration
	// MaxVisitors bounds the registry. Zero means unbounded.
	MaxVisitors int
}

// Registry owns every live visitor. Visitors idle longer than IdleTimeout are
// closed, and the least recently seen one makes room when the registry is full.
type Registry struct {
	cfg      RegistryConfig
	clients  ClientFactory
	profiles Profiles
	recorder metrics.Recorder

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	visitors map[string]*Visitor
	now      func() time.Time
}

// NewRegistry builds a registry. A nil clients factory puts every visitor in
// the unconfigured state.
func NewRegistry(cfg RegistryConfig, clients ClientFactory, profiles Profiles, recorder metrics.Recorder) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:      cfg,
		clients:  clients,
		profiles: profiles,
		recorder: recorder,
		baseCtx:  ctx,
		cancel:   cancel,
		visitors: make(map[string]*Visitor),
		now:      time.Now,
	}
}

func (r *Registry) Configured() bool {
	return r.clients != nil
}

// Get returns a live visitor and marks it as seen.
func (r *Registry) Get(id string) (*Visitor, bool) {
	r.mu.Lock()
	v, ok := r.visitors[id]
	r.mu.Unlock()
	if ok {
		v.touch(r.now())
	}
	return v, ok
}

// Create starts a new visitor with a fresh id.
func (r *Registry) Create() *Visitor {
	toasts := NewToasts()
	roles := NewRoleResolver(r.profiles)

	var client provider.Client
	if r.clients != nil {
		client = r.clients()
	}

	store := NewStore(client, roles, NewProvisioner(r.profiles, toasts, r.recorder), r.recorder, r.cfg.ConfigError)
	v := &Visitor{
		ID:     uuid.NewString(),
		Store:  store,
		Ops:    NewOperations(r.cfg.Operations, client, store, roles, r.profiles, toasts, r.recorder),
		Toasts: toasts,
	}
	v.touch(r.now())
	store.Start(r.baseCtx)

	r.mu.Lock()
	var displaced *Visitor
	if r.cfg.MaxVisitors > 0 && len(r.visitors) >= r.cfg.MaxVisitors {
		displaced = r.leastRecentLocked()
		delete(r.visitors, displaced.ID)
	}
	r.visitors[v.ID] = v
	n := len(r.visitors)
	r.mu.Unlock()

	if displaced != nil {
		displaced.Store.Close()
		slog.Warn("visitor registry full, dropped least recent visitor", "visitor_id", displaced.ID, "max", r.cfg.MaxVisitors)
	}

	r.recorder.ActiveVisitors(n)
	slog.Debug("visitor created", "visitor_id", v.ID)
	return v
}

// leastRecentLocked must be called with r.mu held on a non-empty registry.
func (r *Registry) leastRecentLocked() *Visitor {
	var oldest *Visitor
	for _, v := range r.visitors {
		if oldest == nil || v.lastSeen.Load() < oldest.lastSeen.Load() {
			oldest = v
		}
	}
	return oldest
}

// GetOrCreate returns the visitor for id, or a new one when id is unknown or
// has been evicted.
func (r *Registry) GetOrCreate(id string) (*Visitor, bool) {
	if id != "" {
		if v, ok := r.Get(id); ok {
			return v, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Evict closes visitors idle for longer than the configured timeout.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.cfg.IdleTimeout).UnixNano()

	var idle []*Visitor
	r.mu.Lock()
	for id, v := range r.visitors {
		if v.lastSeen.Load() < cutoff {
			idle = append(idle, v)
			delete(r.visitors, id)
		}
	}
	n := len(r.visitors)
	r.mu.Unlock()

	for _, v := range idle {
		v.Store.Close()
	}
	if len(idle) > 0 {
		r.recorder.ActiveVisitors(n)
		slog.Info("evicted idle visitors", "count", len(idle), "remaining", n)
	}
	return len(idle)
}

// Run evicts idle visitors every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

// Close tears down every visitor.
func (r *Registry) Close() {
	r.mu.Lock()
	visitors := r.visitors
	r.visitors = make(map[string]*Visitor)
	r.mu.Unlock()

	r.cancel()
	for _, v := range visitors {
		v.Store.Close()
	}
	r.recorder.ActiveVisitors(0)
}
