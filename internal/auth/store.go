package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dimitrije/portfolio-api/internal/metrics"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/provider"
)

// State is a snapshot of who is signed in for one visitor.
type State struct {
	Identity   *models.Identity `json:"user"`
	Session    *models.Session  `json:"session"`
	IsAdmin    bool             `json:"is_admin"`
	Loading    bool             `json:"loading"`
	Error      string           `json:"error,omitempty"`
	Configured bool             `json:"configured"`
}

func (s State) Authenticated() bool {
	return s.Identity != nil
}

type initialFetch struct {
	session *models.Session
	seq     uint64
	err     error
}

// Store holds the auth state of one visitor. All provider-driven updates are
// applied by a single goroutine; an update older than the last applied one is
// dropped, so a slow initial fetch can never overwrite a newer event.
type Store struct {
	client      provider.Client
	roles       *RoleResolver
	provisioner *Provisioner
	recorder    metrics.Recorder
	configErr   string

	mu      sync.RWMutex
	state   State
	applied uint64
	seen    uint64
	changed chan struct{}
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once

	startOnce sync.Once
	cancel    context.CancelFunc
	sub       *provider.Subscription
	done      chan struct{}
}

// NewStore builds a store. A nil client means the provider is not configured
// and configErr is what the visitor will be shown.
func NewStore(client provider.Client, roles *RoleResolver, provisioner *Provisioner, recorder metrics.Recorder, configErr string) *Store {
	return &Store{
		client:      client,
		roles:       roles,
		provisioner: provisioner,
		recorder:    recorder,
		configErr:   configErr,
		state:       State{Loading: true, Configured: client != nil},
		changed:     make(chan struct{}),
		ready:       make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start subscribes to auth events and fetches the current session once.
// Without a client it records the configuration error and returns.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if s.client == nil {
			s.mu.Lock()
			s.state = State{Loading: false, Error: s.configErr, Configured: false}
			s.mu.Unlock()
			s.markReady()
			close(s.done)
			return
		}

		ctx, s.cancel = context.WithCancel(ctx)
		s.sub = s.client.OnAuthStateChange()

		initial := make(chan initialFetch, 1)
		go func() {
			session, seq, err := s.client.GetSession(ctx)
			initial <- initialFetch{session: session, seq: seq, err: err}
		}()

		go s.run(ctx, initial)
	})
}

func (s *Store) run(ctx context.Context, initial <-chan initialFetch) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case res := <-initial:
			initial = nil
			s.applyInitial(ctx, res)
		case <-s.sub.Ready():
			for _, ev := range s.sub.Drain() {
				if ctx.Err() != nil {
					return
				}
				s.applyEvent(ctx, ev)
			}
		}
	}
}

func (s *Store) applyInitial(ctx context.Context, res initialFetch) {
	if res.err != nil {
		slog.Error("session fetch failed", "error", res.err)
		s.mu.Lock()
		if !s.closed {
			s.state.Error = res.err.Error()
			s.state.Loading = false
			s.notifyLocked()
		}
		s.mu.Unlock()
		s.markReady()
		return
	}

	if s.stale(res.seq) {
		s.markSeen(res.seq)
		s.markReady()
		return
	}

	var isAdmin bool
	if res.session != nil {
		isAdmin = s.roles.IsAdmin(ctx, res.session.Identity.ID)
	}
	s.commit(res.seq, res.session, isAdmin)
}

func (s *Store) applyEvent(ctx context.Context, ev provider.Event) {
	s.recorder.AuthEvent(string(ev.Type))

	if s.stale(ev.Seq) {
		slog.Debug("dropping stale auth event", "type", ev.Type, "seq", ev.Seq)
		s.markSeen(ev.Seq)
		return
	}

	var isAdmin bool
	if ev.Session != nil {
		identity := &ev.Session.Identity
		if ev.Type == provider.EventSignedIn {
			// failures are already reported to the visitor
			_, _ = s.provisioner.Ensure(ctx, identity)
		}
		isAdmin = s.roles.IsAdmin(ctx, identity.ID)
	}
	s.commit(ev.Seq, ev.Session, isAdmin)
}

func (s *Store) stale(seq uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return seq < s.applied
}

// commit replaces the state unless something newer landed while roles were resolving.
func (s *Store) commit(seq uint64, session *models.Session, isAdmin bool) {
	s.mu.Lock()
	if !s.closed && seq >= s.applied {
		var identity *models.Identity
		if session != nil {
			identity = &session.Identity
		}
		s.state = State{
			Identity:   identity,
			Session:    session,
			IsAdmin:    isAdmin && identity != nil,
			Loading:    false,
			Configured: true,
		}
		s.applied = seq
	}
	if seq > s.seen {
		s.seen = seq
	}
	s.notifyLocked()
	s.mu.Unlock()

	s.markReady()
}

func (s *Store) markSeen(seq uint64) {
	s.mu.Lock()
	if seq > s.seen {
		s.seen = seq
		s.notifyLocked()
	}
	s.mu.Unlock()
}

// notifyLocked wakes Settle waiters. Caller holds s.mu.
func (s *Store) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// WaitReady blocks until the first session check has resolved.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settle blocks until every event the provider had emitted when Settle was
// called has been processed.
func (s *Store) Settle(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	target := s.client.LatestSeq()

	for {
		s.mu.RLock()
		done := s.closed || s.seen >= target
		changed := s.changed
		s.mu.RUnlock()
		if done {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ClearLocal signs the visitor out locally. Events the provider emitted
// before this call can no longer bring the old session back.
func (s *Store) ClearLocal() {
	var latest uint64
	if s.client != nil {
		latest = s.client.LatestSeq()
	}

	s.mu.Lock()
	if !s.closed {
		s.state.Identity = nil
		s.state.Session = nil
		s.state.IsAdmin = false
		s.state.Error = ""
		if latest+1 > s.applied {
			s.applied = latest + 1
		}
		s.notifyLocked()
	}
	s.mu.Unlock()
}

// SetError records msg as the visitor's last auth error. Empty clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	if !s.closed {
		s.state.Error = msg
	}
	s.mu.Unlock()
}

// Close unsubscribes and stops the consumer. No state changes happen after Close returns.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.notifyLocked()
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	s.startOnce.Do(func() { close(s.done) })
	<-s.done
}
