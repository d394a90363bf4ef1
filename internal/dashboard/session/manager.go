package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/domain"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/fetch"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/dashboard/store"
)

// Manager keeps one Store per owner identity. A store is created and
// identified on the owner's first request.
type Manager struct {
	source  fetch.Source
	remote  store.Remote
	opts    store.Options
	idleTTL time.Duration
	clock   func() time.Time
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	store    *store.Store
	lastSeen time.Time
	ready    chan struct{}
	leases   int // requests currently holding the store
}

func NewManager(source fetch.Source, remote store.Remote, opts store.Options, idleTTL time.Duration) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		source:   source,
		remote:   remote,
		opts:     opts,
		idleTTL:  idleTTL,
		clock:    clock,
		log:      opts.Logger,
		sessions: make(map[string]*entry),
	}
}

// Get returns the owner's store, loading it on first use. The store is not
// leased; callers that hold it across a request use Acquire.
func (m *Manager) Get(ctx context.Context, owner string) (*store.Store, error) {
	s, release, err := m.Acquire(ctx, owner)
	if err != nil {
		return nil, err
	}
	release()
	return s, nil
}

// Acquire returns the owner's store, loading it on first use, and leases it
// until release is called. A leased session is never evicted, and release
// counts as the session's last use.
func (m *Manager) Acquire(ctx context.Context, owner string) (*store.Store, func(), error) {
	if owner == "" {
		return nil, nil, domain.ErrIdentityRequired
	}

	m.mu.Lock()
	e, ok := m.sessions[owner]
	if ok {
		e.lastSeen = m.clock()
		e.leases++
		m.mu.Unlock()
		release := m.releaser(e)

		select {
		case <-e.ready:
			return e.store, release, nil
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		}
	}

	log := m.log.With().Str("owner", owner).Logger()
	opts := m.opts
	opts.Logger = log
	e = &entry{
		store:    store.New(fetch.NewAdapter(m.source, log), m.remote, opts),
		lastSeen: m.clock(),
		ready:    make(chan struct{}),
		leases:   1,
	}
	m.sessions[owner] = e
	m.mu.Unlock()

	// the initial load runs detached from the caller so that a cancelled
	// request does not leave a half-identified session behind
	e.store.Identify(context.WithoutCancel(ctx), owner)
	close(e.ready)
	log.Info().Msg("session opened")
	return e.store, m.releaser(e), nil
}

func (m *Manager) releaser(e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			e.leases--
			e.lastSeen = m.clock()
		})
	}
}

// End drops the owner's session once its pending writes have drained.
func (m *Manager) End(ctx context.Context, owner string) error {
	m.mu.Lock()
	e, ok := m.sessions[owner]
	delete(m.sessions, owner)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.close(ctx, owner, e)
}

// EvictIdle ends sessions that have not been used within the idle TTL, are
// not leased by a request and have no writes in flight. It returns how many were ended.
func (m *Manager) EvictIdle(ctx context.Context) int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.clock().Add(-m.idleTTL)

	m.mu.Lock()
	idle := make(map[string]*entry)
	for owner, e := range m.sessions {
		if !isReady(e) || e.leases > 0 || e.lastSeen.After(cutoff) || e.store.PendingWrites() > 0 {
			continue
		}
		idle[owner] = e
		delete(m.sessions, owner)
	}
	m.mu.Unlock()

	for owner, e := range idle {
		if err := m.close(ctx, owner, e); err != nil {
			m.log.Warn().Err(err).Str("owner", owner).Msg("closing idle session")
		}
	}
	return len(idle)
}

// ReconcileAll refreshes every open session from the remote store. It is
// the only path that re-reads data for an identity that has not changed.
func (m *Manager) ReconcileAll(ctx context.Context) (int, error) {
	stores := m.snapshot()

	var errs []error
	n := 0
	for owner, s := range stores {
		st, err := s.Refresh(ctx)
		if err != nil {
			errs = append(errs, err)
			m.log.Error().Err(err).Str("owner", owner).Msg("reconcile failed")
			continue
		}
		if st.Error != nil {
			m.log.Warn().Str("owner", owner).Str("error", *st.Error).Msg("reconcile kept stale data")
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Shutdown ends every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	var errs []error
	for owner, e := range all {
		if err := m.close(ctx, owner, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) snapshot() map[string]*store.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*store.Store, len(m.sessions))
	for owner, e := range m.sessions {
		if isReady(e) {
			out[owner] = e.store
		}
	}
	return out
}

func (m *Manager) close(ctx context.Context, owner string, e *entry) error {
	<-e.ready
	err := e.store.Close(ctx)
	e.store.Identify(ctx, "")
	m.log.Info().Str("owner", owner).Msg("session closed")
	return err
}

func isReady(e *entry) bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}
