package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/kingsocial/authkit/pkg/authstate"
	"github.com/kingsocial/authkit/pkg/transport"
)

// Manager is the single authority for "who is signed in right now". It owns
// the canonical authstate.State, reacts to both direct operation results and
// the transport's push event stream, and upholds the state invariants.
//
// Exactly one Manager is expected per application; multiple instances would
// each hold independent, potentially divergent copies of the state.
type Manager struct {
	tr     Transport
	logger *slog.Logger
	issuer string

	mu          sync.Mutex
	state       authstate.State
	pending     *transport.RawSession // grant withheld until MFA verification completes
	sub         *transport.Subscription
	watchers    map[uint64]func(authstate.State)
	nextWatcher uint64
	closed      bool
	started     bool
}

// Option configures a Manager during construction.
type Option func(*Manager)

// WithLogger configures the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIssuer sets the issuer name shown by authenticator apps for TOTP
// factors enrolled through this manager.
func WithIssuer(issuer string) Option {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

// New creates a session manager around the given transport. The state starts
// idle; call Start to resolve the initial session.
func New(tr Transport, opts ...Option) *Manager {
	m := &Manager{
		tr:       tr,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    authstate.State{Status: authstate.StatusIdle},
		watchers: make(map[uint64]func(authstate.State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start resolves the current session once and subscribes to the transport's
// push stream for the manager's lifetime. The subscription is established
// before the fetch so no event emitted during it is lost.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed || m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.sub = m.tr.OnAuthStateChange(m.handleEvent)
	m.mu.Unlock()

	m.transition(func(st *authstate.State) {
		st.Status = authstate.StatusLoading
		st.User, st.Session, st.Err = nil, nil, nil
	})

	raw, err := m.tr.GetSession(ctx)
	switch {
	case err != nil:
		mapped := authstate.MapError(err)
		m.transition(func(st *authstate.State) {
			st.Status = authstate.StatusError
			st.User, st.Session = nil, nil
			st.Err = mapped
		})
		return mapped
	case raw != nil && raw.User != nil:
		m.transition(func(st *authstate.State) {
			st.Status = authstate.StatusAuthenticated
			st.User = authstate.MapUser(raw.User)
			st.Session = authstate.MapSession(raw)
			st.Err = nil
		})
	default:
		m.transition(func(st *authstate.State) {
			st.Status = authstate.StatusUnauthenticated
			st.User, st.Session, st.Err = nil, nil, nil
		})
	}
	return nil
}

// State returns a snapshot of the current auth state.
func (m *Manager) State() authstate.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnChange registers a watcher invoked after every state transition. The
// returned function cancels the registration.
func (m *Manager) OnChange(fn func(authstate.State)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextWatcher++
	id := m.nextWatcher
	m.watchers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

// Close tears the manager down: the push subscription is released and any
// late-arriving operation result is dropped instead of mutating disposed
// state.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sub := m.sub
	m.sub = nil
	m.pending = nil
	m.mu.Unlock()

	sub.Unsubscribe()
	return nil
}

// handleEvent applies one push event. Events arrive in emission order and
// are applied sequentially, last write wins on overlapping fields.
func (m *Manager) handleEvent(event transport.Event, raw *transport.RawSession) {
	switch event {
	case transport.EventSignedIn:
		if raw == nil || raw.User == nil {
			return
		}
		m.transition(func(st *authstate.State) {
			st.Status = authstate.StatusAuthenticated
			st.User = authstate.MapUser(raw.User)
			st.Session = authstate.MapSession(raw)
			st.Err = nil
		})
	case transport.EventSignedOut:
		m.mu.Lock()
		m.pending = nil
		m.mu.Unlock()
		m.transition(func(st *authstate.State) {
			st.Status = authstate.StatusUnauthenticated
			st.User, st.Session, st.Err = nil, nil, nil
		})
	case transport.EventTokenRefreshed:
		// Session rotates in place; status and user stay untouched, and only
		// an already-authenticated state accepts the update.
		m.transition(func(st *authstate.State) {
			if st.Status != authstate.StatusAuthenticated || raw == nil {
				return
			}
			st.Session = authstate.MapSession(raw)
		})
	case transport.EventUserUpdated:
		m.transition(func(st *authstate.State) {
			if st.Status != authstate.StatusAuthenticated || raw == nil || raw.User == nil {
				return
			}
			st.User = authstate.MapUser(raw.User)
		})
	default:
		// Unrecognized event types are ignored for forward compatibility.
	}
}

// transition applies a mutation to a copy of the state and publishes it.
// Closed managers drop transitions silently; this is what protects against
// late results after Close.
func (m *Manager) transition(mutate func(*authstate.State)) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	st := m.state
	mutate(&st)
	m.state = st

	watchers := make([]func(authstate.State), 0, len(m.watchers))
	for _, w := range m.watchers {
		watchers = append(watchers, w)
	}
	m.mu.Unlock()

	for _, w := range watchers {
		w(st)
	}
}

// beginOperation moves the state to loading and clears any previous error,
// the common entry of most operations.
func (m *Manager) beginOperation() {
	m.transition(func(st *authstate.State) {
		st.Status = authstate.StatusLoading
		st.User, st.Session, st.Err = nil, nil, nil
	})
}

// failOperation maps the failure, records it and returns it.
func (m *Manager) failOperation(err error) error {
	mapped := authstate.MapError(err)
	m.transition(func(st *authstate.State) {
		st.Status = authstate.StatusError
		st.User, st.Session = nil, nil
		st.Err = mapped
	})
	return mapped
}

// settleUnauthenticated records a clean signed-out resting state.
func (m *Manager) settleUnauthenticated() {
	m.transition(func(st *authstate.State) {
		st.Status = authstate.StatusUnauthenticated
		st.User, st.Session, st.Err = nil, nil, nil
	})
}
