package transport

import "sync"

// Event identifies a session lifecycle change pushed by the client.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventUserUpdated    Event = "USER_UPDATED"
)

// ListenerFunc receives session lifecycle events. The session argument is nil
// for EventSignedOut.
type ListenerFunc func(event Event, session *RawSession)

// Subscription is a handle to a registered listener. Unsubscribe releases it
// deterministically; no callback fires after Unsubscribe returns.
type Subscription struct {
	id  uint64
	set *listenerSet
}

// Unsubscribe removes the listener. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.set == nil {
		return
	}
	s.set.remove(s.id)
}

// listenerSet fans session events out to registered listeners. Emission is
// serialized so listeners observe events in the order they were emitted, and
// remove() blocks until any in-flight delivery completes.
type listenerSet struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]ListenerFunc

	emitMu sync.Mutex
}

func newListenerSet() *listenerSet {
	return &listenerSet{fns: make(map[uint64]ListenerFunc)}
}

func (l *listenerSet) add(fn ListenerFunc) *Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	return &Subscription{id: id, set: l}
}

func (l *listenerSet) remove(id uint64) {
	// Taking emitMu first guarantees no callback is mid-flight when the
	// listener is dropped.
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fns, id)
}

func (l *listenerSet) emit(event Event, session *RawSession) {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	ids := make([]uint64, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	// Deliver in registration order.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	fns := make([]ListenerFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}
