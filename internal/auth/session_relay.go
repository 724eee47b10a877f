package auth

import (
	"sync"
	"time"
)

// DefaultRelayTTL bounds how long an unclaimed relay entry survives. The
// cookie middleware drains entries as soon as the handler chain returns, so
// anything older belongs to a request whose outer handler never completed.
const DefaultRelayTTL = 5 * time.Second

// PendingSession is the value handed from an auth mutation handler to the
// cookie-writing middleware. Clear marks a logout (delete the cookie) while
// Token carries a freshly minted session token.
type PendingSession struct {
	Token string
	Clear bool

	storedAt time.Time
}

// SessionRelay hands freshly issued session tokens from mutation handlers to
// the single response layer allowed to touch the session cookie. Entries are
// keyed strictly by request id so concurrent requests never observe each
// other's sessions. The relay is an injected component owned by the router,
// not a package-level singleton.
type SessionRelay struct {
	mu      sync.Mutex
	entries map[string]PendingSession
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// RelayOption customises a SessionRelay.
type RelayOption func(*SessionRelay)

// WithRelayTTL overrides how long unclaimed entries are retained.
func WithRelayTTL(d time.Duration) RelayOption {
	return func(r *SessionRelay) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithRelayClock injects a custom time source.
func WithRelayClock(clock func() time.Time) RelayOption {
	return func(r *SessionRelay) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewSessionRelay constructs a relay and starts its eviction janitor.
func NewSessionRelay(opts ...RelayOption) *SessionRelay {
	relay := &SessionRelay{
		entries: make(map[string]PendingSession),
		ttl:     DefaultRelayTTL,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(relay)
	}

	go relay.janitor()

	return relay
}

// Put records a freshly issued token for the given request id, overwriting
// any prior entry for that id.
func (r *SessionRelay) Put(requestID, token string) {
	if requestID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	r.entries[requestID] = PendingSession{Token: token, storedAt: r.now()}
}

// PutClear records a cookie-clearing instruction (logout) for the request id.
func (r *SessionRelay) PutClear(requestID string) {
	if requestID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	r.entries[requestID] = PendingSession{Clear: true, storedAt: r.now()}
}

// TakeAndClear returns the pending session for the request id exactly once,
// removing the entry. A second call for the same id reports ok=false.
func (r *SessionRelay) TakeAndClear(requestID string) (PendingSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[requestID]
	if !ok {
		return PendingSession{}, false
	}

	delete(r.entries, requestID)
	return entry, true
}

// Len reports the number of unclaimed entries.
func (r *SessionRelay) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the eviction janitor.
func (r *SessionRelay) Close() {
	r.once.Do(func() {
		close(r.stop)
	})
}

// Sweep removes entries older than the configured TTL and reports how many
// were evicted. A request abandoned between handler and middleware (client
// disconnect, panic upstream) must not leak its entry forever.
func (r *SessionRelay) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *SessionRelay) sweepLocked() int {
	cutoff := r.now().Add(-r.ttl)
	evicted := 0
	for id, entry := range r.entries {
		if entry.storedAt.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

func (r *SessionRelay) janitor() {
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stop:
			return
		}
	}
}
