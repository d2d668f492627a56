// Package keepalive implements the dual-timer liveness scheme of a
// wstream connection.
//
// Two timers run from the same flush instant: the expired timer fires
// after the configured interval and prompts the owner to send a ping; the
// timeout timer fires after three times that interval and declares the
// connection dead. A peer that answers any ping within two intervals
// therefore never trips the timeout.
//
// Flush cancels and re-arms both timers; call it on inbound activity. The
// expired timer re-arms itself after firing so pings keep their cadence,
// but only Flush resets the timeout timer — a silent peer runs into it
// after exactly three intervals no matter how many pings went out.
//
// Timer callbacks belonging to a cancelled arming are suppressed; when an
// executor is supplied, live callbacks are posted to it so they serialize
// with the owner's other work.
package keepalive

import (
	"errors"
	"sync"
	"time"
)

// DefaultExpired is the default keep-alive interval. The timeout interval
// is always three times the expired interval.
const DefaultExpired = 2 * time.Minute

const timeoutFactor = 3

// ErrTimeout is reported by owners when the timeout timer fires without
// any intervening activity.
var ErrTimeout = errors.New("keepalive: timeout")

// Listener receives timer events.
type Listener interface {
	// OnKeepAliveExpired fires once per expired interval until Stop; Flush
	// restarts the interval. The owner should send a ping.
	OnKeepAliveExpired()

	// OnKeepAliveTimeout fires after three expired intervals. The owner
	// should close the connection and surface ErrTimeout.
	OnKeepAliveTimeout()
}

// Manager owns the expired/timeout timer pair.
type Manager struct {
	exec func(fn func()) // serializing executor, may be nil

	mu       sync.Mutex
	listener Listener
	expired  time.Duration
	timeout  time.Duration
	gen      uint64
	expiredT *time.Timer
	timeoutT *time.Timer
}

// New returns a stopped manager with the default intervals. When exec is
// non-nil, timer callbacks are dispatched through it; otherwise they run
// on the timer goroutine.
func New(exec func(fn func())) *Manager {
	return &Manager{
		exec:    exec,
		expired: DefaultExpired,
		timeout: timeoutFactor * DefaultExpired,
	}
}

// SetListener replaces the timer event listener.
func (m *Manager) SetListener(listener Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

// SetExpired sets the keep-alive interval and recomputes the timeout
// interval as three times it. Takes effect on the next Flush.
func (m *Manager) SetExpired(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired = d
	m.timeout = timeoutFactor * d
}

// Expired returns the configured keep-alive interval.
func (m *Manager) Expired() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}

// Start arms both timers. It is an alias for Flush.
func (m *Manager) Start() { m.Flush() }

// Flush cancels both timers and re-arms them from now. Call on any
// activity that proves the peer alive.
func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelLocked()

	gen := m.gen
	m.expiredT = time.AfterFunc(m.expired, func() { m.fire(gen, false) })
	m.timeoutT = time.AfterFunc(m.timeout, func() { m.fire(gen, true) })
}

// Stop cancels both timers. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

func (m *Manager) cancelLocked() {
	m.gen++
	if m.expiredT != nil {
		m.expiredT.Stop()
		m.expiredT = nil
	}
	if m.timeoutT != nil {
		m.timeoutT.Stop()
		m.timeoutT = nil
	}
}

// fire delivers a timer completion. A generation mismatch marks a
// completion from a cancelled arming and is dropped. A live expired
// completion re-arms its own timer; the timeout timer stays untouched.
func (m *Manager) fire(gen uint64, isTimeout bool) {
	deliver := func() {
		m.mu.Lock()
		listener := m.listener
		stale := gen != m.gen
		if !stale && !isTimeout {
			m.expiredT = time.AfterFunc(m.expired, func() { m.fire(gen, false) })
		}
		m.mu.Unlock()

		if stale || listener == nil {
			return
		}

		if isTimeout {
			listener.OnKeepAliveTimeout()
		} else {
			listener.OnKeepAliveExpired()
		}
	}

	if m.exec != nil {
		m.exec(deliver)
	} else {
		deliver()
	}
}
