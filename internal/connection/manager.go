// Package connection owns the database connection lifecycle as an explicit
// state machine and publishes lifecycle events to subscribers.
package connection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/metrics"
)

// State of the connection manager.
type State string

// States. Closed is terminal.
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateErrored      State = "errored"
	StateClosed       State = "closed"
)

// EventType classifies lifecycle events.
type EventType string

// Event types. EventClose fires exactly once per established connection.
const (
	EventConnected EventType = "connected"
	EventClose     EventType = "close"
	EventError     EventType = "error"
)

// Event is published to subscribers after a state change.
type Event struct {
	Type   EventType
	Target Target
	Err    error
}

// Target identifies a cluster to connect to.
type Target struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// String renders the target without credentials.
func (t Target) String() string {
	return strings.Join(t.Addrs, ",")
}

// Dialer establishes a connection to target.
type Dialer func(ctx context.Context, target Target) (Handle, error)

// ErrManagerClosed is returned by Connect after Close.
var ErrManagerClosed = errors.New("connection manager is closed")

// Manager serializes connects and disconnects and fans out events.
type Manager struct {
	dial   Dialer
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	handle  Handle
	lastErr error
	subs    map[int]func(Event)
	nextSub int
}

// NewManager creates a disconnected manager.
func NewManager(dial Dialer, logger *zap.Logger) *Manager {
	return &Manager{
		dial:   dial,
		logger: logger,
		state:  StateDisconnected,
		subs:   make(map[int]func(Event)),
	}
}

// Subscribe registers fn for lifecycle events and returns its unsubscribe func.
// Handlers run synchronously on the goroutine that changed the state.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Connect replaces the current connection with one to target.
// An established connection is closed first and emits EventClose.
func (m *Manager) Connect(ctx context.Context, target Target) error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	prev := m.detachLocked()
	m.state = StateConnecting
	m.mu.Unlock()

	if prev != nil {
		m.closeHandle(prev)
	}

	h, err := m.dial(ctx, target)

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		if h != nil {
			h.Close()
		}
		return ErrManagerClosed
	}
	if err != nil {
		m.state = StateErrored
		m.lastErr = err
		m.mu.Unlock()
		m.logger.Warn("connect failed", zap.String("target", target.String()), zap.Error(err))
		m.publish(Event{Type: EventError, Target: target, Err: err})
		return fmt.Errorf("connect to %s: %w", target, err)
	}
	m.state = StateConnected
	m.handle = h
	m.lastErr = nil
	m.mu.Unlock()

	m.logger.Info("connected", zap.String("target", target.String()))
	m.publish(Event{Type: EventConnected, Target: target})
	return nil
}

// Disconnect closes the current connection, if any.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	prev := m.detachLocked()
	if m.state != StateClosed {
		m.state = StateDisconnected
	}
	m.mu.Unlock()

	if prev != nil {
		m.closeHandle(prev)
	}
}

// Close disconnects and moves the manager to the terminal closed state.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	prev := m.detachLocked()
	m.state = StateClosed
	m.mu.Unlock()

	if prev != nil {
		m.closeHandle(prev)
	}
}

// Current returns the established connection.
func (m *Manager) Current() (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return nil, false
	}
	return m.handle, true
}

// Require returns the established connection or domain.ErrNotConnected.
func (m *Manager) Require() (Handle, error) {
	h, ok := m.Current()
	if !ok {
		return nil, domain.ErrNotConnected
	}
	return h, nil
}

// State returns the current state and the last connect error.
func (m *Manager) State() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.lastErr
}

// detachLocked takes ownership of the current handle so that exactly one
// caller closes it and publishes its close event.
func (m *Manager) detachLocked() Handle {
	h := m.handle
	m.handle = nil
	return h
}

func (m *Manager) closeHandle(h Handle) {
	target := h.Target()
	h.Close()
	m.logger.Info("disconnected", zap.String("target", target.String()))
	m.publish(Event{Type: EventClose, Target: target})
}

func (m *Manager) publish(ev Event) {
	metrics.ConnectionEventsTotal.WithLabelValues(string(ev.Type)).Inc()

	m.mu.Lock()
	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
