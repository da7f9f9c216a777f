package hub_test

import (
	"sync"
	"sync/atomic"
	"time"
)

type MockViewer struct {
	id       string
	received chan []byte
	refuse   atomic.Bool
	pings    atomic.Int32
	closed   atomic.Bool

	mu       sync.Mutex
	lastSeen time.Time
}

func newMockViewer(id string) *MockViewer {
	return &MockViewer{id: id, received: make(chan []byte, 16), lastSeen: time.Now()}
}

func (v *MockViewer) ID() string { return v.id }

func (v *MockViewer) Send(payload []byte) bool {
	if v.refuse.Load() || v.closed.Load() {
		return false
	}
	select {
	case v.received <- payload:
		return true
	default:
		return false
	}
}

func (v *MockViewer) Ping() bool {
	v.pings.Add(1)
	return !v.closed.Load()
}

func (v *MockViewer) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *MockViewer) setLastSeen(t time.Time) {
	v.mu.Lock()
	v.lastSeen = t
	v.mu.Unlock()
}

func (v *MockViewer) Close() { v.closed.Store(true) }
