package hub

import "time"

// Viewer is one live-update connection held by the Hub.
type Viewer interface {
	// ID is unique per connection.
	ID() string

	// Send queues a frame without blocking. It reports false when the viewer
	// is closed or its queue is full; the hub then drops the viewer.
	Send(payload []byte) bool

	// Ping asks the viewer to prove it is still there.
	Ping() bool

	// LastSeen is the last time the viewer sent anything.
	LastSeen() time.Time

	// Close terminates the connection. Safe to call more than once.
	Close()
}
