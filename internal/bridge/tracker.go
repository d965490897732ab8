package bridge

import (
	"sync"

	"github.com/banshee-data/camera.bridge/internal/telemetry"
)

// ConnTracker maintains the tracking client's connection state. Transitions
// happen only on explicit connect/disconnect callbacks, never inferred from
// traffic. A repeated connect is treated as a fresh notification and
// re-emits the lifecycle message.
type ConnTracker struct {
	mu        sync.Mutex
	connected bool
	addr      string
}

// Connect records the client at addr and returns the lifecycle message to
// emit.
func (c *ConnTracker) Connect(addr string) telemetry.Message {
	c.mu.Lock()
	c.connected = true
	c.addr = addr
	c.mu.Unlock()
	return telemetry.EncodeEvent(telemetry.EventConnected, true)
}

// Disconnect clears the connection state and returns the lifecycle message
// to emit.
func (c *ConnTracker) Disconnect() telemetry.Message {
	c.mu.Lock()
	c.connected = false
	c.addr = ""
	c.mu.Unlock()
	return telemetry.EncodeEvent(telemetry.EventDisconnected, false)
}

// Status returns the connection flag and the peer address, empty when
// disconnected.
func (c *ConnTracker) Status() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected, c.addr
}

// Connected reports whether a tracking client is attached.
func (c *ConnTracker) Connected() bool {
	connected, _ := c.Status()
	return connected
}
