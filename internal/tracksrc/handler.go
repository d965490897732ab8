// Package tracksrc accepts connections from the mobile camera-tracking
// client and turns its messages into callbacks for the bridge. Events are
// queued as they arrive and delivered synchronously from
// ExecutePendingEvents, so all handler state stays on the bridge's event
// loop (pull mode).
package tracksrc

import "github.com/banshee-data/camera.bridge/internal/transform"

// Handler receives the tracking-source callbacks the bridge consumes. The
// original SDK surface has many more override points (playback, keyframes,
// viewport capture); only the ones with bridge-side behavior appear here.
type Handler interface {
	// SetTransform delivers a fresh camera transform.
	SetTransform(t transform.Transform)

	// SetFocalLength delivers a focal length update in millimeters.
	SetFocalLength(fl float64)

	// ClientConnected signals that a tracking client attached.
	ClientConnected(addr string)

	// ClientDisconnected signals that the tracking client detached.
	ClientDisconnected()
}
