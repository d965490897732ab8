// Package bridge wires the tracking-source callbacks to the telemetry
// sender and the recording session, and drives the event-pump loop.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/camera.bridge/internal/monitoring"
	"github.com/banshee-data/camera.bridge/internal/recording"
	"github.com/banshee-data/camera.bridge/internal/telemetry"
	"github.com/banshee-data/camera.bridge/internal/timeutil"
	"github.com/banshee-data/camera.bridge/internal/transform"
)

// DefaultFocalLength is the focal length reported before the client sends
// one, in millimeters.
const DefaultFocalLength = 35.0

// pumpInterval is the idle sleep between event-pump iterations.
const pumpInterval = time.Millisecond

// MessageSink is the outbound telemetry surface the bridge writes to.
// *telemetry.Sender satisfies it; tests substitute a capture sink.
type MessageSink interface {
	// MaybeSend transmits subject to the rate gate.
	MaybeSend(m telemetry.Message) telemetry.SendResult

	// Send transmits immediately, bypassing the gate.
	Send(m telemetry.Message) telemetry.SendResult
}

// EventPump executes the tracking source's queued callbacks. Satisfied by
// *tracksrc.Server.
type EventPump interface {
	ExecutePendingEvents()
}

// Bridge translates tracking callbacks into telemetry and recorded frames.
// All collaborators are constructor-injected so multiple independent bridges
// can coexist and tests stay deterministic.
type Bridge struct {
	sink    MessageSink
	session *recording.Session
	tracker *ConnTracker
	clock   timeutil.Clock
	quiet   bool

	// taps receive every successfully transmitted message. Registered
	// before Run starts; not mutated afterwards.
	taps []func(telemetry.Message)

	mu           sync.Mutex
	focal        float64
	current      transform.Transform
	lastPos      transform.Position
	lastRot      transform.Rotation
	frameCounter int64
}

// Config carries the bridge's constructor dependencies.
type Config struct {
	Sink    MessageSink
	Session *recording.Session
	Clock   timeutil.Clock
	Quiet   bool
}

// New creates a Bridge. A nil clock defaults to the real one.
func New(cfg Config) *Bridge {
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	session := cfg.Session
	if session == nil {
		session = recording.NewSession(nil)
	}
	return &Bridge{
		sink:    cfg.Sink,
		session: session,
		tracker: &ConnTracker{},
		clock:   clock,
		quiet:   cfg.Quiet,
		focal:   DefaultFocalLength,
		current: transform.Identity(),
	}
}

// Tap registers fn to receive each transmitted message. Must be called
// before Run.
func (b *Bridge) Tap(fn func(telemetry.Message)) {
	b.taps = append(b.taps, fn)
}

// Tracker exposes the connection state for status reporting.
func (b *Bridge) Tracker() *ConnTracker {
	return b.tracker
}

// Session exposes the recording session.
func (b *Bridge) Session() *recording.Session {
	return b.session
}

// FrameCounter returns the number of transform updates received so far.
func (b *Bridge) FrameCounter() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameCounter
}

// SetTransform handles a transform update: decompose, encode, rate-limited
// send, and append to the recording session when one is active. The frame
// counter increments on every update, sent or dropped, so recorded frame
// indices stay aligned with the update stream.
func (b *Bridge) SetTransform(t transform.Transform) {
	pos, rot := transform.Decompose(t)

	b.mu.Lock()
	b.current = t
	b.lastPos, b.lastRot = pos, rot
	b.frameCounter++
	index := b.frameCounter
	focal := b.focal
	b.mu.Unlock()

	msg := telemetry.Encode(pos, rot, focal, b.tracker.Connected())
	res := b.sink.MaybeSend(msg)
	if res.Err != nil {
		monitoring.Logf("telemetry send failed: %v", res.Err)
	}
	if res.Sent {
		b.deliver(msg)
		if !b.quiet {
			fmt.Printf("\rPos: X=%8.3f Y=%8.3f Z=%8.3f | Rot: X=%7.2f Y=%7.2f Z=%7.2f | FL: %5.1fmm",
				pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z, focal)
		}
	}

	b.session.AppendFrame(index, pos, rot, focal)
}

// SetFocalLength records a focal length update, last value wins.
func (b *Bridge) SetFocalLength(fl float64) {
	b.mu.Lock()
	b.focal = fl
	b.mu.Unlock()
}

// ClientConnected transitions the lifecycle tracker and emits the connected
// event immediately, bypassing the rate gate.
func (b *Bridge) ClientConnected(addr string) {
	msg := b.tracker.Connect(addr)
	monitoring.Logf("tracking client connected from %s", addr)
	b.emitLifecycle(msg)
}

// ClientDisconnected transitions the lifecycle tracker and emits the
// disconnected event immediately.
func (b *Bridge) ClientDisconnected() {
	msg := b.tracker.Disconnect()
	monitoring.Logf("tracking client disconnected")
	b.emitLifecycle(msg)
}

func (b *Bridge) emitLifecycle(msg telemetry.Message) {
	res := b.sink.Send(msg)
	if res.Err != nil {
		monitoring.Logf("lifecycle send failed: %v", res.Err)
	}
	if res.Sent {
		b.deliver(msg)
	}
}

func (b *Bridge) deliver(msg telemetry.Message) {
	for _, tap := range b.taps {
		tap(msg)
	}
}

// CaptureFrame appends the most recent pose to the recording session under
// the next frame index, independent of the update stream. Used for manual
// out-of-band capture; returns false when the session is idle.
func (b *Bridge) CaptureFrame() bool {
	b.mu.Lock()
	b.frameCounter++
	index := b.frameCounter
	pos, rot, focal := b.lastPos, b.lastRot, b.focal
	b.mu.Unlock()

	return b.session.AppendFrame(index, pos, rot, focal)
}

// Run drives the event pump until ctx is cancelled, yielding briefly
// between iterations. Callbacks run synchronously on this goroutine.
func (b *Bridge) Run(ctx context.Context, pump EventPump) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			pump.ExecutePendingEvents()
			b.clock.Sleep(pumpInterval)
		}
	}
}
