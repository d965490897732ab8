package telemetry

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/camera.bridge/internal/timeutil"
)

// DefaultMinInterval is the minimum gap between pose datagrams, a ~60 Hz
// ceiling protecting the downstream consumer from flooding.
const DefaultMinInterval = 16 * time.Millisecond

// SendResult reports the outcome of one transmission attempt. A rate-limited
// drop has Sent=false and Err=nil; a socket failure has Err set. The caller
// decides whether to log — the sender never swallows errors itself.
type SendResult struct {
	Sent bool
	Err  error
}

// DatagramConn is the minimal connection surface the sender needs. A
// net.Conn from net.Dial("udp", ...) satisfies it; tests substitute a mock.
type DatagramConn interface {
	Write(p []byte) (int, error)
	Close() error
}

// Sender owns the outbound datagram socket and enforces the minimum send
// interval. Pose messages go through MaybeSend and may be dropped
// (latest-value-wins, no queueing); lifecycle messages go through Send and
// bypass the gate entirely.
type Sender struct {
	conn        DatagramConn
	clock       timeutil.Clock
	minInterval time.Duration
	lastSend    time.Time
	closed      bool
}

// NewSender opens a fire-and-forget UDP connection to target (host:port).
func NewSender(target string, clock timeutil.Clock) (*Sender, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial telemetry target %s: %w", target, err)
	}
	return NewSenderWithConn(conn, clock), nil
}

// NewSenderWithConn builds a Sender over an existing connection.
func NewSenderWithConn(conn DatagramConn, clock timeutil.Clock) *Sender {
	return &Sender{
		conn:        conn,
		clock:       clock,
		minInterval: DefaultMinInterval,
	}
}

// SetMinInterval overrides the rate gate. A zero interval disables limiting.
func (s *Sender) SetMinInterval(d time.Duration) {
	s.minInterval = d
}

// MaybeSend transmits m unless the rate gate is still closed. Dropped
// updates are discarded silently; the next update supersedes them.
func (s *Sender) MaybeSend(m Message) SendResult {
	now := s.clock.Now()
	if !s.lastSend.IsZero() && now.Sub(s.lastSend) < s.minInterval {
		return SendResult{}
	}
	res := s.transmit(m)
	if res.Err == nil {
		s.lastSend = now
	}
	return res
}

// Send transmits m immediately, bypassing the rate gate. Used for
// connection lifecycle events, which must go out exactly once per
// transition.
func (s *Sender) Send(m Message) SendResult {
	return s.transmit(m)
}

func (s *Sender) transmit(m Message) SendResult {
	if s.closed {
		return SendResult{Err: fmt.Errorf("sender is closed")}
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return SendResult{Err: fmt.Errorf("failed to marshal telemetry: %w", err)}
	}
	if _, err := s.conn.Write(payload); err != nil {
		return SendResult{Err: fmt.Errorf("udp send failed: %w", err)}
	}
	return SendResult{Sent: true}
}

// Close releases the socket. Safe to call more than once.
func (s *Sender) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
