package tracksrc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/banshee-data/camera.bridge/internal/monitoring"
	"github.com/banshee-data/camera.bridge/internal/transform"
)

// DefaultPort is the port the tracking client connects to.
const DefaultPort = 23354

// eventQueueSize bounds the pending-event queue. The pump drains it every
// millisecond, so overflow means the bridge loop has stalled; overflowed
// events are dropped and logged.
const eventQueueSize = 256

// wireMessage is one newline-delimited JSON message from the tracking
// client.
type wireMessage struct {
	Type string    `json:"type"`
	M    []float64 `json:"m,omitempty"`
	Fl   float64   `json:"fl,omitempty"`
}

// helloMessage is the static handshake reply sent to a connecting client.
type helloMessage struct {
	Type     string   `json:"type"`
	Platform string   `json:"platform"`
	Version  string   `json:"version"`
	Cameras  []string `json:"cameras"`
	Fps      float64  `json:"fps"`
}

// Server listens for the tracking client and queues its messages as handler
// events. One client is served at a time; a new connection is handled after
// the previous one disconnects.
type Server struct {
	ln      net.Listener
	handler Handler
	events  chan func(Handler)

	mu   sync.Mutex
	conn net.Conn
}

// Listen binds the tracking-source port. A bind failure is returned to the
// caller, which treats it as fatal: the bridge is useless without this port.
func Listen(port int, handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind tracking port %d: %w", port, err)
	}
	return &Server{
		ln:      ln,
		handler: handler,
		events:  make(chan func(Handler), eventQueueSize),
	}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts tracking clients until the context is cancelled. Each
// client's messages are queued for delivery via ExecutePendingEvents.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			monitoring.Logf("tracking accept error: %v", err)
			continue
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.serveClient(conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}
}

func (s *Server) serveClient(conn net.Conn) {
	defer conn.Close()

	addr := conn.RemoteAddr().String()
	s.enqueue(func(h Handler) { h.ClientConnected(addr) })

	// Static handshake stub: camera list and playback rate the client
	// expects before streaming.
	hello, _ := json.Marshal(helloMessage{
		Type:     "hello",
		Platform: "camera.bridge",
		Version:  "1.0.0",
		Cameras:  []string{"VirtualCamera"},
		Fps:      30,
	})
	if _, err := conn.Write(append(hello, '\n')); err != nil {
		monitoring.Logf("handshake write to %s failed: %v", addr, err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<16)
	for scanner.Scan() {
		s.handleLine(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		monitoring.Logf("tracking client %s read error: %v", addr, err)
	}

	s.enqueue(func(h Handler) { h.ClientDisconnected() })
}

// handleLine decodes one wire message. Malformed payloads are logged and
// discarded; prior transform and focal state is untouched.
func (s *Server) handleLine(line []byte) {
	var msg wireMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		monitoring.Logf("discarding malformed tracking payload: %v", err)
		return
	}

	switch msg.Type {
	case "transform":
		if len(msg.M) != 16 {
			monitoring.Logf("discarding transform with %d elements, want 16", len(msg.M))
			return
		}
		var t transform.Transform
		copy(t[:], msg.M)
		s.enqueue(func(h Handler) { h.SetTransform(t) })
	case "focal":
		fl := msg.Fl
		s.enqueue(func(h Handler) { h.SetFocalLength(fl) })
	case "ping":
		// Keepalive, nothing to deliver.
	default:
		monitoring.Logf("discarding unknown tracking message type %q", msg.Type)
	}
}

func (s *Server) enqueue(ev func(Handler)) {
	select {
	case s.events <- ev:
	default:
		monitoring.Logf("event queue full, dropping tracking event")
	}
}

// ExecutePendingEvents delivers all queued events to the handler on the
// caller's goroutine and returns. Called repeatedly by the bridge loop.
func (s *Server) ExecutePendingEvents() {
	for {
		select {
		case ev := <-s.events:
			ev(s.handler)
		default:
			return
		}
	}
}

// Close shuts the listener down.
func (s *Server) Close() error {
	return s.ln.Close()
}
