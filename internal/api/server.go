// Package api exposes the bridge's control and status surface over HTTP,
// plus a WebSocket feed of live telemetry.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/camera.bridge/internal/bridge"
	"github.com/banshee-data/camera.bridge/internal/export"
	"github.com/banshee-data/camera.bridge/internal/fsutil"
	"github.com/banshee-data/camera.bridge/internal/monitoring"
	"github.com/banshee-data/camera.bridge/internal/recording"
	"github.com/banshee-data/camera.bridge/internal/telemetry"
)

// Server serves the bridge control API.
type Server struct {
	bridge    *bridge.Bridge
	fs        fsutil.FileSystem
	exportDir string
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer creates an API server over the given bridge. Exports land in
// exportDir.
func NewServer(b *bridge.Bridge, fs fsutil.FileSystem, exportDir string) *Server {
	return &Server{
		bridge:    b,
		fs:        fs,
		exportDir: exportDir,
		clients:   make(map[*websocket.Conn]bool),
	}
}

// ServeMux returns the API routes, intended to be mounted under /api/.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/recording/start", s.recordingHandler(s.startRecording))
	mux.HandleFunc("/recording/stop", s.recordingHandler(s.stopRecording))
	mux.HandleFunc("/recording/toggle", s.recordingHandler(s.toggleRecording))
	mux.HandleFunc("/recording/clear", s.recordingHandler(s.clearRecording))
	mux.HandleFunc("/recording/capture", s.recordingHandler(s.captureFrame))
	mux.HandleFunc("/recording/export", s.exportHandler)
	mux.HandleFunc("/live", s.liveHandler)
	return mux
}

// statusResponse is the /status payload.
type statusResponse struct {
	Connected bool   `json:"connected"`
	Client    string `json:"client,omitempty"`
	Recording bool   `json:"recording"`
	Frames    int    `json:"frames"`
	Updates   int64  `json:"updates"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	connected, addr := s.bridge.Tracker().Status()
	resp := statusResponse{
		Connected: connected,
		Client:    addr,
		Recording: s.bridge.Session().Recording(),
		Frames:    s.bridge.Session().Count(),
		Updates:   s.bridge.FrameCounter(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		monitoring.Logf("failed to encode status: %v", err)
	}
}

// recordingHandler wraps a session operation with method checking and
// uniform error reporting.
func (s *Server) recordingHandler(op func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result, err := op()
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, recording.ErrDeviceUnavailable) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), status)
			return
		}
		fmt.Fprintln(w, result)
	}
}

func (s *Server) startRecording() (string, error) {
	if err := s.bridge.Session().Start(); err != nil {
		return "", err
	}
	return "recording started", nil
}

func (s *Server) stopRecording() (string, error) {
	n, err := s.bridge.Session().Stop()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("recording stopped (%d frames)", n), nil
}

func (s *Server) toggleRecording() (string, error) {
	if err := s.bridge.Session().Toggle(); err != nil {
		return "", err
	}
	if s.bridge.Session().Recording() {
		return "recording started", nil
	}
	return fmt.Sprintf("recording stopped (%d frames)", s.bridge.Session().Count()), nil
}

func (s *Server) clearRecording() (string, error) {
	if err := s.bridge.Session().Clear(); err != nil {
		return "", err
	}
	return "recording cleared", nil
}

func (s *Server) captureFrame() (string, error) {
	if !s.bridge.CaptureFrame() {
		return "", fmt.Errorf("not recording")
	}
	return "frame captured", nil
}

// exportResponse is the /recording/export payload.
type exportResponse struct {
	Path   string `json:"path"`
	Frames int    `json:"frames"`
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frames, err := s.bridge.Session().Frames()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read recording: %v", err), http.StatusInternalServerError)
		return
	}

	path, err := export.Export(s.fs, s.exportDir, time.Now(), frames)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The companion path plot is best effort; the CSV is the deliverable.
	if err := export.WritePathPlot(path+".png", frames); err != nil {
		monitoring.Logf("failed to write path plot: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(exportResponse{Path: path, Frames: len(frames)}); err != nil {
		monitoring.Logf("failed to encode export response: %v", err)
	}
}

// liveHandler upgrades to WebSocket and registers the client for telemetry
// broadcast. The connection is dropped on the first failed write.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Drain (and discard) client messages to notice disconnects.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast fans a telemetry message out to all live WebSocket clients.
// Registered as a bridge tap at startup.
func (s *Server) Broadcast(m telemetry.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(m); err != nil {
			monitoring.Logf("dropping live client: %v", err)
			delete(s.clients, conn)
			conn.Close()
		}
	}
}
