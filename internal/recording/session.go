package recording

import (
	"errors"
	"fmt"
	"sync"

	"github.com/banshee-data/camera.bridge/internal/monitoring"
	"github.com/banshee-data/camera.bridge/internal/transform"
)

// ErrDeviceUnavailable is returned by Start and Toggle when the frame table
// collaborator is missing or unusable. The session state is left unchanged.
var ErrDeviceUnavailable = errors.New("recording table unavailable")

// Session is the start/stop/toggle recording state machine over a frame
// table. Frames append only while recording; starting a session always
// clears the previous one.
//
// The bridge event loop is the primary writer, but start/stop/export arrive
// from HTTP handler goroutines, so all state is guarded by one mutex.
type Session struct {
	mu        sync.Mutex
	table     Table
	recording bool
}

// NewSession creates an idle session over table. A nil table is allowed;
// Start will then fail with ErrDeviceUnavailable.
func NewSession(table Table) *Session {
	return &Session{table: table}
}

// Start clears any prior frames and begins recording. If the table is
// unavailable the session stays in its prior state and no frames are lost.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return ErrDeviceUnavailable
	}
	if err := s.table.Clear(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s.recording = true
	monitoring.Logf("recording started")
	return nil
}

// Stop ends recording and returns the number of frames captured. Idempotent:
// stopping an idle session is a no-op. Frames are kept for export.
func (s *Session) Stop() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recording = false
	if s.table == nil {
		return 0, nil
	}
	n, err := s.table.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	monitoring.Logf("recording stopped (%d frames)", n)
	return n, nil
}

// Toggle starts recording when idle and stops it when recording.
func (s *Session) Toggle() error {
	if s.Recording() {
		_, err := s.Stop()
		return err
	}
	return s.Start()
}

// AppendFrame captures one pose under the given external frame index.
// Returns false without mutating the table unless the session is recording.
func (s *Session) AppendFrame(index int64, pos transform.Position, rot transform.Rotation, focalLength float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording || s.table == nil {
		return false
	}
	err := s.table.Append(Frame{
		Index: index,
		Tx:    pos.X, Ty: pos.Y, Tz: pos.Z,
		Rx: rot.X, Ry: rot.Y, Rz: rot.Z,
		Fl: focalLength,
	})
	if err != nil {
		monitoring.Logf("failed to append frame %d: %v", index, err)
		return false
	}
	return true
}

// Recording reports whether the session is capturing frames.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Count returns the number of frames currently held.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return 0
	}
	n, err := s.table.Count()
	if err != nil {
		monitoring.Logf("failed to count frames: %v", err)
		return 0
	}
	return n
}

// Frames returns the captured frames in order.
func (s *Session) Frames() ([]Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil, nil
	}
	return s.table.Frames()
}

// Clear removes all frames without changing the recording state. Used by
// export and reset flows.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	return s.table.Clear()
}
