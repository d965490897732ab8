// Package recording captures timestamped camera pose frames into an ordered
// table for later CSV export.
package recording

import "sync"

// Frame is one captured camera pose. Index is the externally supplied frame
// counter; it is trusted as-is and not checked for monotonicity.
type Frame struct {
	Index      int64
	Tx, Ty, Tz float64
	Rx, Ry, Rz float64
	Fl         float64
}

// Table is the ordered frame store behind a recording session. MemoryTable
// keeps frames in process; SQLiteTable persists them per take.
type Table interface {
	// Append adds a frame at the end of the table.
	Append(f Frame) error

	// Clear removes all frames.
	Clear() error

	// Frames returns all frames in append order.
	Frames() ([]Frame, error)

	// Count returns the number of frames held.
	Count() (int, error)
}

// MemoryTable is an in-process Table backed by a slice.
type MemoryTable struct {
	mu     sync.Mutex
	frames []Frame
}

// NewMemoryTable creates an empty MemoryTable.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{}
}

// Append adds a frame.
func (t *MemoryTable) Append(f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, f)
	return nil
}

// Clear removes all frames.
func (t *MemoryTable) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = t.frames[:0]
	return nil
}

// Frames returns a copy of the held frames in append order.
func (t *MemoryTable) Frames() ([]Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Frame, len(t.frames))
	copy(out, t.frames)
	return out, nil
}

// Count returns the number of frames held.
func (t *MemoryTable) Count() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames), nil
}
