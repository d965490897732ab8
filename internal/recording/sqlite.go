package recording

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteTable persists frames to a sqlite database. Each Clear begins a new
// take, so past recordings survive in the takes table until deleted.
type SQLiteTable struct {
	db     *sql.DB
	takeID string
}

// OpenSQLiteTable opens (or creates) the database at path and starts a
// fresh take.
func OpenSQLiteTable(path string) (*SQLiteTable, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS takes (
			take_id           TEXT PRIMARY KEY,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS frames (
			take_id           TEXT,
			frame             BIGINT,
			tx                DOUBLE,
			ty                DOUBLE,
			tz                DOUBLE,
			rx                DOUBLE,
			ry                DOUBLE,
			rz                DOUBLE,
			fl                DOUBLE,
			recorded_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(take_id) REFERENCES takes(take_id)
		);
		CREATE INDEX IF NOT EXISTS idx_frames_take ON frames(take_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create recording schema: %w", err)
	}

	t := &SQLiteTable{db: db}
	if err := t.newTake(); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *SQLiteTable) newTake() error {
	id := uuid.NewString()
	if _, err := t.db.Exec(`INSERT INTO takes (take_id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("failed to create take: %w", err)
	}
	t.takeID = id
	return nil
}

// TakeID returns the identifier of the current take.
func (t *SQLiteTable) TakeID() string {
	return t.takeID
}

// Append inserts a frame into the current take.
func (t *SQLiteTable) Append(f Frame) error {
	_, err := t.db.Exec(
		`INSERT INTO frames (take_id, frame, tx, ty, tz, rx, ry, rz, fl)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.takeID, f.Index, f.Tx, f.Ty, f.Tz, f.Rx, f.Ry, f.Rz, f.Fl,
	)
	if err != nil {
		return fmt.Errorf("failed to insert frame: %w", err)
	}
	return nil
}

// Clear removes the current take's frames and starts a new take.
func (t *SQLiteTable) Clear() error {
	if _, err := t.db.Exec(`DELETE FROM frames WHERE take_id = ?`, t.takeID); err != nil {
		return fmt.Errorf("failed to clear frames: %w", err)
	}
	return t.newTake()
}

// Frames returns the current take's frames in append order.
func (t *SQLiteTable) Frames() ([]Frame, error) {
	rows, err := t.db.Query(
		`SELECT frame, tx, ty, tz, rx, ry, rz, fl FROM frames
		 WHERE take_id = ? ORDER BY rowid`,
		t.takeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.Index, &f.Tx, &f.Ty, &f.Tz, &f.Rx, &f.Ry, &f.Rz, &f.Fl); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// Count returns the number of frames in the current take.
func (t *SQLiteTable) Count() (int, error) {
	var n int
	err := t.db.QueryRow(`SELECT COUNT(*) FROM frames WHERE take_id = ?`, t.takeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}
