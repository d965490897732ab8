// Package export writes recorded camera takes to CSV files and path plots.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/banshee-data/camera.bridge/internal/fsutil"
	"github.com/banshee-data/camera.bridge/internal/monitoring"
	"github.com/banshee-data/camera.bridge/internal/recording"
)

// Header is the column layout of an exported recording.
const Header = "frame,tx,ty,tz,rx,ry,rz,fl"

// WriteCSV writes the header line and one row per frame to w. Numeric
// fields use default shortest-form formatting, so whole values stay
// unpadded (1, not 1.0000).
func WriteCSV(w io.Writer, frames []recording.Frame) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return err
	}
	for _, f := range frames {
		row := strconv.FormatInt(f.Index, 10)
		for _, v := range []float64{f.Tx, f.Ty, f.Tz, f.Rx, f.Ry, f.Rz, f.Fl} {
			row += "," + strconv.FormatFloat(v, 'g', -1, 64)
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Export writes frames to a timestamped CSV file under dir and returns the
// full path. Refuses to write an empty recording.
func Export(fs fsutil.FileSystem, dir string, now time.Time, frames []recording.Frame) (string, error) {
	if len(frames) == 0 {
		return "", fmt.Errorf("no recording data to export")
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("recording_%s.csv", now.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, frames); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	monitoring.Logf("exported %d frames to %s", len(frames), path)
	return path, nil
}

// DefaultDir picks the export destination: the project directory when it
// exists, otherwise the user's Documents folder.
func DefaultDir(fs fsutil.FileSystem, projectDir string) string {
	if projectDir != "" && fs.Exists(projectDir) {
		return projectDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Documents")
}
