package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/camera.bridge/internal/fsutil"
	"github.com/banshee-data/camera.bridge/internal/recording"
)

var sampleFrames = []recording.Frame{
	{Index: 10, Tx: 1, Ty: 2, Tz: 3, Fl: 35},
	{Index: 11, Tx: 1, Ty: 2, Tz: 4, Fl: 35},
}

func TestWriteCSV_LiteralRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleFrames); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "frame,tx,ty,tz,rx,ry,rz,fl\n" +
		"10,1,2,3,0,0,0,35\n" +
		"11,1,2,4,0,0,0,35\n"
	if got := buf.String(); got != want {
		t.Errorf("CSV mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteCSV_FractionalValues(t *testing.T) {
	var buf bytes.Buffer
	frames := []recording.Frame{
		{Index: 1, Tx: 0.5, Ty: -2.25, Tz: 0, Rx: -90.5, Fl: 35.5},
	}
	if err := WriteCSV(&buf, frames); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "1,0.5,-2.25,0,-90.5,0,0,35.5" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExport_TimestampedFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	now := time.Date(2026, 8, 30, 14, 45, 9, 0, time.UTC)

	path, err := Export(fs, "/project/exports", now, sampleFrames)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Base(path) != "recording_20260830_144509.csv" {
		t.Errorf("export file name = %q", filepath.Base(path))
	}

	content, err := fs.Content(path)
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("exported %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != Header {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "10,1,2,3,0,0,0,35" || lines[2] != "11,1,2,4,0,0,0,35" {
		t.Errorf("rows = %q", lines[1:])
	}
}

func TestExport_EmptyRecordingRefused(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	if _, err := Export(fs, "/exports", time.Now(), nil); err == nil {
		t.Error("expected error exporting empty recording")
	}
	if files := fs.Files(); len(files) != 0 {
		t.Errorf("empty export still wrote files: %v", files)
	}
}

func TestDefaultDir_ProjectThenDocumentsFallback(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	project := "/work/shoot-01"
	fs.MkdirAll(project, 0o755)

	if got := DefaultDir(fs, project); got != project {
		t.Errorf("DefaultDir = %q, want project dir", got)
	}

	got := DefaultDir(fs, "/does/not/exist")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got != filepath.Join(home, "Documents") {
		t.Errorf("DefaultDir fallback = %q", got)
	}

	if got := DefaultDir(fs, ""); got != filepath.Join(home, "Documents") {
		t.Errorf("DefaultDir empty project = %q", got)
	}
}

func TestWritePathPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "path.png")
	if err := WritePathPlot(path, sampleFrames); err != nil {
		t.Fatalf("WritePathPlot failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}

	if err := WritePathPlot(filepath.Join(t.TempDir(), "empty.png"), nil); err == nil {
		t.Error("expected error plotting empty recording")
	}
}
