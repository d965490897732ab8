package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/camera.bridge/internal/bridge"
	"github.com/banshee-data/camera.bridge/internal/fsutil"
	"github.com/banshee-data/camera.bridge/internal/recording"
	"github.com/banshee-data/camera.bridge/internal/telemetry"
	"github.com/banshee-data/camera.bridge/internal/transform"
)

// discardSink accepts everything.
type discardSink struct{}

func (discardSink) MaybeSend(telemetry.Message) telemetry.SendResult {
	return telemetry.SendResult{Sent: true}
}

func (discardSink) Send(telemetry.Message) telemetry.SendResult {
	return telemetry.SendResult{Sent: true}
}

func newTestServer(t *testing.T) (*Server, *bridge.Bridge, *fsutil.MemoryFileSystem) {
	t.Helper()
	b := bridge.New(bridge.Config{
		Sink:    discardSink{},
		Session: recording.NewSession(recording.NewMemoryTable()),
		Quiet:   true,
	})
	fs := fsutil.NewMemoryFileSystem()
	return NewServer(b, fs, "/exports"), b, fs
}

func TestStatus(t *testing.T) {
	srv, b, _ := newTestServer(t)
	mux := srv.ServeMux()

	b.ClientConnected("192.0.2.4:9000")
	b.SetTransform(transform.Identity())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.Connected)
	require.Equal(t, "192.0.2.4:9000", status.Client)
	require.False(t, status.Recording)
	require.Equal(t, int64(1), status.Updates)
}

func TestRecordingLifecycleOverHTTP(t *testing.T) {
	srv, b, _ := newTestServer(t)
	mux := srv.ServeMux()

	post := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		return rec
	}

	rec := post("/recording/start")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, b.Session().Recording())

	b.SetTransform(transform.Identity())

	rec = post("/recording/stop")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "1 frames")
	require.False(t, b.Session().Recording())

	rec = post("/recording/toggle")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, b.Session().Recording())
	require.Equal(t, 0, b.Session().Count(), "toggle-start must clear prior frames")
}

func TestRecordingStartUnavailable(t *testing.T) {
	b := bridge.New(bridge.Config{
		Sink:    discardSink{},
		Session: recording.NewSession(nil),
		Quiet:   true,
	})
	srv := NewServer(b, fsutil.NewMemoryFileSystem(), "/exports")

	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recording/start", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodChecks(t *testing.T) {
	srv, _, _ := newTestServer(t)
	mux := srv.ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recording/start", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExportOverHTTP(t *testing.T) {
	srv, b, fs := newTestServer(t)
	mux := srv.ServeMux()

	require.NoError(t, b.Session().Start())
	b.SetTransform(transform.Identity())
	b.SetTransform(transform.Identity())
	b.Session().Stop()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recording/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp exportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Frames)
	require.True(t, strings.HasPrefix(resp.Path, "/exports/"))

	content, err := fs.Content(resp.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
}

func TestExportEmptyRecording(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recording/export", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
