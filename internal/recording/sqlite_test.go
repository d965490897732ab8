package recording

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/camera.bridge/internal/transform"
)

func openTestTable(t *testing.T) *SQLiteTable {
	t.Helper()
	table, err := OpenSQLiteTable(filepath.Join(t.TempDir(), "recording.db"))
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })
	return table
}

func TestSQLiteTable_AppendAndFrames(t *testing.T) {
	table := openTestTable(t)

	frames := []Frame{
		{Index: 10, Tx: 1, Ty: 2, Tz: 3, Fl: 35},
		{Index: 11, Tx: 1, Ty: 2, Tz: 4, Rx: -90.5, Fl: 35},
	}
	for _, f := range frames {
		require.NoError(t, table.Append(f))
	}

	got, err := table.Frames()
	require.NoError(t, err)
	require.Equal(t, frames, got)

	n, err := table.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestSQLiteTable_ClearStartsNewTake(t *testing.T) {
	table := openTestTable(t)

	require.NoError(t, table.Append(Frame{Index: 1}))
	firstTake := table.TakeID()
	require.NotEmpty(t, firstTake)

	require.NoError(t, table.Clear())

	require.NotEqual(t, firstTake, table.TakeID())
	n, err := table.Count()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestSQLiteTable_SessionIntegration(t *testing.T) {
	table := openTestTable(t)
	s := NewSession(table)

	require.NoError(t, s.Start())
	require.True(t, s.AppendFrame(10, transform.Position{X: 1, Y: 2, Z: 3}, transform.Rotation{}, 35))
	require.True(t, s.AppendFrame(11, transform.Position{X: 1, Y: 2, Z: 4}, transform.Rotation{}, 35))

	n, err := s.Stop()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	frames, err := s.Frames()
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, int64(10), frames[0].Index)
	require.Equal(t, 4.0, frames[1].Tz)
}
