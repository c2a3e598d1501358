package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func memoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAssignsIDAndTime(t *testing.T) {
	s := memoryStore(t)
	at := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return at }

	rec, err := NewProjectFinished("run-1", "lattices", "generated", "", nil, time.Second)
	require.NoError(t, err)
	require.NoError(t, s.Append(t.Context(), &rec))
	require.NotZero(t, rec.ID)
	require.Equal(t, at, rec.At)

	got, err := s.Run(t.Context(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rec, got[0])
	require.Equal(t, "lattices", got[0].Project)
	require.JSONEq(t, `{"project":"lattices","outcome":"generated","duration_ms":1000}`, string(got[0].Payload))
}

func TestRunFiltersAndKeepsOrder(t *testing.T) {
	s := memoryStore(t)
	for _, r := range []Record{
		{RunID: "run-1", Type: "a", Payload: []byte("{}")},
		{RunID: "run-2", Type: "b", Payload: []byte("{}")},
		{RunID: "run-1", Type: "c", Payload: []byte("{}")},
	} {
		require.NoError(t, s.Append(t.Context(), &r))
	}

	got, err := s.Run(t.Context(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Type)
	require.Equal(t, "c", got[1].Type)

	none, err := s.Run(t.Context(), "missing")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSince(t *testing.T) {
	s := memoryStore(t)
	base := time.UnixMilli(1_700_000_000_000)
	for i := range 3 {
		r := Record{RunID: "run", Type: "tick", At: base.Add(time.Duration(i) * time.Minute), Payload: []byte("{}")}
		require.NoError(t, s.Append(t.Context(), &r))
	}

	got, err := s.Since(t.Context(), base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)

	all, err := s.Since(t.Context(), time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestNewSQLiteStoreCreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/history.db"
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.FileExists(t, path)
}
