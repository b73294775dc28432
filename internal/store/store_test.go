package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanj/rewoo/internal/task"
)

func snapshotFor(id string) *Snapshot {
	req := task.NewRequest("test task")
	req.RequestID = id
	result := task.NewResult(id)
	result.Status = task.StatusCompleted
	return &Snapshot{Request: req, Result: result}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()

	got, err := m.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, m.Put("a", snapshotFor("a"), time.Minute))
	got, err = m.Get("a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Request.RequestID)
	assert.Equal(t, task.StatusCompleted, got.Result.Status)

	require.NoError(t, m.Delete("a"))
	got, err = m.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Put("a", snapshotFor("a"), -time.Second))

	got, err := m.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Put("a", snapshotFor("a"), time.Minute))
	got, err = s.Get("a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Request.RequestID)
	assert.Equal(t, "test task", got.Request.Description)

	require.NoError(t, s.Delete("a"))
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	s := newTestSQLiteStore(t)

	first := snapshotFor("a")
	first.Result.Status = task.StatusExecuting
	require.NoError(t, s.Put("a", first, time.Minute))

	second := snapshotFor("a")
	require.NoError(t, s.Put("a", second, time.Minute))

	got, err := s.Get("a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.StatusCompleted, got.Result.Status)
}

func TestSQLiteStoreExpiry(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Put("a", snapshotFor("a"), -time.Second))

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStorePurgeExpired(t *testing.T) {
	s := newTestSQLiteStore(t)

	require.NoError(t, s.Put("live", snapshotFor("live"), time.Hour))
	require.NoError(t, s.Put("dead-1", snapshotFor("dead-1"), -time.Second))
	require.NoError(t, s.Put("dead-2", snapshotFor("dead-2"), -time.Minute))

	n, err := s.PurgeExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := s.Get("live")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
