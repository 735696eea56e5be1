package activitylog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relist/internal/database"
	"relist/internal/logger"
	"relist/internal/models"
)

func newTestLogger(t *testing.T) (*Logger, *database.Database) {
	t.Helper()
	db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db.DB, logger.New("error")), db
}

func TestAppendAndRecent(t *testing.T) {
	l, _ := newTestLogger(t)

	l.Append("m1", models.LogLevelInfo, "TEST", "first", nil)
	l.Append("m1", models.LogLevelSuccess, "TEST", "second", map[string]interface{}{"count": 3})
	l.Append("m2", models.LogLevelError, "TEST", "other merchant", nil)

	entries, err := l.Recent("m1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2, "entries are scoped per merchant")

	assert.Equal(t, models.LogLevelSuccess, entries[0].Level, "newest first")
	assert.Equal(t, "second", entries[0].Message)
	assert.Equal(t, float64(3), entries[0].Details["count"])
	assert.Equal(t, "first", entries[1].Message)
}

func TestRecent_LimitClamp(t *testing.T) {
	l, _ := newTestLogger(t)

	for i := 0; i < 5; i++ {
		l.Append("m1", models.LogLevelInfo, "TEST", "entry", nil)
	}

	entries, err := l.Recent("m1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = l.Recent("m1", -1)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestClear(t *testing.T) {
	l, _ := newTestLogger(t)

	l.Append("m1", models.LogLevelInfo, "TEST", "keep me not", nil)
	l.Append("m2", models.LogLevelInfo, "TEST", "keep me", nil)

	require.NoError(t, l.Clear("m1"))

	entries, err := l.Recent("m1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = l.Recent("m2", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "clear is scoped to one merchant")
}

func TestAppend_SwallowsStorageFailure(t *testing.T) {
	db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	l := New(db.DB, logger.New("error"))

	// Simulate a dead database: appends must not panic or error.
	require.NoError(t, db.Close())

	assert.NotPanics(t, func() {
		l.Append("m1", models.LogLevelInfo, "TEST", "after close", nil)
	})
}
