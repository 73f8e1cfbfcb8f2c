package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/testpulse/testpulse/model"
)

func testEnv() map[string]string {
	return map[string]string{
		model.EnvPlatform: "linux/amd64",
		model.EnvRuntime:  "go1.24.6",
	}
}

func runWith(passed, failed int) model.RunMetrics {
	return model.RunMetrics{
		Timestamp: time.Now(),
		Total:     passed + failed,
		Passed:    passed,
		Failed:    failed,
	}
}

func TestStore_OpenAppendCloseRoundTrip(t *testing.T) {
	store := NewStore(zerolog.Nop(), t.TempDir(), 0)

	sess, err := store.Open(testEnv())
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, model.SessionStatusOpen, sess.Status)
	require.False(t, sess.Closed())

	anomalies := []model.AnomalyRecord{
		{Severity: model.SeverityHigh, Code: "low-pass-rate", Message: "50% below 90%"},
	}
	require.NoError(t, store.Append(sess, runWith(10, 0), nil))
	require.NoError(t, store.Append(sess, runWith(1, 1), anomalies))
	require.NoError(t, store.Append(sess, runWith(7, 3), nil))

	require.NoError(t, store.Close(sess))
	require.True(t, sess.Closed())

	// Reading back yields the same runs in the same order.
	loaded, err := store.Load(sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, model.SessionStatusClosed, loaded.Status)
	require.Len(t, loaded.Runs, 3)
	require.Equal(t, 10, loaded.Runs[0].Passed)
	require.Equal(t, 1, loaded.Runs[1].Passed)
	require.Equal(t, 7, loaded.Runs[2].Passed)
	require.Equal(t, anomalies, loaded.Anomalies)
	require.Equal(t, testEnv(), loaded.Environment)
}

func TestStore_AppendPersistsBeforeReturning(t *testing.T) {
	store := NewStore(zerolog.Nop(), t.TempDir(), 0)

	sess, err := store.Open(testEnv())
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(sess, runWith(i, 0), nil))

		// The on-disk record must already reflect the append.
		loaded, err := store.Load(sess.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Runs, i)
	}
}

func TestStore_DuplicateOpenFails(t *testing.T) {
	store := NewStore(zerolog.Nop(), t.TempDir(), 0)

	_, err := store.Open(testEnv())
	require.NoError(t, err)

	_, err = store.Open(testEnv())
	require.ErrorIs(t, err, ErrDuplicateSession)
}

func TestStore_AppendToClosedSessionFails(t *testing.T) {
	store := NewStore(zerolog.Nop(), t.TempDir(), 0)

	sess, err := store.Open(testEnv())
	require.NoError(t, err)
	require.NoError(t, store.Close(sess))

	err = store.Append(sess, runWith(1, 0), nil)
	require.ErrorIs(t, err, ErrClosedSession)
}

func TestStore_DoubleCloseFailsBothTimes(t *testing.T) {
	store := NewStore(zerolog.Nop(), t.TempDir(), 0)

	sess, err := store.Open(testEnv())
	require.NoError(t, err)

	require.NoError(t, store.Close(sess))
	require.ErrorIs(t, store.Close(sess), ErrAlreadyClosed)
	require.ErrorIs(t, store.Close(sess), ErrAlreadyClosed)
}

func TestStore_StaleSessionClosedAsIncomplete(t *testing.T) {
	root := t.TempDir()
	store := NewStore(zerolog.Nop(), root, time.Minute)

	stale, err := store.Open(testEnv())
	require.NoError(t, err)
	stale.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.persist(stale))

	fresh, err := store.Open(testEnv())
	require.NoError(t, err)
	require.NotEqual(t, stale.ID, fresh.ID)

	// The stale session is labeled incomplete, never merged.
	reloaded, err := store.Load(stale.ID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusIncomplete, reloaded.Status)
	require.True(t, reloaded.Closed())

	cur, err := store.Current()
	require.NoError(t, err)
	require.Equal(t, fresh.ID, cur.ID)
}

func TestStore_CurrentWithoutSessions(t *testing.T) {
	store := NewStore(zerolog.Nop(), t.TempDir(), 0)

	cur, err := store.Current()
	require.NoError(t, err)
	require.Nil(t, cur)
}

func TestNewID_TimeBasedAndUnique(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 30, 45, 0, time.UTC)

	a, err := NewID(now)
	require.NoError(t, err)
	b, err := NewID(now)
	require.NoError(t, err)

	require.Contains(t, a, "20260826-123045")
	require.NotEqual(t, a, b)
}
