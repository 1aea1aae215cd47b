package paddb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padware/dsulink/internal/pad"
)

func openTestDB(t *testing.T) *PadDB {
	t.Helper()
	db, err := NewPadDB(filepath.Join(t.TempDir(), "pad.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)

	sessionID, err := db.StartSession("127.0.0.1:26760", "bench run")
	require.NoError(t, err)
	require.NotZero(t, sessionID)

	motion := pad.MotionState{
		Accel: pad.Vec3{X: -0.1, Y: 1.0, Z: -0.2},
		Gyro:  pad.Vec3{X: -3, Y: -4, Z: 5},
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, db.RecordSample(sessionID, motion, pad.TouchState{X: 0.5, Y: 0.25, Active: true}))
	}
	require.NoError(t, db.RecordSample(sessionID, motion, pad.TouchState{}))

	count, err := db.SessionSampleCount(sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	require.NoError(t, db.EndSession(sessionID))

	var endTimestamp float64
	var sampleCount int64
	err = db.QueryRow(
		`SELECT end_timestamp, sample_count FROM pad_sessions WHERE id = ?`, sessionID,
	).Scan(&endTimestamp, &sampleCount)
	require.NoError(t, err)
	assert.Greater(t, endTimestamp, 0.0)
	assert.Equal(t, int64(4), sampleCount)
}

func TestSessionsAreIndependent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.StartSession("127.0.0.1:26760", "")
	require.NoError(t, err)
	second, err := db.StartSession("192.168.1.10:26760", "")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, db.RecordSample(first, pad.MotionState{}, pad.TouchState{}))

	count, err := db.SessionSampleCount(second)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTouchActiveStoredAsInteger(t *testing.T) {
	db := openTestDB(t)

	sessionID, err := db.StartSession("127.0.0.1:26760", "")
	require.NoError(t, err)
	require.NoError(t, db.RecordSample(sessionID, pad.MotionState{}, pad.TouchState{Active: true}))

	var active int
	err = db.QueryRow(
		`SELECT touch_active FROM pad_samples WHERE session_id = ?`, sessionID,
	).Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}
