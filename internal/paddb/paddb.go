// Package paddb persists polled pad telemetry to SQLite so sessions can be
// inspected after the fact. It is consumed by the CLI poller; the client core
// does not depend on it.
package paddb

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/padware/dsulink/internal/pad"
)

// PadDB wraps the telemetry database handle.
type PadDB struct {
	*sql.DB
}

//go:embed schema.sql
var schemaSQL string

// NewPadDB opens (creating if needed) the database at path and applies the
// embedded schema.
func NewPadDB(path string) (*PadDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize pad schema: %w", err)
	}
	return &PadDB{db}, nil
}

// StartSession creates a new recording session and returns its id.
func (pdb *PadDB) StartSession(remoteAddr, notes string) (int64, error) {
	result, err := pdb.Exec(
		`INSERT INTO pad_sessions (remote_address, session_notes) VALUES (?, ?)`,
		remoteAddr, notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start pad session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}
	return sessionID, nil
}

// RecordSample stores one polled snapshot in the given session.
func (pdb *PadDB) RecordSample(sessionID int64, motion pad.MotionState, touch pad.TouchState) error {
	active := 0
	if touch.Active {
		active = 1
	}
	_, err := pdb.Exec(
		`INSERT INTO pad_samples
			(session_id, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z, touch_x, touch_y, touch_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		motion.Accel.X, motion.Accel.Y, motion.Accel.Z,
		motion.Gyro.X, motion.Gyro.Y, motion.Gyro.Z,
		touch.X, touch.Y, active,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pad sample: %w", err)
	}
	return nil
}

// EndSession closes a session, stamping its end time and sample count.
func (pdb *PadDB) EndSession(sessionID int64) error {
	_, err := pdb.Exec(
		`UPDATE pad_sessions
		SET end_timestamp = UNIXEPOCH('subsec'),
		    sample_count = (SELECT COUNT(*) FROM pad_samples WHERE session_id = ?)
		WHERE id = ?`,
		sessionID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to end pad session: %w", err)
	}
	return nil
}

// SessionSampleCount returns the number of samples recorded for a session.
func (pdb *PadDB) SessionSampleCount(sessionID int64) (int64, error) {
	var count int64
	err := pdb.QueryRow(
		`SELECT COUNT(*) FROM pad_samples WHERE session_id = ?`, sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pad samples: %w", err)
	}
	return count, nil
}
