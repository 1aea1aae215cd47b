// Package pad holds the device-side view of a motion/touch pad: the state
// published by the UDP client and read by a polling consumer.
package pad

import "sync"

// Vec3 is a three-axis sample in the device's own coordinate convention.
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

// MotionState is one accelerometer/gyroscope sample pair.
type MotionState struct {
	Accel Vec3
	Gyro  Vec3
}

// TouchState is one touch sample. X and Y are normalized to [0,1] when a
// calibration was applied and are zero otherwise.
type TouchState struct {
	X      float32
	Y      float32
	Active bool
}

// TouchCalibration maps raw panel coordinates onto the unit square. The
// bounds come from the device's panel geometry and are fixed for the life of
// a client.
type TouchCalibration struct {
	MinX uint16
	MaxX uint16
	MinY uint16
	MaxY uint16
}

// Normalize clamps a raw touch coordinate pair into the calibrated bounds and
// maps it linearly onto [0,1] per axis. Degenerate bounds yield zero for the
// affected axis.
func (c TouchCalibration) Normalize(x, y uint16) (float32, float32) {
	return normalizeAxis(x, c.MinX, c.MaxX), normalizeAxis(y, c.MinY, c.MaxY)
}

func normalizeAxis(v, lo, hi uint16) float32 {
	if hi <= lo {
		return 0
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return float32(v-lo) / float32(hi-lo)
}

// DeviceStatus is the cell shared between the client goroutine and the
// polling consumer. The client is the sole writer. Both fields are replaced
// together under one mutex so a reader always sees motion and touch from the
// same source packet.
type DeviceStatus struct {
	mu     sync.Mutex
	motion MotionState
	touch  TouchState
}

// Update replaces the whole snapshot atomically.
func (s *DeviceStatus) Update(motion MotionState, touch TouchState) {
	s.mu.Lock()
	s.motion = motion
	s.touch = touch
	s.mu.Unlock()
}

// Snapshot returns the current motion and touch state as one consistent pair.
func (s *DeviceStatus) Snapshot() (MotionState, TouchState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.motion, s.touch
}
