package client

import (
	"sync"
	"time"
)

// PacketStats tracks receive-path counters with thread-safe operations. The
// engine counts received and malformed packets; the facade counts stale
// PadData drops. Dropped packets stay dropped regardless of the counters:
// these exist only for observability into peer misbehavior.
type PacketStats struct {
	mu        sync.Mutex
	packets   int64
	bytes     int64
	malformed int64
	stale     int64
	lastReset time.Time
}

// NewPacketStats creates a PacketStats instance.
func NewPacketStats() *PacketStats {
	return &PacketStats{lastReset: time.Now()}
}

// AddPacket counts one received datagram of the given size.
func (ps *PacketStats) AddPacket(bytes int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.packets++
	ps.bytes += int64(bytes)
}

// AddMalformed counts one datagram discarded by header validation or decode.
func (ps *PacketStats) AddMalformed() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.malformed++
}

// AddStale counts one PadData packet dropped by the sequence filter.
func (ps *PacketStats) AddStale() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.stale++
}

// GetAndReset returns the current counters and the time they cover, then
// clears them.
func (ps *PacketStats) GetAndReset() (packets, bytes, malformed, stale int64, duration time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := time.Now()
	duration = now.Sub(ps.lastReset)
	packets = ps.packets
	bytes = ps.bytes
	malformed = ps.malformed
	stale = ps.stale

	ps.packets = 0
	ps.bytes = 0
	ps.malformed = 0
	ps.stale = 0
	ps.lastReset = now

	return
}

// LogStats logs a one-line summary of the interval since the last reset and
// clears the counters. Intervals with no traffic at all are not logged.
func (ps *PacketStats) LogStats() {
	packets, bytes, malformed, stale, duration := ps.GetAndReset()
	if packets == 0 && malformed == 0 && stale == 0 {
		return
	}
	packetsPerSec := float64(packets) / duration.Seconds()
	kbPerSec := float64(bytes) / duration.Seconds() / 1024
	Logf("dsu stats (/sec): %.1f packets, %.2f KB; %d malformed, %d stale in interval",
		packetsPerSec, kbPerSec, malformed, stale)
}
