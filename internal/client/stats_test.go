package client

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacketStatsGetAndReset(t *testing.T) {
	stats := NewPacketStats()
	stats.AddPacket(100)
	stats.AddPacket(28)
	stats.AddMalformed()
	stats.AddStale()
	stats.AddStale()

	packets, bytes, malformed, stale, duration := stats.GetAndReset()
	assert.Equal(t, int64(2), packets)
	assert.Equal(t, int64(128), bytes)
	assert.Equal(t, int64(1), malformed)
	assert.Equal(t, int64(2), stale)
	assert.Greater(t, duration, time.Duration(0))

	packets, bytes, malformed, stale, _ = stats.GetAndReset()
	assert.Zero(t, packets)
	assert.Zero(t, bytes)
	assert.Zero(t, malformed)
	assert.Zero(t, stale)
}

func TestLogStatsSkipsQuietIntervals(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	stats := NewPacketStats()
	stats.LogStats()
	assert.Empty(t, lines, "no traffic should produce no log line")

	stats.AddPacket(100)
	stats.AddStale()
	stats.LogStats()
	if assert.Len(t, lines, 1) {
		assert.True(t, strings.Contains(lines[0], "1 stale"), "got %q", lines[0])
	}
}
