// Package client implements a background cemuhookudp client. It keeps a
// subscription to one pad on a remote motion server alive, decodes the
// resulting telemetry stream and publishes the latest accepted sample to a
// shared pad.DeviceStatus for an input-polling consumer on another
// goroutine.
package client

import (
	"context"
	"errors"

	"github.com/padware/dsulink/internal/dsu"
	"github.com/padware/dsulink/internal/pad"
)

// Config contains the construction-time parameters for a Client. Status must
// be non-nil and must outlive the client; the client is its sole writer.
type Config struct {
	Host     string
	Port     int
	ClientID uint32

	Status *pad.DeviceStatus

	// Calibration is optional. Without it, touch coordinates are published
	// as zero and only the active flag is meaningful.
	Calibration *pad.TouchCalibration
}

// Client owns the engine goroutine and turns decoded responses into
// DeviceStatus updates: it drops stale PadData by packet counter, remaps the
// motion axes into the device convention and normalizes touch coordinates.
type Client struct {
	status      *pad.DeviceStatus
	calibration *pad.TouchCalibration
	stats       *PacketStats

	engine *Engine
	cancel context.CancelFunc
	done   chan struct{}

	// Highest accepted PadData counter. Only touched from the engine
	// goroutine.
	packetSequence uint32
}

// New starts a client talking to the server at config.Host:config.Port on a
// dedicated goroutine. The first heartbeat goes out three seconds after
// construction; the server is expected to start streaming PadData once the
// subscription arrives.
func New(config Config) (*Client, error) {
	if config.Status == nil {
		return nil, errors.New("client requires a device status handle")
	}

	c := &Client{
		status:      config.Status,
		calibration: config.Calibration,
		stats:       NewPacketStats(),
		done:        make(chan struct{}),
	}

	engine, err := NewEngine(EngineConfig{
		Host:     config.Host,
		Port:     config.Port,
		ClientID: config.ClientID,
		Handler:  c,
		Stats:    c.stats,
	})
	if err != nil {
		return nil, err
	}
	c.engine = engine

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	Logf("starting communication with UDP input server on %s:%d", config.Host, config.Port)
	go func() {
		defer close(c.done)
		if err := engine.Run(ctx); err != nil {
			Logf("dsu engine stopped: %v", err)
		}
	}()

	return c, nil
}

// Close stops the engine and waits for its goroutine to exit. After Close
// returns no further DeviceStatus writes occur. Safe to call once.
func (c *Client) Close() error {
	c.cancel()
	<-c.done
	return nil
}

// HandleVersion is diagnostic only.
func (c *Client) HandleVersion(data dsu.VersionResponse) {
	Logf("version packet received: %d", data.Version)
}

// HandlePortInfo is diagnostic only.
func (c *Client) HandlePortInfo(data dsu.PortInfoResponse) {
	Logf("port info packet received: slot %d model %d", data.Slot, data.Model)
}

// HandlePadData filters, transforms and publishes one input sample.
func (c *Client) HandlePadData(data dsu.PadDataResponse) {
	if data.PacketCounter <= c.packetSequence {
		c.stats.AddStale()
		Logf("pad data packet dropped as stale: current count %d, packet count %d",
			c.packetSequence, data.PacketCounter)
		return
	}
	c.packetSequence = data.PacketCounter

	// The reference device's native motion convention is mirrored relative
	// to the cemuhookudp convention: accel x/z and gyro pitch/yaw invert.
	motion := pad.MotionState{
		Accel: pad.Vec3{X: -data.AccelX, Y: data.AccelY, Z: -data.AccelZ},
		Gyro:  pad.Vec3{X: -data.GyroPitch, Y: -data.GyroYaw, Z: data.GyroRoll},
	}

	touch := pad.TouchState{Active: data.Touch1.Active != 0}
	if touch.Active && c.calibration != nil {
		touch.X, touch.Y = c.calibration.Normalize(data.Touch1.X, data.Touch1.Y)
	}

	c.status.Update(motion, touch)
}

// Stats exposes the client's packet counters, mainly for periodic reporting
// by the owner.
func (c *Client) Stats() *PacketStats {
	return c.stats
}
