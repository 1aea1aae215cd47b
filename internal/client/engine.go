package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/padware/dsulink/internal/dsu"
)

// PacketHandler receives decoded responses from the engine. All methods are
// invoked serially from the engine goroutine, never concurrently with each
// other, and never after Run has returned.
type PacketHandler interface {
	HandleVersion(dsu.VersionResponse)
	HandlePortInfo(dsu.PortInfoResponse)
	HandlePadData(dsu.PadDataResponse)
}

const (
	defaultHeartbeatPeriod = 3 * time.Second
	defaultLogInterval     = time.Minute

	// Upper bound on a single blocking read, so the loop notices
	// cancellation even when the peer is silent.
	readPollInterval = 500 * time.Millisecond
)

// Engine owns the UDP socket to one cemuhookudp server and drives the
// receive and heartbeat loop. It validates and decodes incoming datagrams and
// hands them to a PacketHandler; every heartbeat it re-sends the port-info
// query and pad-data subscription pair that keeps the server streaming.
type Engine struct {
	conn     *net.UDPConn
	clientID uint32
	handler  PacketHandler
	stats    *PacketStats

	heartbeatPeriod time.Duration
	logInterval     time.Duration

	// Receive and send buffers are owned by the engine goroutine and reused
	// across events; no per-packet allocation on the receive path.
	recvBuf     [dsu.MaxPacketSize]byte
	portInfoReq []byte
	padDataReq  []byte
}

// EngineConfig contains configuration options for the engine.
type EngineConfig struct {
	Host     string
	Port     int
	ClientID uint32
	Handler  PacketHandler

	// Stats is optional; a fresh PacketStats is used when nil.
	Stats *PacketStats

	// HeartbeatPeriod defaults to 3 seconds, LogInterval to one minute.
	HeartbeatPeriod time.Duration
	LogInterval     time.Duration
}

// NewEngine opens a connected UDP socket on an ephemeral local port to the
// configured server and prepares the two request packets sent on every
// heartbeat: a port-info query for the first pad slot and a by-slot pad-data
// subscription with a zero MAC placeholder.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Handler == nil {
		return nil, errors.New("engine requires a packet handler")
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(config.Host, strconv.Itoa(config.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}

	stats := config.Stats
	if stats == nil {
		stats = NewPacketStats()
	}
	heartbeat := config.HeartbeatPeriod
	if heartbeat == 0 {
		heartbeat = defaultHeartbeatPeriod
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = defaultLogInterval
	}

	return &Engine{
		conn:            conn,
		clientID:        config.ClientID,
		handler:         config.Handler,
		stats:           stats,
		heartbeatPeriod: heartbeat,
		logInterval:     logInterval,
		portInfoReq:     dsu.EncodePortInfoRequest(config.ClientID, 0),
		padDataReq:      dsu.EncodePadDataRequest(config.ClientID, dsu.RegisterBySlot, 0, [6]byte{}),
	}, nil
}

// LocalAddr returns the ephemeral local address the engine is bound to.
func (e *Engine) LocalAddr() net.Addr {
	return e.conn.LocalAddr()
}

// Run drives the receive and heartbeat loop on the calling goroutine until
// ctx is cancelled. Individual receive, validation or send failures never
// terminate the loop; after any of them the next read is armed again. The
// first heartbeat fires one full period after entry, and each following
// deadline is anchored to the previous one rather than to the send time, so
// the cadence does not drift with processing jitter.
func (e *Engine) Run(ctx context.Context) error {
	defer e.conn.Close()

	now := time.Now()
	nextHeartbeat := now.Add(e.heartbeatPeriod)
	nextLog := now.Add(e.logInterval)

	for {
		if ctx.Err() != nil {
			return nil
		}

		now = time.Now()
		if !now.Before(nextHeartbeat) {
			e.sendRequests()
			nextHeartbeat = nextHeartbeat.Add(e.heartbeatPeriod)
		}
		if !now.Before(nextLog) {
			e.stats.LogStats()
			nextLog = nextLog.Add(e.logInterval)
		}

		deadline := now.Add(readPollInterval)
		if nextHeartbeat.Before(deadline) {
			deadline = nextHeartbeat
		}
		if err := e.conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		n, err := e.conn.Read(e.recvBuf[:])
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			// Transient socket errors (e.g. ICMP port unreachable surfacing
			// on a connected UDP socket) must not stop the receive path.
			Logf("dsu read error: %v", err)
			continue
		}

		e.dispatch(e.recvBuf[:n])
	}
}

// dispatch validates one datagram and invokes the handler matching its type.
// Malformed or unrecognized datagrams are counted and dropped; the server is
// untrusted and gets no feedback.
func (e *Engine) dispatch(pkt []byte) {
	e.stats.AddPacket(len(pkt))

	typ, ok := dsu.Validate(pkt)
	if !ok {
		e.stats.AddMalformed()
		return
	}

	switch typ {
	case dsu.MessageTypeVersion:
		version, err := dsu.DecodeVersion(pkt)
		if err != nil {
			e.stats.AddMalformed()
			return
		}
		e.handler.HandleVersion(version)
	case dsu.MessageTypePortInfo:
		info, err := dsu.DecodePortInfo(pkt)
		if err != nil {
			e.stats.AddMalformed()
			return
		}
		e.handler.HandlePortInfo(info)
	case dsu.MessageTypePadData:
		data, err := dsu.DecodePadData(pkt)
		if err != nil {
			e.stats.AddMalformed()
			return
		}
		e.handler.HandlePadData(data)
	}
}

// sendRequests sends the heartbeat pair. A failed send is not retried within
// the tick; the next heartbeat is the retry.
func (e *Engine) sendRequests() {
	if _, err := e.conn.Write(e.portInfoReq); err != nil {
		Logf("dsu port info request failed: %v", err)
	}
	if _, err := e.conn.Write(e.padDataReq); err != nil {
		Logf("dsu pad data request failed: %v", err)
	}
}
