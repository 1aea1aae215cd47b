// Command padserver is a synthetic cemuhookudp motion server for exercising
// the client without real hardware. It answers version and port-info queries
// for a single connected pad and streams generated PadData (sine-wave motion,
// a circling touch point) to whichever client subscribed most recently.
// Clients that stop sending requests are timed out.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/padware/dsulink/internal/dsu"
)

var (
	listen   = flag.String("listen", ":26760", "UDP listen address")
	rate     = flag.Int("rate", 60, "PadData samples per second")
	serverID = flag.Uint("id", 0xbadc0ffe, "Server id advertised in responses")
)

// clientTimeout is how long a subscription stays live without a refresh.
const clientTimeout = 5 * time.Second

type padServer struct {
	conn *net.UDPConn
	id   uint32

	mu         sync.Mutex
	subscriber *net.UDPAddr
	lastSeen   time.Time

	counter uint32
}

func main() {
	flag.Parse()

	addr, err := net.ResolveUDPAddr("udp", *listen)
	if err != nil {
		log.Fatalf("failed to resolve listen address: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &padServer{conn: conn, id: uint32(*serverID)}

	go s.stream(ctx, time.Second/time.Duration(*rate))

	log.Printf("padserver listening on %s", *listen)
	s.serve(ctx)
}

// serve answers incoming requests until the context is cancelled.
func (s *padServer) serve(ctx context.Context) {
	buf := make([]byte, dsu.MaxPacketSize)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			log.Printf("failed to set read deadline: %v", err)
			return
		}
		n, clientAddr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			log.Printf("read error: %v", err)
			continue
		}

		typ, ok := dsu.ValidateRequest(buf[:n])
		if !ok {
			continue
		}
		switch typ {
		case dsu.MessageTypeVersion:
			s.send(dsu.EncodeVersionResponse(s.id, dsu.ProtocolVersion), clientAddr)
		case dsu.MessageTypePortInfo:
			req, err := dsu.DecodePortInfoRequest(buf[:n])
			if err != nil {
				continue
			}
			for i := int32(0); i < req.PadCount && i < 4; i++ {
				s.send(dsu.EncodePortInfoResponse(s.id, s.slotInfo(req.Slots[i])), clientAddr)
			}
		case dsu.MessageTypePadData:
			s.mu.Lock()
			s.subscriber = clientAddr
			s.lastSeen = time.Now()
			s.mu.Unlock()
		}
	}
}

// stream pushes synthetic PadData to the current subscriber at the configured
// rate.
func (s *padServer) stream(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			target := s.subscriber
			if target != nil && now.Sub(s.lastSeen) > clientTimeout {
				log.Printf("subscriber %s timed out", target)
				s.subscriber = nil
				target = nil
			}
			s.mu.Unlock()
			if target == nil {
				continue
			}

			s.counter++
			s.send(dsu.EncodePadDataResponse(s.id, s.sample(now.Sub(start))), target)
		}
	}
}

// sample generates the pad state at elapsed time t: gentle sinusoidal motion
// and a touch point circling the panel.
func (s *padServer) sample(t time.Duration) dsu.PadDataResponse {
	phase := t.Seconds()
	return dsu.PadDataResponse{
		Info:            s.slotInfo(0),
		PacketCounter:   s.counter,
		MotionTimestamp: uint64(t.Microseconds()),
		AccelX:          float32(0.1 * math.Sin(phase)),
		AccelY:          -1, // resting on gravity
		AccelZ:          float32(0.1 * math.Cos(phase)),
		GyroPitch:       float32(10 * math.Sin(phase/2)),
		GyroYaw:         float32(10 * math.Cos(phase/2)),
		GyroRoll:        float32(5 * math.Sin(phase/3)),
		Touch1: dsu.TouchPoint{
			Active: 1,
			X:      uint16(960 + 400*math.Cos(phase)),
			Y:      uint16(480 + 200*math.Sin(phase)),
		},
	}
}

func (s *padServer) slotInfo(slot uint8) dsu.PortInfoResponse {
	info := dsu.PortInfoResponse{Slot: slot}
	if slot == 0 {
		info.State = dsu.SlotStateConnected
		info.Model = dsu.ModelFull
		info.Connection = dsu.ConnectionUSB
		info.Battery = dsu.BatteryCharged
		info.Active = 1
		info.MAC = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	}
	return info
}

func (s *padServer) send(pkt []byte, to *net.UDPAddr) {
	if _, err := s.conn.WriteToUDP(pkt, to); err != nil {
		log.Printf("send to %s failed: %v", to, err)
	}
}
