// Command dsulink connects to a cemuhookudp motion server, keeps the pad
// subscription alive in the background and polls the shared device status on
// its own schedule, printing each snapshot and optionally recording it to a
// SQLite telemetry database.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/padware/dsulink/internal/client"
	"github.com/padware/dsulink/internal/pad"
	"github.com/padware/dsulink/internal/paddb"
)

var (
	configPath = flag.String("config", "", "Path to TOML config file")
	host       = flag.String("host", "", "Motion server host (overrides config)")
	port       = flag.Int("port", 0, "Motion server port (overrides config)")
	dbPath     = flag.String("db", "", "SQLite file to record samples to (overrides config)")
	pollMS     = flag.Int("poll", 0, "Poll interval in milliseconds (overrides config)")
)

func main() {
	flag.Parse()

	settings := defaultSettings()
	if *configPath != "" {
		loaded, err := loadSettings(*configPath)
		if err != nil {
			log.Fatalf("failed to read %s: %v", *configPath, err)
		}
		settings = loaded
	}
	if *host != "" {
		settings.Host = *host
	}
	if *port != 0 {
		settings.Port = *port
	}
	if *dbPath != "" {
		settings.DBPath = *dbPath
	}
	if *pollMS != 0 {
		settings.PollInterval = *pollMS
	}

	if settings.ClientID == 0 {
		settings.ClientID = newClientID()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := &pad.DeviceStatus{}
	c, err := client.New(client.Config{
		Host:        settings.Host,
		Port:        settings.Port,
		ClientID:    settings.ClientID,
		Status:      status,
		Calibration: settings.Calibration,
	})
	if err != nil {
		log.Fatalf("failed to start client: %v", err)
	}
	defer c.Close()

	var db *paddb.PadDB
	var sessionID int64
	if settings.DBPath != "" {
		db, err = paddb.NewPadDB(settings.DBPath)
		if err != nil {
			log.Fatalf("failed to open pad database: %v", err)
		}
		defer db.Close()

		remote := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
		sessionID, err = db.StartSession(remote, settings.Notes)
		if err != nil {
			log.Fatalf("failed to start recording session: %v", err)
		}
		log.Printf("recording session %d to %s", sessionID, settings.DBPath)
		defer func() {
			if err := db.EndSession(sessionID); err != nil {
				log.Printf("failed to close recording session: %v", err)
			}
		}()
	}

	log.Printf("polling pad status every %dms (client id %08x)", settings.PollInterval, settings.ClientID)
	ticker := time.NewTicker(time.Duration(settings.PollInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("shutting down")
			return
		case <-ticker.C:
			motion, touch := status.Snapshot()
			log.Printf("accel=(%+.3f, %+.3f, %+.3f) gyro=(%+.3f, %+.3f, %+.3f) touch=(%.3f, %.3f, active=%v)",
				motion.Accel.X, motion.Accel.Y, motion.Accel.Z,
				motion.Gyro.X, motion.Gyro.Y, motion.Gyro.Z,
				touch.X, touch.Y, touch.Active)
			if db != nil {
				if err := db.RecordSample(sessionID, motion, touch); err != nil {
					log.Printf("failed to record sample: %v", err)
				}
			}
		}
	}
}

// newClientID derives a random 32-bit client identifier. The value only needs
// to distinguish this client from others talking to the same server.
func newClientID() uint32 {
	id := uuid.New()
	return binary.LittleEndian.Uint32(id[:4])
}
