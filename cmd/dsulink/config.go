package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/padware/dsulink/internal/pad"
)

// Settings are the resolved runtime options: defaults, overlaid by the TOML
// file when one is given, overlaid by flags in main.
type Settings struct {
	Host         string
	Port         int
	ClientID     uint32
	PollInterval int // milliseconds
	DBPath       string
	Notes        string
	Calibration  *pad.TouchCalibration
}

// fileConfig maps config.toml keys onto Settings.
type fileConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	ClientID       uint32 `toml:"client_id"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	DBPath         string `toml:"db_path"`
	Notes          string `toml:"session_notes"`

	Calibration *calibrationConfig `toml:"touch_calibration"`
}

type calibrationConfig struct {
	MinX uint16 `toml:"min_x"`
	MaxX uint16 `toml:"max_x"`
	MinY uint16 `toml:"min_y"`
	MaxY uint16 `toml:"max_y"`
}

func defaultSettings() Settings {
	return Settings{
		Host:         "127.0.0.1",
		Port:         26760,
		PollInterval: 1000,
	}
}

// loadSettings overlays the TOML file at path onto the defaults. Keys absent
// from the file keep their default values.
func loadSettings(path string) (Settings, error) {
	settings := defaultSettings()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	if meta.IsDefined("host") {
		settings.Host = raw.Host
	}
	if meta.IsDefined("port") {
		settings.Port = raw.Port
	}
	if meta.IsDefined("client_id") {
		settings.ClientID = raw.ClientID
	}
	if meta.IsDefined("poll_interval_ms") {
		settings.PollInterval = raw.PollIntervalMS
	}
	if meta.IsDefined("db_path") {
		settings.DBPath = raw.DBPath
	}
	if meta.IsDefined("session_notes") {
		settings.Notes = raw.Notes
	}
	if raw.Calibration != nil {
		if raw.Calibration.MaxX <= raw.Calibration.MinX || raw.Calibration.MaxY <= raw.Calibration.MinY {
			return Settings{}, fmt.Errorf("invalid touch_calibration bounds: %+v", *raw.Calibration)
		}
		settings.Calibration = &pad.TouchCalibration{
			MinX: raw.Calibration.MinX,
			MaxX: raw.Calibration.MaxX,
			MinY: raw.Calibration.MinY,
			MaxY: raw.Calibration.MaxY,
		}
	}

	if settings.Port <= 0 || settings.Port > 65535 {
		return Settings{}, fmt.Errorf("invalid port %d", settings.Port)
	}
	if settings.PollInterval <= 0 {
		return Settings{}, fmt.Errorf("invalid poll_interval_ms %d", settings.PollInterval)
	}

	return settings, nil
}
