package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DriverConfig is the pumpctl TOML configuration.
type DriverConfig struct {
	Device  DeviceConfig  `toml:"device"`
	Session SessionConfig `toml:"session"`
	Upload  UploadConfig  `toml:"upload"`
}

type DeviceConfig struct {
	VendorID    uint16 `toml:"vendor_id"`
	ProductID   uint16 `toml:"product_id"`
	InEndpoint  int    `toml:"in_endpoint"`
	OutEndpoint int    `toml:"out_endpoint"`
}

type SessionConfig struct {
	ReadTimeoutMs    int `toml:"read_timeout_ms"`
	WriteTimeoutMs   int `toml:"write_timeout_ms"`
	MaxReadBytes     int `toml:"max_read_bytes"`
	MaxResponseBytes int `toml:"max_response_bytes"`
}

type UploadConfig struct {
	// LastUpload is the upload boundary in RFC 3339; empty means everything
	// on the device is new.
	LastUpload string `toml:"last_upload"`

	TimezoneOffsetMinutes int `toml:"timezone_offset_minutes"`
}

func Load(path string) (DriverConfig, error) {
	var cfg DriverConfig
	if err := loadToml(path, &cfg); err != nil {
		return DriverConfig{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return DriverConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *DriverConfig) {
	if cfg.Device.InEndpoint == 0 {
		cfg.Device.InEndpoint = 1
	}
	if cfg.Device.OutEndpoint == 0 {
		cfg.Device.OutEndpoint = 1
	}
	if cfg.Session.ReadTimeoutMs == 0 {
		cfg.Session.ReadTimeoutMs = 2000
	}
	if cfg.Session.WriteTimeoutMs == 0 {
		cfg.Session.WriteTimeoutMs = 2000
	}
	if cfg.Session.MaxReadBytes == 0 {
		cfg.Session.MaxReadBytes = 64
	}
	if cfg.Session.MaxResponseBytes == 0 {
		cfg.Session.MaxResponseBytes = 1 << 20
	}
}

func Validate(cfg DriverConfig) error {
	if cfg.Device.VendorID == 0 || cfg.Device.ProductID == 0 {
		return fmt.Errorf("config: device vendor_id and product_id are required")
	}
	// Zero means "use the default" and is filled in before validation; only
	// explicit negatives are rejected here.
	if cfg.Session.MaxReadBytes < 0 || cfg.Session.MaxResponseBytes < 0 {
		return fmt.Errorf("config: session byte bounds must not be negative")
	}
	if cfg.Upload.LastUpload != "" {
		if _, err := time.Parse(time.RFC3339, cfg.Upload.LastUpload); err != nil {
			return fmt.Errorf("config: upload.last_upload: %w", err)
		}
	}
	return nil
}

// Boundary parses the configured upload boundary; the zero time when unset.
func (u UploadConfig) Boundary() (time.Time, error) {
	if u.LastUpload == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, u.LastUpload)
}
