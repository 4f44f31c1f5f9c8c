package session

import "time"

// Config bounds one request/response exchange. The wire format has no end
// marker independent of the declared length field, so a corrupted length can
// only be caught by MaxResponseBytes or the per-read timeout.
type Config struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxReadBytes     int
	MaxResponseBytes int
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:      2 * time.Second,
		WriteTimeout:     2 * time.Second,
		MaxReadBytes:     64,
		MaxResponseBytes: 1 << 20,
	}
}
