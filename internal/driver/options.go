package driver

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/protocol/session"
)

type config struct {
	Session               session.Config
	UploadBoundary        time.Time
	TimezoneOffsetMinutes int
	Logger                zerolog.Logger
}

func defaultConfig() config {
	return config{
		Session: session.DefaultConfig(),
		Logger:  zerolog.Nop(),
	}
}

// Option configures a Driver.
type Option func(*config)

// WithUploadBoundary sets the last-known-upload timestamp. Records strictly
// before it only seed basal continuity; records at or after it are emitted.
// The zero time means everything on the device is new.
func WithUploadBoundary(t time.Time) Option {
	return func(c *config) { c.UploadBoundary = t }
}

// WithTimezoneOffset sets the device-local UTC offset in minutes, passed
// through to the record builder with every entity.
func WithTimezoneOffset(minutes int) Option {
	return func(c *config) { c.TimezoneOffsetMinutes = minutes }
}

// WithSessionConfig overrides the transport exchange bounds.
func WithSessionConfig(cfg session.Config) Option {
	return func(c *config) { c.Session = cfg }
}

// WithLogger sets the driver logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.Logger = log }
}
