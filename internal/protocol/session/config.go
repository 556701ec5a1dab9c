package session

import (
	"time"

	"github.com/danmuck/i4/internal/protocol/frame"
)

// Config defines connection timeouts and frame limits.
type Config struct {
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for the next frame. Zero waits forever,
	// which suits I3 links that can stay quiet for long stretches.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Limits       frame.Limits
}

// DefaultConfig returns the connection defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		WriteTimeout:   15 * time.Second,
		Limits:         frame.DefaultLimits(),
	}
}

// WithDefaults fills zero fields from DefaultConfig. ReadTimeout stays as
// given since zero is meaningful.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.Limits.MaxPayloadBytes == 0 {
		c.Limits = def.Limits
	}
	return c
}
