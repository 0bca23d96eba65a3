package modem

import (
	"log/slog"
	"time"
)

const (
	// DefaultBaudRate is the serial speed of the u-blox modems this
	// package drives.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the initial size of the response line buffer.
	DefaultBufferSize = 1024
	// maxLineLength bounds a single response line; a 512 byte datagram
	// in hex plus its +USORF header fits comfortably.
	maxLineLength = 4 * 1024
)

// Config holds the settings of a Modem. Use NewConfigBuilder to create one.
type Config struct {
	dialer          Dialer
	atTimeout       time.Duration
	initTimeout     time.Duration
	registerTimeout time.Duration
	joinTimeout     time.Duration
	pollInterval    time.Duration
	bufferSize      int
	debug           bool
	logger          *slog.Logger
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.atTimeout == 0 {
		c.atTimeout = 5 * time.Second
	}
	if c.initTimeout == 0 {
		c.initTimeout = 30 * time.Second
	}
	if c.registerTimeout == 0 {
		c.registerTimeout = 3 * time.Minute
	}
	if c.joinTimeout == 0 {
		c.joinTimeout = 3 * time.Minute
	}
	if c.pollInterval == 0 {
		c.pollInterval = time.Second
	}
	if c.bufferSize == 0 {
		c.bufferSize = DefaultBufferSize
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder with no dialer and default timeouts.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets how the modem link is opened. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithATTimeout bounds every AT command that has no longer timeout of its own.
func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.atTimeout = d
	return b
}

// WithInitTimeout bounds the whole Init sequence.
func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.initTimeout = d
	return b
}

// WithRegisterTimeout bounds how long RegisterNet waits for the network.
func (b *ConfigBuilder) WithRegisterTimeout(d time.Duration) *ConfigBuilder {
	b.config.registerTimeout = d
	return b
}

// WithJoinTimeout bounds the PDP context activation in Join.
func (b *ConfigBuilder) WithJoinTimeout(d time.Duration) *ConfigBuilder {
	b.config.joinTimeout = d
	return b
}

// WithPollInterval sets the delay between SIM and registration status polls.
func (b *ConfigBuilder) WithPollInterval(d time.Duration) *ConfigBuilder {
	b.config.pollInterval = d
	return b
}

// WithBufferSize sets the initial response buffer size.
func (b *ConfigBuilder) WithBufferSize(n int) *ConfigBuilder {
	b.config.bufferSize = n
	return b
}

// WithDebug traces every byte exchanged with the modem at debug level.
func (b *ConfigBuilder) WithDebug(debug bool) *ConfigBuilder {
	b.config.debug = debug
	return b
}

// WithLogger sets the logger. Defaults to slog.Default().
func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
