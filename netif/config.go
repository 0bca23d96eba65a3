package netif

import (
	"context"
	"log/slog"
	"time"

	"i4.energy/across/cellnet/modem"
)

const (
	// DefaultSocketTimeout bounds every modem command issued for a socket.
	DefaultSocketTimeout = 10 * time.Second
	// DefaultPollInterval is the pause between two poller iterations.
	DefaultPollInterval = 10 * time.Millisecond

	maxPINLength = 8
)

// OpenFunc creates the parser of an Interface on its first Connect.
type OpenFunc func(ctx context.Context, config Config) (Parser, error)

// Config holds the construction parameters of an Interface.
type Config struct {
	// Dialer opens the link to the modem. Required unless Open is set.
	Dialer modem.Dialer
	// SimPIN unlocks the SIM card. Empty, or 1 to 8 digits.
	SimPIN string
	// Debug traces the modem exchange and logs device and network status
	// on Connect.
	Debug bool
	// SocketTimeout is the blocking timeout applied to every socket.
	SocketTimeout time.Duration
	// PollInterval is the pause between poller iterations. A negative value
	// only yields the processor.
	PollInterval time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Open defaults to OpenModem.
	Open OpenFunc
}

func (c *Config) validate() error {
	if c.Dialer == nil && c.Open == nil {
		return modem.ErrNoDialer
	}
	if len(c.SimPIN) > maxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range c.SimPIN {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	if c.SocketTimeout < 0 {
		return ErrParameter
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.SocketTimeout == 0 {
		c.SocketTimeout = DefaultSocketTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Open == nil {
		c.Open = OpenModem
	}
}

// OpenModem opens a modem.Modem with the fixed buffer size of the board
// and the dialer, debug flag and logger of config.
func OpenModem(ctx context.Context, config Config) (Parser, error) {
	mc, err := modem.NewConfigBuilder().
		WithDialer(config.Dialer).
		WithBufferSize(modem.DefaultBufferSize).
		WithDebug(config.Debug).
		WithLogger(config.Logger).
		Build()
	if err != nil {
		return nil, err
	}
	m, err := modem.Open(ctx, mc)
	if err != nil {
		return nil, err
	}
	return m, nil
}
