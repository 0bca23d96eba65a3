package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/warthog618/modem/trace"
	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport_test.go -package=modem

// Transport represents an established, bidirectional byte stream to a modem.
//
// A Transport is assumed to be already connected and ready for use. It provides
// the low-level I/O primitives required to send AT commands and receive responses.
// Typical implementations include serial ports, TCP connections to emulators,
// or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be used
// during modem construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyUSB0. Required.
	PortName string
	// BaudRate is used when Mode is nil. Defaults to DefaultBaudRate.
	BaudRate int
	// Mode overrides the complete serial mode.
	Mode *serial.Mode
}

// Dial opens the serial port. The port is left without a read timeout so the
// modem loop blocks in Read until data arrives or the port is closed.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("modem: open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

// tracedTransport logs the raw exchange while closing the underlying link.
type tracedTransport struct {
	io.ReadWriter
	io.Closer
}

func withTrace(t Transport, logger *slog.Logger) Transport {
	l := slog.NewLogLogger(logger.Handler(), slog.LevelDebug)
	return tracedTransport{
		ReadWriter: trace.New(t,
			trace.WithLogger(l),
			trace.WithReadFormat("modem rx: %q"),
			trace.WithWriteFormat("modem tx: %q"),
		),
		Closer: t,
	}
}
