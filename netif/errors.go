package netif

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for operations the modem cannot perform,
	// such as server-side sockets.
	ErrUnsupported = errors.New("operation not supported")

	// ErrParameter is returned for arguments the interface cannot use.
	ErrParameter = errors.New("invalid parameter")

	// ErrNoConnection is returned when the interface is not connected.
	ErrNoConnection = errors.New("not connected")

	// ErrNoSocket is returned when no socket could be allocated.
	ErrNoSocket = errors.New("no socket available")

	// ErrWouldBlock is returned by receive operations when no data is ready.
	ErrWouldBlock = errors.New("operation would block")

	// ErrDeviceError is returned when the modem failed an operation.
	ErrDeviceError = errors.New("device error")

	// ErrInvalidHandle is returned for handles that are unknown or already closed.
	ErrInvalidHandle = errors.New("invalid socket handle")

	// ErrConnectionClosed is returned by receive operations once the peer
	// closed the connection and all data was read.
	ErrConnectionClosed = errors.New("connection closed by peer")

	// ErrInvalidPIN is returned by New for a SIM PIN that is not 1-8 digits.
	ErrInvalidPIN = errors.New("invalid SIM PIN")
)

// Result codes of the network stack socket API.
const (
	CodeOK           = 0
	CodeWouldBlock   = -3001
	CodeUnsupported  = -3002
	CodeParameter    = -3003
	CodeNoConnection = -3004
	CodeNoSocket     = -3005
	CodeDeviceError  = -3011
)

// Code maps an error returned by Interface to its result code. A nil error
// maps to CodeOK and unknown errors to CodeDeviceError.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrWouldBlock):
		return CodeWouldBlock
	case errors.Is(err, ErrUnsupported):
		return CodeUnsupported
	case errors.Is(err, ErrParameter), errors.Is(err, ErrInvalidHandle), errors.Is(err, ErrInvalidPIN):
		return CodeParameter
	case errors.Is(err, ErrNoConnection), errors.Is(err, ErrConnectionClosed):
		return CodeNoConnection
	case errors.Is(err, ErrNoSocket):
		return CodeNoSocket
	default:
		return CodeDeviceError
	}
}

func deviceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDeviceError, op, err)
}
