package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has no transport.
	//
	// This can occur if the Dialer returned neither a Transport nor an error,
	// or if the Modem was not created via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, and by every command issued after Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrLoopRunning is returned when Loop is called while another Loop is
	// still serving the same Modem.
	ErrLoopRunning = errors.New("modem loop already running")

	// ErrSIMPinRequired is returned when the SIM card requires a PIN and no
	// PIN was passed to Init.
	//
	// Callers may handle this error specially (for example, by prompting
	// the user for a PIN) and retry initialization.
	ErrSIMPinRequired = errors.New("SIM PIN required")

	// ErrSIMMissing is returned by Init when no usable SIM card is inserted.
	ErrSIMMissing = errors.New("SIM card not inserted")

	// ErrRegistrationDenied is returned by RegisterNet when the network
	// rejects both circuit and packet switched registration.
	ErrRegistrationDenied = errors.New("network registration denied")

	// ErrNoIP is returned by Join when the packet data context came up
	// without an address.
	ErrNoIP = errors.New("no IP address assigned")

	// ErrCommandFailed wraps final result codes other than OK, such as
	// ERROR or +CME ERROR: <text>.
	ErrCommandFailed = errors.New("command failed")

	// ErrUnexpectedResponse is returned when a command succeeded but its
	// intermediate response could not be parsed.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrUnknownSocket is returned for socket operations on a descriptor
	// that was not created by SocketSocket or was already freed.
	ErrUnknownSocket = errors.New("unknown socket descriptor")

	// ErrInvalidParameter is returned when an argument cannot be carried in
	// an AT command, such as an APN containing a double quote.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrLineTooLong is returned when a modem response line exceeds the
	// maximum allowed length.
	//
	// This typically indicates malformed input, unexpected binary data,
	// or a protocol framing error.
	ErrLineTooLong = errors.New("response line too long")
)
