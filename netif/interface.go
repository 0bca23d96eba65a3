// Package netif exposes a cellular modem as a network interface: connection
// management plus client sockets that report readability through a callback.
package netif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"i4.energy/across/cellnet/modem"
)

// Interface binds one modem to the socket API of a network stack.
// It is safe for concurrent use.
type Interface struct {
	config Config
	logger *slog.Logger

	// connMu serializes Connect, Disconnect and Close.
	connMu sync.Mutex

	mu        sync.Mutex
	parser    Parser
	ip        modem.IP
	devStatus modem.DevStatus
	netStatus modem.NetStatus
	sockets   map[Handle]*socket
	next      Handle

	pollers atomic.Int32
}

// Stats is a snapshot of the socket bookkeeping.
type Stats struct {
	// Sockets is the number of open sockets.
	Sockets int
	// Pollers is the number of poller goroutines still running.
	Pollers int
}

// New validates config and returns an Interface. The modem is only
// opened by the first Connect.
func New(config Config) (*Interface, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	return &Interface{
		config:  config,
		logger:  config.Logger,
		sockets: make(map[Handle]*socket),
	}, nil
}

// Connect initializes the modem, registers with the network and joins the
// packet data network through apn, in that order. Each stage only runs if
// the previous one succeeded. The address is stored on full success only.
// Credentials containing quotes or line breaks fail with ErrParameter before
// any stage runs. Every other failure is reported as ErrDeviceError.
func (i *Interface) Connect(ctx context.Context, apn, username, password string) error {
	for _, v := range []string{apn, username, password} {
		if strings.ContainsAny(v, "\"\r\n") {
			return fmt.Errorf("%w: %q", ErrParameter, v)
		}
	}

	i.connMu.Lock()
	defer i.connMu.Unlock()

	i.setIP(modem.NoIP)

	parser, err := i.openParser(ctx)
	if err != nil {
		return deviceError("open modem", err)
	}

	dev, err := parser.Init(ctx, i.config.SimPIN)
	i.mu.Lock()
	i.devStatus = dev
	i.mu.Unlock()
	if i.config.Debug {
		i.logger.Info("Device status", "device", dev)
	}
	if err != nil {
		return deviceError("init", err)
	}

	ns, err := parser.RegisterNet(ctx)
	i.mu.Lock()
	i.netStatus = ns
	i.mu.Unlock()
	if i.config.Debug {
		i.logger.Info("Network status", "network", ns)
	}
	if err != nil {
		return deviceError("register network", err)
	}

	ip, err := parser.Join(ctx, apn, username, password)
	if err == nil && ip == modem.NoIP {
		err = modem.ErrNoIP
	}
	if err != nil {
		return deviceError("join "+apn, err)
	}

	i.setIP(ip)
	i.logger.Info("Connected", "apn", apn, "ip", boundaryAddr(ip), "operator", ns.Operator)
	return nil
}

// openParser creates the parser once and returns it.
func (i *Interface) openParser(ctx context.Context) (Parser, error) {
	i.mu.Lock()
	parser := i.parser
	i.mu.Unlock()
	if parser != nil {
		return parser, nil
	}

	parser, err := i.config.Open(ctx, i.config)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	i.parser = parser
	i.mu.Unlock()
	return parser, nil
}

// Disconnect leaves the packet data network.
func (i *Interface) Disconnect(ctx context.Context) error {
	i.connMu.Lock()
	defer i.connMu.Unlock()

	i.mu.Lock()
	parser := i.parser
	i.mu.Unlock()
	if parser == nil {
		return ErrNoConnection
	}

	if err := parser.Disconnect(ctx); err != nil {
		return deviceError("disconnect", err)
	}
	i.setIP(modem.NoIP)
	i.logger.Info("Disconnected")
	return nil
}

// IPAddress returns the address obtained by the last successful Connect,
// or "" when not connected.
func (i *Interface) IPAddress() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ip == modem.NoIP {
		return ""
	}
	return boundaryAddr(i.ip).String()
}

// MACAddress always fails with ErrUnsupported: the modem has no MAC.
func (i *Interface) MACAddress() (string, error) {
	return "", ErrUnsupported
}

// DeviceStatus returns the device status read by the last Connect.
func (i *Interface) DeviceStatus() modem.DevStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.devStatus
}

// NetworkStatus returns the network status read by the last Connect.
func (i *Interface) NetworkStatus() modem.NetStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.netStatus
}

// Stats reports open sockets and running pollers.
func (i *Interface) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()
	return Stats{
		Sockets: len(i.sockets),
		Pollers: int(i.pollers.Load()),
	}
}

// Close closes every open socket and the modem. The Interface can be
// connected again afterwards.
func (i *Interface) Close(ctx context.Context) error {
	i.connMu.Lock()
	defer i.connMu.Unlock()

	i.mu.Lock()
	handles := make([]Handle, 0, len(i.sockets))
	for h := range i.sockets {
		handles = append(handles, h)
	}
	parser := i.parser
	i.parser = nil
	i.ip = modem.NoIP
	i.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := i.SocketClose(ctx, h); err != nil {
			errs = append(errs, fmt.Errorf("close socket %d: %w", h, err))
		}
	}
	if parser != nil {
		if err := parser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close modem: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (i *Interface) setIP(ip modem.IP) {
	i.mu.Lock()
	i.ip = ip
	i.mu.Unlock()
}
