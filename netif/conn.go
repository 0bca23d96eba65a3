package netif

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"sync"
	"time"

	"i4.energy/across/cellnet/modem"
)

// Conn is a net.Conn over a socket of an Interface. Reads wait for the
// socket callback instead of polling the modem.
type Conn struct {
	iface  *Interface
	h      Handle
	proto  modem.Protocol
	local  netip.AddrPort
	remote netip.AddrPort

	// readable receives a token each time the poller sees data.
	readable chan struct{}
	closed   chan struct{}
	once     sync.Once

	mu            sync.Mutex
	readDeadline  time.Time
	writeDeadline time.Time
}

var _ net.Conn = (*Conn)(nil)

// Dial opens a socket to address, an IPv4 "host:port". network is "tcp"
// or "udp". TCP sockets are connected; UDP sockets send every write to
// address and only accept datagrams from it.
func (i *Interface) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	var proto modem.Protocol
	switch network {
	case "tcp", "tcp4":
		proto = modem.ProtoTCP
	case "udp", "udp4":
		proto = modem.ProtoUDP
	default:
		return nil, fmt.Errorf("%w: network %q", ErrUnsupported, network)
	}

	remote, err := netip.ParseAddrPort(address)
	if err != nil || !remote.Addr().Is4() {
		return nil, fmt.Errorf("%w: address %q", ErrParameter, address)
	}

	h, err := i.SocketOpen(ctx, proto)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		iface:    i,
		h:        h,
		proto:    proto,
		remote:   remote,
		readable: make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
	if ip, err := netip.ParseAddr(i.IPAddress()); err == nil {
		c.local = netip.AddrPortFrom(ip, 0)
	}

	if err := i.SocketAttach(h, c.signal, nil); err != nil {
		_ = i.SocketClose(ctx, h)
		return nil, err
	}
	if proto == modem.ProtoTCP {
		if err := i.SocketConnect(ctx, h, remote); err != nil {
			_ = i.SocketClose(ctx, h)
			return nil, err
		}
	}
	return c, nil
}

// signal is the socket callback. It runs under the socket lock and never
// blocks.
func (c *Conn) signal(any) {
	select {
	case c.readable <- struct{}{}:
	default:
	}
}

// Read blocks until data arrives, the read deadline passes, the peer
// closes (io.EOF) or the Conn is closed.
func (c *Conn) Read(b []byte) (int, error) {
	for {
		ctx, cancel := c.opContext(c.getDeadline(&c.readDeadline))
		n, err := c.recv(ctx, b)
		cancel()
		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, ErrConnectionClosed):
			return 0, io.EOF
		case errors.Is(err, ErrInvalidHandle):
			return 0, net.ErrClosed
		case !errors.Is(err, ErrWouldBlock):
			return 0, err
		}

		if err := c.wait(); err != nil {
			return 0, err
		}
	}
}

func (c *Conn) recv(ctx context.Context, b []byte) (int, error) {
	if c.proto == modem.ProtoTCP {
		return c.iface.SocketRecv(ctx, c.h, b)
	}
	n, from, err := c.iface.SocketRecvFrom(ctx, c.h, b)
	if err == nil && from != c.remote {
		c.iface.logger.Debug("Datagram from unexpected peer dropped", "from", from, "remote", c.remote)
		return 0, ErrWouldBlock
	}
	return n, err
}

// wait blocks until the socket is readable again.
func (c *Conn) wait() error {
	var timeout <-chan time.Time
	if d := c.getDeadline(&c.readDeadline); !d.IsZero() {
		wait := time.Until(d)
		if wait <= 0 {
			return os.ErrDeadlineExceeded
		}
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-c.readable:
		return nil
	case <-timeout:
		return os.ErrDeadlineExceeded
	case <-c.closed:
		return net.ErrClosed
	}
}

// Write sends b to the remote address.
func (c *Conn) Write(b []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, net.ErrClosed
	default:
	}

	ctx, cancel := c.opContext(c.getDeadline(&c.writeDeadline))
	defer cancel()

	var (
		n   int
		err error
	)
	if c.proto == modem.ProtoTCP {
		n, err = c.iface.SocketSend(ctx, c.h, b)
	} else {
		n, err = c.iface.SocketSendTo(ctx, c.h, c.remote, b)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return n, os.ErrDeadlineExceeded
	}
	return n, err
}

// Close closes the socket. Pending reads return net.ErrClosed.
func (c *Conn) Close() error {
	err := net.ErrClosed
	c.once.Do(func() {
		close(c.closed)
		err = c.iface.SocketClose(context.Background(), c.h)
	})
	return err
}

func (c *Conn) LocalAddr() net.Addr  { return c.addr(c.local) }
func (c *Conn) RemoteAddr() net.Addr { return c.addr(c.remote) }

func (c *Conn) addr(ap netip.AddrPort) net.Addr {
	if c.proto == modem.ProtoTCP {
		return net.TCPAddrFromAddrPort(ap)
	}
	return net.UDPAddrFromAddrPort(ap)
}

func (c *Conn) SetDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readDeadline = t
	c.writeDeadline = t
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readDeadline = t
	return nil
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeDeadline = t
	return nil
}

func (c *Conn) getDeadline(d *time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *d
}

func (c *Conn) opContext(deadline time.Time) (context.Context, context.CancelFunc) {
	if deadline.IsZero() {
		return context.WithCancel(context.Background())
	}
	return context.WithDeadline(context.Background(), deadline)
}
