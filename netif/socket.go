package netif

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/cellnet/modem"
)

// Handle identifies an open socket. Handles are never reused, so a stale
// handle yields ErrInvalidHandle instead of reaching another socket.
type Handle uint32

// socket is the record of one open socket. mu guards every modem call for
// fd as well as callback and data; the poller takes it for each iteration.
type socket struct {
	mu       sync.Mutex
	parser   Parser
	fd       int
	proto    modem.Protocol
	remote   netip.AddrPort
	callback func(any)
	data     any

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// notify fires the callback. Callers hold s.mu.
func (s *socket) notify() {
	if s.callback != nil {
		s.callback(s.data)
	}
}

// SocketOpen creates a socket and starts its poller. It fails with
// ErrNoSocket when the interface is not connected or the modem has no
// descriptor left.
func (i *Interface) SocketOpen(ctx context.Context, proto modem.Protocol) (Handle, error) {
	if proto != modem.ProtoTCP && proto != modem.ProtoUDP {
		return 0, fmt.Errorf("%w: protocol %v", ErrParameter, proto)
	}

	i.mu.Lock()
	parser, connected := i.parser, i.ip != modem.NoIP
	i.mu.Unlock()
	if parser == nil || !connected {
		return 0, fmt.Errorf("%w: %w", ErrNoSocket, ErrNoConnection)
	}

	fd, err := parser.SocketSocket(ctx, proto)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoSocket, err)
	}
	if err := parser.SocketSetBlocking(fd, i.config.SocketTimeout); err != nil {
		_ = parser.SocketFree(ctx, fd)
		return 0, deviceError("set socket timeout", err)
	}

	s := &socket{
		parser: parser,
		fd:     fd,
		proto:  proto,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.running.Store(true)

	i.mu.Lock()
	i.next++
	h := i.next
	i.sockets[h] = s
	i.mu.Unlock()

	i.pollers.Add(1)
	go i.poll(s)

	i.logger.Debug("Socket opened", "handle", h, "fd", fd, "proto", proto)
	return h, nil
}

// SocketClose stops the poller of h and waits for it to exit, then frees
// the descriptor. No callback fires for h once SocketClose returned.
func (i *Interface) SocketClose(ctx context.Context, h Handle) error {
	i.mu.Lock()
	s, ok := i.sockets[h]
	delete(i.sockets, h)
	i.mu.Unlock()
	if !ok {
		return ErrInvalidHandle
	}

	s.running.Store(false)
	close(s.stop)
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.parser.SocketFree(ctx, s.fd); err != nil {
		return deviceError("free socket", err)
	}
	i.logger.Debug("Socket closed", "handle", h, "fd", s.fd)
	return nil
}

// SocketBind always fails with ErrUnsupported.
func (i *Interface) SocketBind(h Handle, addr netip.AddrPort) error {
	return ErrUnsupported
}

// SocketListen always fails with ErrUnsupported.
func (i *Interface) SocketListen(h Handle, backlog int) error {
	return ErrUnsupported
}

// SocketAccept always fails with ErrUnsupported.
func (i *Interface) SocketAccept(h Handle) (Handle, error) {
	return 0, ErrUnsupported
}

// SocketConnect connects h to addr. The callback fires whatever the outcome.
func (i *Interface) SocketConnect(ctx context.Context, h Handle, addr netip.AddrPort) error {
	s, err := i.lookup(h)
	if err != nil {
		return err
	}
	if !addr.Addr().Is4() {
		return fmt.Errorf("%w: %v is not an IPv4 address", ErrParameter, addr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.parser.SocketConnect(ctx, s.fd, addr.Addr().String(), int(addr.Port()))
	s.notify()
	if err != nil {
		return deviceError("connect", err)
	}
	s.remote = addr
	return nil
}

// SocketSend writes buf to the connected peer of h and returns the number
// of bytes the modem accepted. The callback fires whatever the outcome.
func (i *Interface) SocketSend(ctx context.Context, h Handle, buf []byte) (int, error) {
	s, err := i.lookup(h)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.parser.SocketSend(ctx, s.fd, buf)
	s.notify()
	if err != nil {
		return 0, deviceError("send", err)
	}
	return n, nil
}

// SocketSendTo sends buf to addr. The callback fires whatever the outcome.
func (i *Interface) SocketSendTo(ctx context.Context, h Handle, addr netip.AddrPort, buf []byte) (int, error) {
	s, err := i.lookup(h)
	if err != nil {
		return 0, err
	}
	ip := transportIP(addr.Addr())
	if ip == modem.NoIP {
		return 0, fmt.Errorf("%w: %v is not an IPv4 address", ErrParameter, addr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.parser.SocketSendTo(ctx, s.fd, ip, int(addr.Port()), buf)
	s.notify()
	if err != nil {
		return 0, deviceError("send", err)
	}
	s.remote = addr
	return n, nil
}

// SocketRecv reads from h without waiting for data: ErrWouldBlock means
// nothing is ready, ErrConnectionClosed that the peer closed and all data
// was read.
func (i *Interface) SocketRecv(ctx context.Context, h Handle, buf []byte) (int, error) {
	s, err := i.lookup(h)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.parser.SocketReadable(s.fd) {
		return 0, ErrWouldBlock
	}
	n, err := s.parser.SocketRecv(ctx, s.fd, buf)
	return recvResult(n, err)
}

// SocketRecvFrom is SocketRecv for datagram sockets and also reports the
// sender.
func (i *Interface) SocketRecvFrom(ctx context.Context, h Handle, buf []byte) (int, netip.AddrPort, error) {
	s, err := i.lookup(h)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.parser.SocketReadable(s.fd) {
		return 0, netip.AddrPort{}, ErrWouldBlock
	}
	n, ip, port, err := s.parser.SocketRecvFrom(ctx, s.fd, buf)
	if n, err = recvResult(n, err); err != nil {
		return 0, netip.AddrPort{}, err
	}
	return n, netip.AddrPortFrom(boundaryAddr(ip), uint16(port)), nil
}

func recvResult(n int, err error) (int, error) {
	switch {
	case errors.Is(err, io.EOF):
		return 0, ErrConnectionClosed
	case err != nil:
		return 0, deviceError("receive", err)
	case n == 0:
		return 0, ErrWouldBlock
	}
	return n, nil
}

// SocketAttach replaces the callback of h and its argument. The poller
// calls cb(data) while h is readable; a nil cb disables notification.
// cb runs with the socket locked: it must not block and must not call
// back into h.
func (i *Interface) SocketAttach(h Handle, cb func(data any), data any) error {
	s, err := i.lookup(h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.callback = cb
	s.data = data
	s.mu.Unlock()
	return nil
}

func (i *Interface) lookup(h Handle) (*socket, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.sockets[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return s, nil
}

// poll fires the callback of s once per iteration in which s is readable,
// until s is stopped.
func (i *Interface) poll(s *socket) {
	defer close(s.done)
	defer i.pollers.Add(-1)

	var tick <-chan time.Time
	if i.config.PollInterval > 0 {
		ticker := time.NewTicker(i.config.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for s.running.Load() {
		s.mu.Lock()
		if s.parser.SocketReadable(s.fd) {
			s.notify()
		}
		s.mu.Unlock()

		if tick == nil {
			runtime.Gosched()
			continue
		}
		select {
		case <-s.stop:
			return
		case <-tick:
		}
	}
}
