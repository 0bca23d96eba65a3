package modem

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/warthog618/modem/info"
)

// Protocol is the transport protocol of a modem socket, numbered as in
// AT+USOCR.
type Protocol int

const (
	ProtoTCP Protocol = 6
	ProtoUDP Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	default:
		return "proto(" + strconv.Itoa(int(p)) + ")"
	}
}

// maxChunk is the largest payload moved by a single socket command in hex mode.
const maxChunk = 512

// socketState is what the modem told us about one descriptor.
type socketState struct {
	proto   Protocol
	timeout time.Duration
	// pending is the number of unread bytes announced by +UUSORD/+UUSORF
	pending int
	// closed is set by +UUSOCL
	closed bool
}

// SocketSocket creates a socket and returns its descriptor.
func (m *Modem) SocketSocket(ctx context.Context, proto Protocol) (int, error) {
	resp, err := m.exec(ctx, fmt.Sprintf("AT+USOCR=%d", proto))
	if err != nil {
		return -1, fmt.Errorf("create %s socket: %w", proto, err)
	}
	v, ok := infoValue(resp, "+USOCR")
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	fd, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}

	m.mu.Lock()
	m.sockets[fd] = &socketState{proto: proto, timeout: m.config.atTimeout}
	m.mu.Unlock()
	return fd, nil
}

// SocketSetBlocking sets the timeout of every later command on fd.
func (m *Modem) SocketSetBlocking(fd int, timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sockets[fd]
	if !ok {
		return ErrUnknownSocket
	}
	s.timeout = timeout
	return nil
}

// SocketFree closes fd on the modem and forgets it. A socket already
// closed by the peer is released without error.
func (m *Modem) SocketFree(ctx context.Context, fd int) error {
	m.mu.Lock()
	s, ok := m.sockets[fd]
	delete(m.sockets, fd)
	m.mu.Unlock()
	if !ok {
		return ErrUnknownSocket
	}

	if _, err := m.execTimeout(ctx, fmt.Sprintf("AT+USOCL=%d", fd), s.timeout); err != nil && !s.closed {
		return fmt.Errorf("close socket %d: %w", fd, err)
	}
	return nil
}

// SocketConnect connects fd to host:port.
func (m *Modem) SocketConnect(ctx context.Context, fd int, host string, port int) error {
	timeout, err := m.socketTimeout(fd)
	if err != nil {
		return err
	}
	if _, err := m.execTimeout(ctx, fmt.Sprintf(`AT+USOCO=%d,"%s",%d`, fd, host, port), timeout); err != nil {
		return fmt.Errorf("connect socket %d to %s:%d: %w", fd, host, port, err)
	}

	m.mu.Lock()
	if s, ok := m.sockets[fd]; ok {
		s.closed = false
	}
	m.mu.Unlock()
	return nil
}

// SocketSend writes buf to a connected socket and returns the number of
// bytes the modem accepted.
func (m *Modem) SocketSend(ctx context.Context, fd int, buf []byte) (int, error) {
	return m.send(ctx, fd, buf, func(chunk []byte) (string, string) {
		return fmt.Sprintf(`AT+USOWR=%d,%d,"%s"`, fd, len(chunk), hex.EncodeToString(chunk)), "+USOWR"
	})
}

// SocketSendTo sends buf as datagrams to ip:port.
func (m *Modem) SocketSendTo(ctx context.Context, fd int, ip IP, port int, buf []byte) (int, error) {
	return m.send(ctx, fd, buf, func(chunk []byte) (string, string) {
		return fmt.Sprintf(`AT+USOST=%d,"%s",%d,%d,"%s"`, fd, ip, port, len(chunk), hex.EncodeToString(chunk)), "+USOST"
	})
}

func (m *Modem) send(ctx context.Context, fd int, buf []byte, command func([]byte) (string, string)) (int, error) {
	timeout, err := m.socketTimeout(fd)
	if err != nil {
		return 0, err
	}

	sent := 0
	for sent < len(buf) {
		chunk := buf[sent:min(len(buf), sent+maxChunk)]
		cmd, prefix := command(chunk)
		resp, err := m.execTimeout(ctx, cmd, timeout)
		if err != nil {
			return sent, fmt.Errorf("write socket %d: %w", fd, err)
		}
		v, ok := infoValue(resp, prefix)
		if !ok {
			return sent, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
		}
		f := strings.Split(v, ",")
		n, err := strconv.Atoi(strings.TrimSpace(f[len(f)-1]))
		if err != nil {
			return sent, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
		}
		sent += n
		if n < len(chunk) {
			break
		}
	}
	return sent, nil
}

// SocketReadable reports whether fd has unread data or was closed by the
// peer. It only consults state collected from URCs and never blocks on the
// modem. Unknown descriptors are not readable.
func (m *Modem) SocketReadable(fd int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sockets[fd]
	return ok && (s.pending > 0 || s.closed)
}

// SocketRecv reads from a connected socket. It returns 0 with a nil error
// when nothing is pending and io.EOF once the peer closed the socket and
// all data was read.
func (m *Modem) SocketRecv(ctx context.Context, fd int, buf []byte) (int, error) {
	want, timeout, err := m.recvSize(fd, len(buf))
	if err != nil || want == 0 {
		return 0, err
	}

	resp, err := m.execTimeout(ctx, fmt.Sprintf("AT+USORD=%d,%d", fd, want), timeout)
	if err != nil {
		return 0, fmt.Errorf("read socket %d: %w", fd, err)
	}
	// +USORD: <socket>,<length>,"<hex>"
	v, ok := infoValue(resp, "+USORD")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	f := strings.Split(v, ",")
	if len(f) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	n, err := decodePayload(buf, f[1], f[2:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	return n, nil
}

// SocketRecvFrom reads one datagram and reports its sender.
func (m *Modem) SocketRecvFrom(ctx context.Context, fd int, buf []byte) (int, IP, int, error) {
	want, timeout, err := m.recvSize(fd, len(buf))
	if err != nil || want == 0 {
		return 0, NoIP, 0, err
	}

	resp, err := m.execTimeout(ctx, fmt.Sprintf("AT+USORF=%d,%d", fd, want), timeout)
	if err != nil {
		return 0, NoIP, 0, fmt.Errorf("read socket %d: %w", fd, err)
	}
	// +USORF: <socket>,"<ip>",<port>,<length>,"<hex>"
	v, ok := infoValue(resp, "+USORF")
	if !ok {
		return 0, NoIP, 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	f := strings.Split(v, ",")
	if len(f) < 4 {
		return 0, NoIP, 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	ip, err := ParseIP(strings.Trim(f[1], `"`))
	if err != nil {
		return 0, NoIP, 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	port, err := strconv.Atoi(strings.TrimSpace(f[2]))
	if err != nil {
		return 0, NoIP, 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	n, err := decodePayload(buf, f[3], f[4:])
	if err != nil {
		return 0, NoIP, 0, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	return n, ip, port, nil
}

// recvSize returns how many bytes to request from fd for a buffer of size n.
func (m *Modem) recvSize(fd, n int) (int, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sockets[fd]
	if !ok {
		return 0, 0, ErrUnknownSocket
	}
	if s.pending == 0 {
		if s.closed {
			return 0, 0, io.EOF
		}
		return 0, 0, nil
	}
	return min(n, s.pending, maxChunk), s.timeout, nil
}

// handleRead subtracts the bytes carried by a +USORD or +USORF response
// line from the pending count. It runs on the Loop goroutine, in arrival
// order with the +UUSORD/+UUSORF URCs that set the count.
func (m *Modem) handleRead(line string) {
	var prefix string
	var length int
	switch {
	case info.HasPrefix(line, "+USORD"):
		// <socket>,<length>,"<hex>"
		prefix, length = "+USORD", 1
	case info.HasPrefix(line, "+USORF"):
		// <socket>,"<ip>",<port>,<length>,"<hex>"
		prefix, length = "+USORF", 3
	default:
		return
	}
	f := strings.Split(info.TrimPrefix(line, prefix), ",")
	if len(f) <= length {
		return
	}
	fd, err1 := strconv.Atoi(strings.TrimSpace(f[0]))
	n, err2 := strconv.Atoi(strings.TrimSpace(f[length]))
	if err1 != nil || err2 != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sockets[fd]; ok {
		s.pending = max(0, s.pending-n)
		if n == 0 {
			s.pending = 0
		}
	}
}

func (m *Modem) socketTimeout(fd int) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sockets[fd]
	if !ok {
		return 0, ErrUnknownSocket
	}
	return s.timeout, nil
}

// decodePayload decodes the quoted hex field into buf. length is the
// byte count announced by the modem; data holds the remaining fields.
func decodePayload(buf []byte, length string, data []string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(length))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if len(data) == 0 {
		return 0, errors.New("missing payload")
	}
	payload := strings.Trim(data[0], `"`)
	if hex.DecodedLen(len(payload)) != n || n > len(buf) {
		return 0, errors.New("payload length mismatch")
	}
	return hex.Decode(buf, []byte(payload))
}

// handleURC applies socket and packet data URCs to the modem state.
// It runs on the Loop goroutine.
func (m *Modem) handleURC(urc string) {
	switch {
	case info.HasPrefix(urc, "+UUSORD"), info.HasPrefix(urc, "+UUSORF"):
		prefix := "+UUSORD"
		if info.HasPrefix(urc, "+UUSORF") {
			prefix = "+UUSORF"
		}
		// <socket>,<length>
		f := strings.Split(info.TrimPrefix(urc, prefix), ",")
		if len(f) != 2 {
			return
		}
		fd, err1 := strconv.Atoi(strings.TrimSpace(f[0]))
		n, err2 := strconv.Atoi(strings.TrimSpace(f[1]))
		if err1 != nil || err2 != nil {
			return
		}
		m.mu.Lock()
		if s, ok := m.sockets[fd]; ok {
			s.pending = n
		}
		m.mu.Unlock()

	case info.HasPrefix(urc, "+UUSOCL"):
		fd, err := strconv.Atoi(strings.TrimSpace(info.TrimPrefix(urc, "+UUSOCL")))
		if err != nil {
			return
		}
		m.mu.Lock()
		if s, ok := m.sockets[fd]; ok {
			s.closed = true
		}
		m.mu.Unlock()

	case info.HasPrefix(urc, "+UUPSDD"):
		m.logger.Warn("Packet data context deactivated by network", "urc", urc)
		m.setIP(NoIP)
	}
}
