package netif_test

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"i4.energy/across/cellnet/modem"
	"i4.energy/across/cellnet/netif"
)

// fakeParser is an in-memory modem: data fed to a descriptor makes it
// readable until received.
type fakeParser struct {
	mu     sync.Mutex
	next   int
	inbox  map[int][]byte
	peer   map[int]modem.IP
	closed map[int]bool
	sent   map[int][]byte
	freed  []int

	readableCalls atomic.Int64
}

func newFakeParser() *fakeParser {
	return &fakeParser{
		inbox:  map[int][]byte{},
		peer:   map[int]modem.IP{},
		closed: map[int]bool{},
		sent:   map[int][]byte{},
	}
}

func (f *fakeParser) feed(fd int, from modem.IP, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[fd] = append(f.inbox[fd], data...)
	f.peer[fd] = from
}

func (f *fakeParser) peerClose(fd int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[fd] = true
}

func (f *fakeParser) sentTo(fd int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.sent[fd])
}

func (f *fakeParser) Init(ctx context.Context, pin string) (modem.DevStatus, error) {
	return modem.DevStatus{Sim: modem.SimReady, Model: "LISA-U200"}, nil
}

func (f *fakeParser) RegisterNet(ctx context.Context) (modem.NetStatus, error) {
	return modem.NetStatus{CSD: modem.RegHome, PSD: modem.RegHome, Operator: "Swisscom"}, nil
}

func (f *fakeParser) Join(ctx context.Context, apn, username, password string) (modem.IP, error) {
	return modem.IPv4(10, 0, 0, 1), nil
}

func (f *fakeParser) Disconnect(ctx context.Context) error { return nil }

func (f *fakeParser) SocketSocket(ctx context.Context, proto modem.Protocol) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd := f.next
	f.next++
	return fd, nil
}

func (f *fakeParser) SocketSetBlocking(fd int, timeout time.Duration) error { return nil }

func (f *fakeParser) SocketFree(ctx context.Context, fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freed = append(f.freed, fd)
	return nil
}

func (f *fakeParser) SocketConnect(ctx context.Context, fd int, host string, port int) error {
	return nil
}

func (f *fakeParser) SocketSend(ctx context.Context, fd int, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[fd] = append(f.sent[fd], buf...)
	return len(buf), nil
}

func (f *fakeParser) SocketSendTo(ctx context.Context, fd int, ip modem.IP, port int, buf []byte) (int, error) {
	return f.SocketSend(ctx, fd, buf)
}

func (f *fakeParser) SocketReadable(fd int) bool {
	f.readableCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inbox[fd]) > 0 || f.closed[fd]
}

func (f *fakeParser) SocketRecv(ctx context.Context, fd int, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inbox[fd]) == 0 {
		if f.closed[fd] {
			return 0, io.EOF
		}
		return 0, nil
	}
	n := copy(buf, f.inbox[fd])
	f.inbox[fd] = f.inbox[fd][n:]
	return n, nil
}

func (f *fakeParser) SocketRecvFrom(ctx context.Context, fd int, buf []byte) (int, modem.IP, int, error) {
	n, err := f.SocketRecv(ctx, fd, buf)
	f.mu.Lock()
	defer f.mu.Unlock()
	return n, f.peer[fd], 5683, err
}

func (f *fakeParser) Close() error { return nil }

// connect returns an Interface connected through p.
func connect(t *testing.T, p netif.Parser) *netif.Interface {
	t.Helper()

	iface, err := netif.New(netif.Config{
		Open:         func(context.Context, netif.Config) (netif.Parser, error) { return p, nil },
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	if err := iface.Connect(context.Background(), "internet", "", ""); err != nil {
		t.Fatalf("unexpected error from Connect(): %v", err)
	}
	t.Cleanup(func() { iface.Close(context.Background()) })
	return iface
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 1s")
		}
		time.Sleep(time.Millisecond)
	}
}
