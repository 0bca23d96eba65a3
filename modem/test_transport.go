package modem

import (
	"context"
	"io"
	"strings"
	"sync"
)

// TestTransport is a test helper that simulates a blocking transport using channels.
// This is needed because the Loop's scanner goroutine continuously reads from the transport,
// and we need reads to block until data is available (like a real serial port would).
//
// Commands written to it are recorded and, when a responder is installed,
// answered as a modem would.
type TestTransport struct {
	mu       sync.Mutex
	readChan chan []byte
	closed   bool
	rest     []byte
	written  []string
	respond  func(cmd string) string
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 64),
	}
}

// Respond installs f to answer every command written afterwards. f gets
// the command without its trailing CR and returns the raw response to
// queue, or "" to stay silent.
func (t *TestTransport) Respond(f func(cmd string) string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.respond = f
}

// Script answers commands from a fixed table and with ERROR for anything
// not in it.
func Script(responses map[string]string) func(string) string {
	return func(cmd string) string {
		if resp, ok := responses[cmd]; ok {
			return resp
		}
		return "ERROR\r\n"
	}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	cmd := strings.TrimSuffix(string(p), "\r")
	t.written = append(t.written, cmd)
	if t.respond != nil {
		if resp := t.respond(cmd); resp != "" {
			t.readChan <- []byte(resp)
		}
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	if len(t.rest) == 0 {
		data, ok := <-t.readChan
		if !ok {
			return 0, io.EOF
		}
		t.rest = data
	}
	n = copy(p, t.rest)
	t.rest = t.rest[n:]
	return n, nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the modem.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Written returns the commands written so far.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}

// Dial makes a TestTransport its own Dialer.
func (t *TestTransport) Dial(ctx context.Context) (Transport, error) {
	return t, nil
}
