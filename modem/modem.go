package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warthog618/modem/info"
	"i4.energy/across/cellnet/at"
)

// Modem represents a u-blox cellular modem that communicates via AT commands.
// It provides thread-safe access to device, network and socket operations
// through a centralized event loop that handles all transport I/O.
type Modem struct {
	// transport provides the physical connection to the modem (serial, TCP, etc.)
	transport Transport
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger
	// closed indicates if the modem has been shut down
	closed atomic.Bool
	// loopRunning indicates if the Loop is currently running
	loopRunning atomic.Bool

	// Communication channels for Loop coordination
	// urcChan receives Unsolicited Result Codes from the modem
	urcChan chan string
	// commands queues AT command requests for the Loop to process
	commands chan *commandRequest

	// Loop control
	// loopCtx controls the lifecycle of the main event loop
	loopCtx context.Context
	// loopCancel cancels the main event loop
	loopCancel context.CancelFunc
	// loopDone is closed when a loop started by Open returns
	loopDone chan struct{}

	// mu guards the state fed by URCs
	mu      sync.Mutex
	ip      IP
	sockets map[int]*socketState
}

// commandRequest represents an AT command request to be executed by the Loop.
// It contains the command string, response channel, and execution context.
type commandRequest struct {
	// cmd is the AT command string to send to the modem
	cmd string
	// respChan receives the command response from the Loop
	respChan chan commandResponse
	// ctx provides timeout and cancellation control for the command
	ctx context.Context
}

// commandResponse contains the result of an AT command execution.
// It includes both the response data and any error that occurred.
type commandResponse struct {
	// response contains the complete response text from the modem
	response string
	// err contains any error that occurred during command execution
	err error
}

// PollConfig defines configuration for polling operations like waiting for SIM readiness.
type PollConfig struct {
	// Interval is the time between polling attempts
	Interval time.Duration
	// Timeout is the maximum time to wait for the condition
	Timeout time.Duration
	// MaxRetries is the maximum number of polling attempts
	MaxRetries int
}

// New creates a new Modem instance with the given configuration.
// It establishes the transport connection and prepares the event loop
// context. The loop itself is not started; see Loop and Open.
//
// Returns an error if the transport connection cannot be established.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}
	if config.debug {
		transport = withTrace(transport, config.logger)
	}

	m := &Modem{
		config:    config,
		logger:    config.logger,
		transport: transport,
		urcChan:   make(chan string, 100), // Buffered to prevent blocking on URCs
		// No queue for commands
		commands: make(chan *commandRequest),
		sockets:  make(map[int]*socketState),
	}

	// The loop outlives the dial context; only Close stops it.
	m.loopCtx, m.loopCancel = context.WithCancel(context.WithoutCancel(ctx))

	return m, nil
}

// Open creates a Modem with New and runs its Loop in the background until
// Close is called.
func Open(ctx context.Context, config Config) (*Modem, error) {
	m, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	m.loopDone = make(chan struct{})
	go func() {
		defer close(m.loopDone)
		if err := m.Loop(m.loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("Modem loop stopped", "error", err)
		}
	}()
	return m, nil
}

// Loop is the main event loop that handles all transport I/O operations.
// It must run before any command is issued; Open starts it automatically.
// The Loop coordinates all communication with the modem hardware:
//
// 1. Processes command requests from exec() calls, one at a time; after a
// timeout it waits for the late result before writing the next command
// 2. Writes AT commands to the transport
// 3. Reads and parses responses from the transport
// 4. Applies socket URCs to the socket table and forwards every URC
// 5. Returns command responses to waiting exec() calls
//
// The Loop runs until the provided context is cancelled. It's the ONLY goroutine
// that reads from the transport, preventing race conditions and ensuring URCs
// are never lost.
//
// Usage:
//
//	modem, err := New(ctx, config)
//	if err != nil { return err }
//
//	// Start the loop (typically in a goroutine)
//	go modem.Loop(ctx)
//
//	// Now commands will work
//	dev, err := modem.Init(ctx, "1234")
func (m *Modem) Loop(ctx context.Context) error {
	if !m.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.loopRunning.Store(false)

	scanner := bufio.NewScanner(m.transport)
	scanner.Buffer(make([]byte, 0, m.config.bufferSize), maxLineLength)
	scanner.Split(at.Splitter)

	// Channels for tokens and errors from the scanner goroutine
	tokens := make(chan string, 10)
	scanErrs := make(chan error, 1)

	// Start goroutine to read tokens from transport
	go func() {
		defer close(tokens)
		for scanner.Scan() {
			token := scanner.Text()
			if token != "" {
				select {
				case tokens <- token:
				case <-ctx.Done():
					return
				}
			}
		}
		// Scanner stopped - check if there was an error
		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				err = ErrLineTooLong
			}
			select {
			case scanErrs <- err:
			case <-ctx.Done():
			}
		}
	}()

	// Current command being processed
	var currentCmd *commandRequest
	var currentLines []string
	// drain is set after a command timed out. Until the late final result
	// code arrives or drain fires, no new command is written.
	var drain <-chan time.Time

	finish := func(resp commandResponse) {
		currentCmd.respChan <- resp
		currentCmd = nil
		currentLines = nil
	}

	for {
		// A new command is only accepted once the previous one completed,
		// so responses are never attributed to the wrong caller.
		commands := m.commands
		var cmdDone <-chan struct{}
		if currentCmd != nil {
			commands = nil
			cmdDone = currentCmd.ctx.Done()
		} else if drain != nil {
			commands = nil
		}

		select {
		case <-ctx.Done():
			// Context cancelled - shut down gracefully
			if currentCmd != nil {
				finish(commandResponse{err: ctx.Err()})
			}
			return ctx.Err()

		case <-cmdDone:
			m.logger.Debug("Command timed out", "command", currentCmd.cmd)
			finish(commandResponse{
				response: strings.Join(currentLines, "\n"),
				err:      fmt.Errorf("command timeout: %w", currentCmd.ctx.Err()),
			})
			drain = time.After(m.config.atTimeout)

		case <-drain:
			drain = nil

		case req := <-commands:
			currentCmd = req
			currentLines = nil

			// Write the AT command to the transport
			wire := strings.TrimSpace(req.cmd) + "\r"
			if _, err := m.transport.Write([]byte(wire)); err != nil {
				finish(commandResponse{err: fmt.Errorf("write command %q: %w", req.cmd, err)})
			}

		case token, ok := <-tokens:
			if !ok {
				// Token channel closed - scanner stopped
				if currentCmd != nil {
					finish(commandResponse{response: strings.Join(currentLines, "\n"), err: io.EOF})
				}
				return io.EOF
			}

			// Classify the token to determine how to handle it
			switch at.Classify(token) {
			case at.TypeURC:
				// URCs can arrive at any time, even during command execution
				m.handleURC(token)
				select {
				case m.urcChan <- token:
				default:
					m.logger.Debug("URC dropped", "urc", token)
				}

			case at.TypeFinal:
				// Final response (OK, ERROR, +CME ERROR, etc.)
				if currentCmd != nil {
					currentLines = append(currentLines, token)
					response := strings.Join(currentLines, "\n")
					if token == at.OK {
						finish(commandResponse{response: response})
					} else {
						finish(commandResponse{response: response, err: fmt.Errorf("%w: %s", ErrCommandFailed, token)})
					}
				} else if drain != nil {
					// Late result of a timed out command
					m.logger.Debug("Late result discarded", "result", token)
					drain = nil
				}

			case at.TypeData:
				// Intermediate data response (e.g., +CSQ: 15,99).
				// Socket reads are accounted even when nobody waits for them.
				m.handleRead(token)
				if currentCmd != nil {
					currentLines = append(currentLines, token)
				}

			case at.TypePrompt:
				if currentCmd != nil {
					currentLines = append(currentLines, token)
					finish(commandResponse{response: strings.Join(currentLines, "\n")})
				} else {
					drain = nil
				}
			}

		case err := <-scanErrs:
			// Scanner error - notify current command if any
			if currentCmd != nil {
				finish(commandResponse{err: fmt.Errorf("read error: %w", err)})
			}
			return fmt.Errorf("scanner error: %w", err)
		}
	}
}

// URC returns a read-only channel that receives Unsolicited Result Codes.
// Socket URCs are applied to the socket table before they are forwarded.
// The channel is buffered, but may drop some URC if not consumed fast enough.
func (m *Modem) URC() <-chan string {
	return m.urcChan
}

// Close shuts down the modem and releases all resources.
// It stops the event loop, closes the transport connection, and marks
// the modem as closed. After calling Close(), the modem cannot be reused.
func (m *Modem) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}

	// Stop the Loop if it's running
	if m.loopCancel != nil {
		m.loopCancel()
	}

	var err error
	if m.transport != nil {
		err = m.transport.Close()
	}
	if m.loopDone != nil {
		<-m.loopDone
	}
	return err
}

// exec sends an AT command to the modem and waits for the response,
// bounded by the configured AT timeout.
func (m *Modem) exec(ctx context.Context, cmd string) (string, error) {
	return m.execTimeout(ctx, cmd, m.config.atTimeout)
}

// execTimeout coordinates with the Loop() to execute one command. The
// timeout applies on top of any deadline already carried by ctx.
// The Loop() must be running before calling this method.
func (m *Modem) execTimeout(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	if m.closed.Load() {
		return "", ErrAlreadyClosed
	}

	if m.transport == nil {
		return "", ErrNotInitialized
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Create command request
	req := &commandRequest{
		cmd:      cmd,
		respChan: make(chan commandResponse, 1), // Buffered to prevent blocking
		ctx:      ctx,
	}

	// Send request to Loop
	select {
	case m.commands <- req:
	case <-ctx.Done():
		return "", fmt.Errorf("command cancelled before sending: %w", ctx.Err())
	}

	// Wait for response from Loop
	select {
	case resp := <-req.respChan:
		return resp.response, resp.err
	case <-ctx.Done():
		return "", fmt.Errorf("command timeout: %w", ctx.Err())
	}
}

// expectOk executes an AT command and validates that the response
// contains "OK". This is a convenience method for commands that should
// succeed with a simple OK response.
func (m *Modem) expectOk(ctx context.Context, cmd string) error {
	resp, err := m.exec(ctx, cmd)
	if err != nil {
		return err
	}
	if !strings.Contains(resp, at.OK) {
		return fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	return nil
}

// poll calls check until it reports done, returns an error, or the poll
// budget runs out. The first check happens immediately.
func (m *Modem) poll(ctx context.Context, config PollConfig, check func(context.Context) (bool, error)) error {
	var (
		pollInterval = config.Interval
		timeout      = config.Timeout
		maxRetries   = config.MaxRetries
	)

	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = int(timeout / pollInterval)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for retries := 0; ; retries++ {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if retries >= maxRetries {
			return fmt.Errorf("condition not met after %d retries", maxRetries)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// waitForSIMReady polls the SIM card status until it reports ready state.
// This is necessary after entering a SIM PIN, as the SIM card needs time
// to authenticate and become operational.
func (m *Modem) waitForSIMReady(ctx context.Context, config PollConfig) error {
	err := m.poll(ctx, config, func(ctx context.Context) (bool, error) {
		sim, err := m.simStatus(ctx)
		if err != nil {
			// Fail fast on critical errors
			if errors.Is(err, ErrAlreadyClosed) || errors.Is(err, ErrNotInitialized) {
				return false, err
			}
			return false, nil
		}
		return sim == SimReady, nil
	})
	if err != nil {
		return fmt.Errorf("SIM not ready: %w", err)
	}
	return nil
}

// lines returns the intermediate lines of a response, without the final
// result code.
func lines(resp string) []string {
	var out []string
	for _, l := range strings.Split(resp, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || at.Classify(l) == at.TypeFinal {
			continue
		}
		out = append(out, l)
	}
	return out
}

// infoValue returns the payload of the first response line carrying the
// info prefix (e.g. "+CSQ").
func infoValue(resp, prefix string) (string, bool) {
	for _, l := range lines(resp) {
		if info.HasPrefix(l, prefix) {
			return info.TrimPrefix(l, prefix), true
		}
	}
	return "", false
}

// plainValue returns the last unprefixed response line, as printed by
// identity queries such as AT+CGSN. Command echoes are skipped.
func plainValue(resp, cmd string) string {
	ls := lines(resp)
	for i := len(ls) - 1; i >= 0; i-- {
		if ls[i] != cmd {
			return ls[i]
		}
	}
	return ""
}
