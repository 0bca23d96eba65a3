package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"i4.energy/across/cellnet/at"
)

// SimStatus is the state of the SIM card as reported by AT+CPIN?.
type SimStatus int

const (
	SimUnknown SimStatus = iota
	SimMissing
	SimPinRequired
	SimPukRequired
	SimReady
)

func (s SimStatus) String() string {
	switch s {
	case SimMissing:
		return "missing"
	case SimPinRequired:
		return "pin"
	case SimPukRequired:
		return "puk"
	case SimReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DevStatus describes the modem and its SIM card after Init.
type DevStatus struct {
	Sim          SimStatus
	Manufacturer string
	Model        string
	Version      string
	IMEI         string
	IMSI         string
	CCID         string
}

// LogValue implements slog.LogValuer.
func (d DevStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("sim", d.Sim.String()),
		slog.String("manufacturer", d.Manufacturer),
		slog.String("model", d.Model),
		slog.String("version", d.Version),
		slog.String("imei", d.IMEI),
		slog.String("imsi", d.IMSI),
		slog.String("ccid", d.CCID),
	)
}

// Init performs the initial setup sequence for the modem hardware: wake-up,
// echo off, verbose errors, SIM unlock, identity queries and hex socket
// payloads. It must complete successfully before any other operation.
//
// The returned DevStatus is filled as far as the sequence got, also on error.
func (m *Modem) Init(ctx context.Context, pin string) (DevStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.initTimeout)
	defer cancel()

	var dev DevStatus

	// 1. Wake-up / sanity check
	if err := m.expectOk(ctx, at.CmdAt); err != nil {
		return dev, fmt.Errorf("modem not responding: %w", err)
	}

	if err := m.expectOk(ctx, at.CmdEchoOff); err != nil {
		return dev, fmt.Errorf("could not disable echo: %w", err)
	}

	if err := m.expectOk(ctx, at.CmdVerboseErrors); err != nil {
		return dev, fmt.Errorf("could not enable verbose errors: %w", err)
	}

	// 2. Check SIM status
	sim, err := m.simStatus(ctx)
	if err != nil {
		return dev, fmt.Errorf("query SIM status: %w", err)
	}
	dev.Sim = sim

	switch sim {
	case SimReady:
		// OK

	case SimPinRequired:
		if pin == "" {
			return dev, ErrSIMPinRequired
		}
		if err := m.expectOk(ctx, fmt.Sprintf(`AT+CPIN="%s"`, pin)); err != nil {
			return dev, fmt.Errorf("enter SIM PIN: %w", err)
		}

		// Wait until SIM becomes ready
		if err := m.waitForSIMReady(ctx, PollConfig{}); err != nil {
			return dev, err
		}
		dev.Sim = SimReady

	case SimMissing:
		return dev, ErrSIMMissing

	default:
		return dev, fmt.Errorf("unsupported SIM state: %v", sim)
	}

	// 3. Identity
	ids := []struct {
		cmd string
		dst *string
	}{
		{at.CmdManufacturer, &dev.Manufacturer},
		{at.CmdModel, &dev.Model},
		{at.CmdRevision, &dev.Version},
		{at.CmdIMEI, &dev.IMEI},
		{at.CmdIMSI, &dev.IMSI},
	}
	for _, id := range ids {
		resp, err := m.exec(ctx, id.cmd)
		if err != nil {
			return dev, fmt.Errorf("query %s: %w", id.cmd, err)
		}
		*id.dst = plainValue(resp, id.cmd)
	}

	resp, err := m.exec(ctx, at.CmdCCID)
	if err != nil {
		return dev, fmt.Errorf("query %s: %w", at.CmdCCID, err)
	}
	dev.CCID, _ = infoValue(resp, "+CCID")

	// 4. Socket payloads as hex so they never break line framing
	if err := m.expectOk(ctx, at.CmdHexSocketData); err != nil {
		return dev, fmt.Errorf("enable hex socket data: %w", err)
	}

	return dev, nil
}

// simStatus queries AT+CPIN?. A missing SIM is reported by the modem as a
// command error and mapped to SimMissing.
func (m *Modem) simStatus(ctx context.Context) (SimStatus, error) {
	resp, err := m.exec(ctx, at.CmdSimStatus)
	if err != nil {
		if errors.Is(err, ErrCommandFailed) && strings.Contains(err.Error(), "not inserted") {
			return SimMissing, nil
		}
		return SimUnknown, err
	}

	state, ok := infoValue(resp, "+CPIN")
	if !ok {
		return SimUnknown, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	switch {
	case strings.Contains(state, at.SimReady):
		return SimReady, nil
	case strings.Contains(state, at.SimPuk):
		return SimPukRequired, nil
	case strings.Contains(state, at.SimPin):
		return SimPinRequired, nil
	default:
		return SimUnknown, nil
	}
}
