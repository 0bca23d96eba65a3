package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"i4.energy/across/cellnet/at"
)

// Reg is a network registration state.
type Reg int

const (
	RegUnknown Reg = iota
	RegNone
	RegHome
	RegRoaming
	RegDenied
)

func (r Reg) String() string {
	switch r {
	case RegNone:
		return "none"
	case RegHome:
		return "home"
	case RegRoaming:
		return "roaming"
	case RegDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// regFromStat maps the <stat> field of +CREG/+CGREG.
func regFromStat(stat int) Reg {
	switch stat {
	case 0, 2:
		return RegNone
	case 1:
		return RegHome
	case 3:
		return RegDenied
	case 5:
		return RegRoaming
	default:
		return RegUnknown
	}
}

// NetStatus describes the network attachment after RegisterNet.
type NetStatus struct {
	// CSD is the circuit switched registration (AT+CREG)
	CSD Reg
	// PSD is the packet switched registration (AT+CGREG)
	PSD Reg
	// RSSI is the received signal strength in dBm, 0 when unknown
	RSSI int
	// Operator is the name of the registered network
	Operator string
}

// Registered reports whether either domain is registered at home or roaming.
func (n NetStatus) Registered() bool {
	ok := func(r Reg) bool { return r == RegHome || r == RegRoaming }
	return ok(n.CSD) || ok(n.PSD)
}

// LogValue implements slog.LogValuer.
func (n NetStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("csd", n.CSD.String()),
		slog.String("psd", n.PSD.String()),
		slog.Int("rssi", n.RSSI),
		slog.String("operator", n.Operator),
	)
}

// RegisterNet waits until the modem is registered with a network, then
// reads signal strength and operator.
func (m *Modem) RegisterNet(ctx context.Context) (NetStatus, error) {
	var status NetStatus

	config := PollConfig{
		Interval: m.config.pollInterval,
		Timeout:  m.config.registerTimeout,
	}
	err := m.poll(ctx, config, func(ctx context.Context) (bool, error) {
		var err error
		if status.CSD, err = m.registration(ctx, at.CmdNetReg, "+CREG"); err != nil {
			if errors.Is(err, ErrAlreadyClosed) {
				return false, err
			}
			return false, nil
		}
		// Not every firmware answers AT+CGREG? before attach.
		status.PSD, _ = m.registration(ctx, at.CmdGprsReg, "+CGREG")

		if status.CSD == RegDenied && status.PSD != RegHome && status.PSD != RegRoaming {
			return false, ErrRegistrationDenied
		}
		return status.Registered(), nil
	})
	if err != nil {
		return status, fmt.Errorf("register network: %w", err)
	}

	if resp, err := m.exec(ctx, at.CmdSignal); err == nil {
		if v, ok := infoValue(resp, "+CSQ"); ok {
			status.RSSI = rssiFromCSQ(v)
		}
	}
	if resp, err := m.exec(ctx, at.CmdOperator); err == nil {
		if v, ok := infoValue(resp, "+COPS"); ok {
			if f := strings.Split(v, ","); len(f) >= 3 {
				status.Operator = strings.Trim(f[2], `"`)
			}
		}
	}

	return status, nil
}

func (m *Modem) registration(ctx context.Context, cmd, prefix string) (Reg, error) {
	resp, err := m.exec(ctx, cmd)
	if err != nil {
		return RegUnknown, err
	}
	v, ok := infoValue(resp, prefix)
	if !ok {
		return RegUnknown, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	f := strings.Split(v, ",")
	if len(f) < 2 {
		return RegUnknown, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	stat, err := strconv.Atoi(strings.TrimSpace(f[1]))
	if err != nil {
		return RegUnknown, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	return regFromStat(stat), nil
}

// rssiFromCSQ converts "<rssi>,<ber>" into dBm.
func rssiFromCSQ(v string) int {
	f := strings.Split(v, ",")
	n, err := strconv.Atoi(strings.TrimSpace(f[0]))
	if err != nil || n < 0 || n > 31 {
		return 0
	}
	return -113 + 2*n
}

// pdpProfile is the u-blox packet switched data profile used by Join.
const pdpProfile = 0

// Join attaches to the packet data network through apn and returns the
// assigned address. An already active context is reused. On failure NoIP
// is returned together with the cause.
func (m *Modem) Join(ctx context.Context, apn, username, password string) (IP, error) {
	for _, v := range []string{apn, username, password} {
		if !quotable(v) {
			return NoIP, fmt.Errorf("%w: %q", ErrInvalidParameter, v)
		}
	}

	if ip, err := m.activeIP(ctx); err == nil && ip != NoIP {
		m.setIP(ip)
		return ip, nil
	}

	profile := []string{
		fmt.Sprintf(`AT+UPSD=%d,1,"%s"`, pdpProfile, apn),
		fmt.Sprintf(`AT+UPSD=%d,2,"%s"`, pdpProfile, username),
		fmt.Sprintf(`AT+UPSD=%d,3,"%s"`, pdpProfile, password),
		fmt.Sprintf(`AT+UPSD=%d,7,"0.0.0.0"`, pdpProfile),
	}
	for _, cmd := range profile {
		if err := m.expectOk(ctx, cmd); err != nil {
			return NoIP, fmt.Errorf("configure PDP profile: %w", err)
		}
	}

	activate := fmt.Sprintf("AT+UPSDA=%d,3", pdpProfile)
	if _, err := m.execTimeout(ctx, activate, m.config.joinTimeout); err != nil {
		return NoIP, fmt.Errorf("activate PDP context: %w", err)
	}

	ip, err := m.localIP(ctx)
	if err != nil {
		return NoIP, err
	}
	m.setIP(ip)
	return ip, nil
}

// quotable reports whether s can be sent as a quoted AT string argument.
func quotable(s string) bool {
	return !strings.ContainsAny(s, "\"\r\n")
}

// activeIP returns the address of profile 0 if it is already active.
func (m *Modem) activeIP(ctx context.Context) (IP, error) {
	resp, err := m.exec(ctx, fmt.Sprintf("AT+UPSND=%d,8", pdpProfile))
	if err != nil {
		return NoIP, err
	}
	v, ok := infoValue(resp, "+UPSND")
	if !ok || !strings.HasSuffix(v, ",1") {
		return NoIP, nil
	}
	return m.localIP(ctx)
}

func (m *Modem) localIP(ctx context.Context) (IP, error) {
	resp, err := m.exec(ctx, fmt.Sprintf("AT+UPSND=%d,0", pdpProfile))
	if err != nil {
		return NoIP, fmt.Errorf("query PDP address: %w", err)
	}
	v, ok := infoValue(resp, "+UPSND")
	if !ok {
		return NoIP, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	f := strings.Split(v, ",")
	if len(f) < 3 {
		return NoIP, fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp)
	}
	ip, err := ParseIP(strings.Trim(f[2], `"`))
	if err != nil || ip == NoIP {
		return NoIP, ErrNoIP
	}
	return ip, nil
}

// Disconnect deactivates the packet data context opened by Join.
func (m *Modem) Disconnect(ctx context.Context) error {
	if _, err := m.execTimeout(ctx, fmt.Sprintf("AT+UPSDA=%d,4", pdpProfile), m.config.joinTimeout); err != nil {
		return fmt.Errorf("deactivate PDP context: %w", err)
	}
	m.setIP(NoIP)
	return nil
}

// IP returns the address assigned by the last successful Join, or NoIP
// once the context was deactivated.
func (m *Modem) IP() IP {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ip
}

func (m *Modem) setIP(ip IP) {
	m.mu.Lock()
	m.ip = ip
	m.mu.Unlock()
}
