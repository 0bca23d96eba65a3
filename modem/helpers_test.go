package modem_test

import (
	"context"
	"maps"
	"testing"
	"time"

	"i4.energy/across/cellnet/modem"
)

// initScript answers the Init sequence of a LISA-U200 with a ready SIM.
var initScript = map[string]string{
	"AT":            "AT\r\nOK\r\n",
	"ATE0":          "ATE0\r\nOK\r\n",
	"AT+CMEE=2":     "OK\r\n",
	"AT+CPIN?":      "+CPIN: READY\r\nOK\r\n",
	"AT+CGMI":       "u-blox\r\nOK\r\n",
	"AT+CGMM":       "LISA-U200\r\nOK\r\n",
	"AT+CGMR":       "11.40\r\nOK\r\n",
	"AT+CGSN":       "357520070000000\r\nOK\r\n",
	"AT+CIMI":       "228012345678901\r\nOK\r\n",
	"AT+CCID":       "+CCID: 8941000000000000000\r\nOK\r\n",
	"AT+UDCONF=1,1": "OK\r\n",
}

// netScript answers RegisterNet for a modem registered at home.
var netScript = map[string]string{
	"AT+CREG?":  "+CREG: 0,1\r\nOK\r\n",
	"AT+CGREG?": "+CGREG: 0,1\r\nOK\r\n",
	"AT+CSQ":    "+CSQ: 15,99\r\nOK\r\n",
	"AT+COPS?":  "+COPS: 0,0,\"Swisscom\"\r\nOK\r\n",
}

func script(tables ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, t := range tables {
		maps.Copy(out, t)
	}
	return out
}

// openModem starts a modem on a TestTransport answering with respond.
func openModem(t *testing.T, respond func(string) string) (*modem.Modem, *modem.TestTransport) {
	t.Helper()

	transport := modem.NewTestTransport()
	transport.Respond(respond)

	config, err := modem.NewConfigBuilder().
		WithDialer(transport).
		WithATTimeout(200 * time.Millisecond).
		WithPollInterval(10 * time.Millisecond).
		WithRegisterTimeout(time.Second).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	m, err := modem.Open(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to open modem: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, transport
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
