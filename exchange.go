package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"i4.energy/across/cellnet/modem"
	"i4.energy/across/cellnet/netif"
)

// Gateway is the part of netif.Interface used by the commands.
type Gateway interface {
	IPAddress() string
	DeviceStatus() modem.DevStatus
	NetworkStatus() modem.NetStatus
	Stats() netif.Stats
	Dial(ctx context.Context, network, address string) (net.Conn, error)
}

var _ Gateway = (*netif.Interface)(nil)

// exchange sends payload to address and collects the reply until the peer
// closes or timeout passes. A timeout after some data arrived is not an
// error.
func exchange(ctx context.Context, gw Gateway, network, address string, payload []byte, timeout time.Duration) ([]byte, error) {
	conn, err := gw.Dial(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	datagram := strings.HasPrefix(network, "udp")
	var reply []byte
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		reply = append(reply, buf[:n]...)
		switch {
		case err == nil:
			if datagram {
				return reply, nil
			}
		case errors.Is(err, io.EOF):
			return reply, nil
		case errors.Is(err, os.ErrDeadlineExceeded) && len(reply) > 0:
			return reply, nil
		default:
			return reply, fmt.Errorf("read: %w", err)
		}
	}
}
