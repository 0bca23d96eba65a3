package netif

import (
	"context"
	"time"

	"i4.energy/across/cellnet/modem"
)

//go:generate go tool mockgen -source=parser.go -destination=mock_parser_test.go -package=netif

// Parser is the modem driver used by an Interface. *modem.Modem implements it.
type Parser interface {
	Init(ctx context.Context, pin string) (modem.DevStatus, error)
	RegisterNet(ctx context.Context) (modem.NetStatus, error)
	Join(ctx context.Context, apn, username, password string) (modem.IP, error)
	Disconnect(ctx context.Context) error

	SocketSocket(ctx context.Context, proto modem.Protocol) (int, error)
	SocketSetBlocking(fd int, timeout time.Duration) error
	SocketFree(ctx context.Context, fd int) error
	SocketConnect(ctx context.Context, fd int, host string, port int) error
	SocketSend(ctx context.Context, fd int, buf []byte) (int, error)
	SocketSendTo(ctx context.Context, fd int, ip modem.IP, port int, buf []byte) (int, error)
	SocketReadable(fd int) bool
	SocketRecv(ctx context.Context, fd int, buf []byte) (int, error)
	SocketRecvFrom(ctx context.Context, fd int, buf []byte) (int, modem.IP, int, error)

	Close() error
}

var _ Parser = (*modem.Modem)(nil)
