package netif

import (
	"encoding/binary"
	"math/bits"
	"net/netip"

	"i4.energy/across/cellnet/modem"
)

// The modem keeps IPv4 addresses with the first octet in the most
// significant byte. Callers see them in memory order, the way the address
// bytes are laid out on the wire. Every crossing swaps.

func toTransportOrder(v uint32) uint32 { return bits.ReverseBytes32(v) }

func toBoundaryOrder(v uint32) uint32 { return bits.ReverseBytes32(v) }

// transportIP converts a caller address to the modem representation.
// Non IPv4 addresses map to modem.NoIP.
func transportIP(addr netip.Addr) modem.IP {
	if !addr.Is4() && !addr.Is4In6() {
		return modem.NoIP
	}
	b := addr.Unmap().As4()
	return modem.IP(toTransportOrder(binary.LittleEndian.Uint32(b[:])))
}

// boundaryAddr converts a modem address to the caller representation.
func boundaryAddr(ip modem.IP) netip.Addr {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], toBoundaryOrder(uint32(ip)))
	return netip.AddrFrom4(b)
}
