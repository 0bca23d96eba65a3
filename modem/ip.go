package modem

import (
	"fmt"
	"net/netip"
)

// IP is an IPv4 address in the modem's order: the first octet of the dotted
// form occupies the most significant byte.
type IP uint32

// NoIP is the zero address, returned when no address is available.
const NoIP IP = 0

// IPv4 builds an IP from its dotted octets.
func IPv4(a, b, c, d byte) IP {
	return IP(a)<<24 | IP(b)<<16 | IP(c)<<8 | IP(d)
}

func (ip IP) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(ip>>24), byte(ip>>16), byte(ip>>8), byte(ip))
}

// ParseIP parses a dotted IPv4 address as printed by the modem.
func ParseIP(s string) (IP, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return NoIP, err
	}
	if !addr.Is4() {
		return NoIP, fmt.Errorf("not an IPv4 address: %q", s)
	}
	b := addr.As4()
	return IPv4(b[0], b[1], b[2], b[3]), nil
}
