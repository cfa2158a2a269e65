// Package privacy reduces personal data before it reaches logs.
package privacy

import "net/netip"

// Prefix lengths kept by AnonymizeIP.
const (
	IPv4PrefixBits = 24
	IPv6PrefixBits = 48
)

// AnonymizeIP keeps the /24 network of an IPv4 address and the /48 prefix of an
// IPv6 address. It returns "unknown" for an empty input and "invalid" for
// anything that is not a bare address.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := IPv6PrefixBits
	if addr.Is4() {
		bits = IPv4PrefixBits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
