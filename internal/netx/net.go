// Package netx contains small networking helpers.
package netx

import (
	"net"
)

// FallbackIP is reported when no outbound route can be determined.
const FallbackIP = "127.0.0.1"

// probeAddr is never contacted: dialing UDP only selects a route, no packet
// leaves the machine.
const probeAddr = "8.8.8.8:80"

// dialFn is a test seam.
var dialFn = net.Dial

// LocalIP returns the address of the interface the OS would use for outbound
// traffic, or FallbackIP when there is no route.
func LocalIP() string {
	conn, err := dialFn("udp", probeAddr)
	if err != nil {
		return FallbackIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsUnspecified() {
		return FallbackIP
	}
	return addr.IP.String()
}

// IsIP reports whether s is an IPv4 or IPv6 literal.
func IsIP(s string) bool {
	return net.ParseIP(s) != nil
}
