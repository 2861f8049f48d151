package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealClientIP returns the client IP from r.RemoteAddr. Proxy headers are
// not read here; with TRUSTED_PROXY set the router's RealIP middleware
// rewrites RemoteAddr first. IPv4-mapped IPv6 addresses are unmapped so one
// client gets one rate-limit key.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return host
}
