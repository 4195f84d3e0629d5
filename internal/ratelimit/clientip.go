package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPResolver derives the rate limit key of a request. X-Forwarded-For and
// X-Real-IP are honoured only when the connection comes from loopback or a
// trusted proxy; otherwise the connection address is the key.
type IPResolver struct {
	trusted []netip.Prefix
}

var defaultResolver = &IPResolver{}

// NewIPResolver trusts loopback plus every entry of trustedProxies, each a
// CIDR prefix or a single address.
func NewIPResolver(trustedProxies []string) (*IPResolver, error) {
	res := &IPResolver{}
	for _, entry := range trustedProxies {
		prefix, err := ParseTrustedProxy(entry)
		if err != nil {
			return nil, err
		}
		res.trusted = append(res.trusted, prefix)
	}
	return res, nil
}

// ParseTrustedProxy accepts "10.0.0.0/8" or "10.1.2.3".
func ParseTrustedProxy(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (res *IPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() {
		return true
	}
	for _, prefix := range res.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the connection address unless it is trusted. From a
// trusted peer it walks X-Forwarded-For right to left and returns the first
// untrusted hop, then falls back to X-Real-IP.
func (res *IPResolver) ClientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remote = host
	}
	if !res.isTrusted(remote) {
		return remote
	}

	var hops []string
	for _, line := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(line, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !res.isTrusted(hops[i]) {
			return hops[i]
		}
	}
	if len(hops) > 0 {
		// every hop is a proxy we trust
		return hops[0]
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}

// ClientIP resolves r with only loopback trusted.
func ClientIP(r *http.Request) string {
	return defaultResolver.ClientIP(r)
}
