package utils

import (
	"net"
	"net/url"
	"strings"
	"sync"
)

var (
	trustedMu      sync.RWMutex
	trustedOrigins = map[string]struct{}{}
)

// SetTrustedOrigins registers explicit origins (typically the configured
// frontend URL) that are allowed regardless of the local-network heuristics.
func SetTrustedOrigins(origins []string) {
	trustedMu.Lock()
	defer trustedMu.Unlock()
	trustedOrigins = make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			trustedOrigins[o] = struct{}{}
		}
	}
}

// IsAllowedOrigin checks whether an Origin header value should be trusted.
// Explicitly configured origins are always allowed; beyond that, localhost
// and private/RFC1918 addresses are accepted so a locally served chat UI
// works out of the box. Public internet origins are otherwise blocked.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	trustedMu.RLock()
	_, trusted := trustedOrigins[strings.TrimSuffix(origin, "/")]
	trustedMu.RUnlock()
	if trusted {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" {
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return isPrivateIP(ip)
	}

	return false
}

// isPrivateIP returns true for RFC1918, loopback, and link-local addresses.
func isPrivateIP(ip net.IP) bool {
	ranges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range ranges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
