package httpx

import (
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the canonical client address of r, without port or zone.
// Proxy headers are only honoured when chi's RealIP middleware has already
// folded them into RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip, ok := normalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return ""
}

// normalizeIP accepts "192.0.2.4", "192.0.2.4:8080", "[2001:db8::1]:443" and
// "fe80::1%eth0" forms.
func normalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").Unmap().String(), true
	}
	host := raw
	if strings.HasPrefix(host, "[") {
		if end := strings.LastIndex(host, "]"); end > 0 {
			host = host[1:end]
		}
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.WithZone("").Unmap().String(), true
	}
	return "", false
}
