package httpapi

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
)

// Proxy headers are checked before RemoteAddr; the first parsable value wins.
var (
	clientIPHeaders      = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}
	clientCountryHeaders = []string{"Fly-Client-Country", "CF-IPCountry", "X-Vercel-IP-Country", "CloudFront-Viewer-Country"}
)

const unknownCountry = "ZZ"

func resolveClientIP(_ context.Context, r *http.Request) string {
	candidates := make([]string, 0, len(clientIPHeaders)+1)
	for _, h := range clientIPHeaders {
		candidates = append(candidates, r.Header.Get(h))
	}
	candidates = append(candidates, r.RemoteAddr)

	for _, raw := range candidates {
		if addr, ok := parseClientAddr(raw); ok {
			return addr.String()
		}
	}
	return ""
}

func resolveCountryCode(_ context.Context, r *http.Request) string {
	for _, h := range clientCountryHeaders {
		code := strings.ToUpper(strings.TrimSpace(r.Header.Get(h)))
		if isCountryCode(code) {
			return code
		}
	}
	return unknownCountry
}

// parseClientAddr takes the first entry of a forwarded list and accepts
// either a bare address or host:port.
func parseClientAddr(raw string) (netip.Addr, bool) {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(first); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(first)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isCountryCode(code string) bool {
	return len(code) == 2 &&
		code[0] >= 'A' && code[0] <= 'Z' &&
		code[1] >= 'A' && code[1] <= 'Z'
}
