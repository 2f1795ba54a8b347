package observability

import (
	"net"
	"net/http"
	"strings"
)

// DeviceIDFromRequest extracts the caller-supplied device identifier
// used to correlate a notification channel connection with a client
// install. Empty when the client sends none.
func DeviceIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Device-Id")
}

// RequestIDFromRequest extracts the request id attached at the edge so
// connect, disconnect and error events for one websocket handshake can
// be grouped in the audit stream.
func RequestIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Request-Id")
}

// IPFromRequest resolves the client address, preferring the first
// X-Forwarded-For hop when the service sits behind a proxy.
func IPFromRequest(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
