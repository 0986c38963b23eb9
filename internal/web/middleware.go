package web

import (
	"net/http"
	"strings"
)

// ProtocolHeaders returns middleware that stops browsers from upgrading to
// HTTP/3, which breaks long-lived event streams behind some proxies
// (net::ERR_QUIC_PROTOCOL_ERROR). Requests under eventsPath also get
// HTTP/1.1 keep-alive headers.
func ProtocolHeaders(eventsPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Alt-Svc", "clear")

			if eventsPath != "" && strings.HasPrefix(r.URL.Path, eventsPath) {
				w.Header().Set("Connection", "keep-alive")
				w.Header().Set("X-Force-HTTP1", "true")
				w.Header().Set("Upgrade", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}
