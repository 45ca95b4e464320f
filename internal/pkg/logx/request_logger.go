package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// anonymizeIP drops the host part of an address: the last octet for IPv4,
// the lower 64 bits for IPv6. Unparseable input yields "unknown_ip".
func anonymizeIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	ip := net.ParseIP(addr)
	switch {
	case ip == nil:
		return "unknown_ip"
	case ip.IsLoopback():
		return "127.0.0.1"
	case ip.To4() != nil:
		return ip.To4().Mask(net.CIDRMask(24, 32)).String()
	default:
		return ip.Mask(net.CIDRMask(64, 128)).String()
	}
}

// RequestLogger returns middleware that attaches a request-scoped logger to
// the request context and logs one line per completed request. Client errors
// are logged at Warn, server errors at Error.
func RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger := Logger().With().
				Str("component", "http").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", anonymizeIP(r.RemoteAddr)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

			status := ww.Status()
			event := logger.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			}

			event.
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(started)).
				Msg("request completed")
		})
	}
}
