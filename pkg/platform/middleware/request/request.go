// Package request tags each HTTP request with an id, the caller address and
// its start time.
package request

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CBIIT/ccdi-cpi-etl/pkg/requestcontext"
)

// HeaderRequestID is read from the request when present and always echoed.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// Middleware stores the request id, client IP and request time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := requestcontext.WithRequestID(r.Context(), id)
		ctx = requestcontext.WithClientIP(ctx, ClientIP(r))
		ctx = requestcontext.WithTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}

// ClientIP resolves the caller address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		// RemoteAddr is host:port; IPv6 hosts are bracketed.
		if i := strings.LastIndex(addr, ":"); i != -1 {
			return strings.Trim(addr[:i], "[]")
		}
		return addr
	}
	return "unknown"
}
