package middleware

import (
	"net/http"

	"github.com/davidbz/exportquote/internal/observability"
)

const (
	TraceIDHeader   = "X-Trace-Id"
	RequestIDHeader = "X-Request-Id"
	TenantHeader    = "X-Tenant-ID"
)

// Trace injects trace, span and request IDs into every request.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			traceID := observability.GenerateTraceID()
			ctx = observability.WithTraceID(ctx, traceID)
			ctx = observability.WithSpanID(ctx, observability.GenerateSpanID())

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = observability.GenerateRequestID()
			}
			ctx = observability.WithRequestID(ctx, requestID)

			w.Header().Set(TraceIDHeader, traceID)
			w.Header().Set(RequestIDHeader, requestID)

			observability.FromContext(ctx).Info("request started",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("remote_addr", r.RemoteAddr),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Tenant resolves the tenant from the X-Tenant-ID header, falling back to defaultTenant.
func Tenant(defaultTenant string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := r.Header.Get(TenantHeader)
			if tenant == "" {
				tenant = defaultTenant
			}
			if tenant == "" {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(observability.WithTenant(r.Context(), tenant)))
		})
	}
}
