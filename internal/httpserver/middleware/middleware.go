package middleware

import (
	"net/http"

	"github.com/davidbz/exportquote/internal/config"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middlewares into a single middleware.
// The first middleware is the outermost wrapper.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes the middleware chain for production.
// Order matters: CORS -> Trace -> Tenant.
func BuildMiddlewareChain(corsConfig *config.CORSConfig, pricingConfig *config.PricingConfig) Middleware {
	defaultTenant := ""
	if pricingConfig != nil {
		defaultTenant = pricingConfig.DefaultTenant
	}

	return Chain(
		CORS(corsConfig),
		Trace(),
		Tenant(defaultTenant),
	)
}
