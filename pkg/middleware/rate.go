// Package middleware provides the HTTP middleware of the catalog service.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/livraria-escolar/catalog/pkg/response"
)

// RateLimit limits each client IP to max requests per window.
// A non-positive max disables limiting.
//
//	middleware.RateLimit(200, time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	if max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(max, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			response.TooManyRequests(w)
		}),
	)
}
