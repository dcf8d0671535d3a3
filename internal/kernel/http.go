// Package kernel assembles the catalog's HTTP handler: the global
// middleware stack, the operational endpoints and the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/livraria-escolar/catalog/app/routes"
	"github.com/livraria-escolar/catalog/config"
	"github.com/livraria-escolar/catalog/pkg/metrics"
	"github.com/livraria-escolar/catalog/pkg/middleware"
	"github.com/livraria-escolar/catalog/pkg/reqid"
	"github.com/livraria-escolar/catalog/pkg/response"
	"github.com/livraria-escolar/catalog/pkg/router"
	"github.com/livraria-escolar/catalog/pkg/storage"
)

// StoragePrefix is where the local disk is served from.
const StoragePrefix = "/storage"

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router. files, when non-nil, is served under
// StoragePrefix so URLs issued by the local disk resolve.
func NewHTTPKernel(cfg *config.Config, deps routes.Deps, files *storage.Local) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, recovery sees every panic,
	// the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(middleware.CORS(corsOptions(cfg)))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.MethodNotAllowed(w) })

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	if files != nil {
		r.Mount(StoragePrefix, "storage", http.StripPrefix(StoragePrefix, http.FileServer(http.Dir(files.Root()))))
	}

	routes.RegisterAPI(r, deps)

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// Router exposes the route table, for route:list.
func (k *HTTPKernel) Router() *router.Router {
	return k.router
}

func corsOptions(cfg *config.Config) middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	if len(cfg.CORSAllowedOrigins) > 0 {
		opts.AllowedOrigins = cfg.CORSAllowedOrigins
	}
	return opts
}
