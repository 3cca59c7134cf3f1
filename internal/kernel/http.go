// Package kernel assembles the HTTP handler: global middleware, the
// operational routes and the request dispatcher behind everything else.
package kernel

import (
	"net/http"

	"github.com/shashiranjanraj/radio/app/controllers"
	"github.com/shashiranjanraj/radio/app/routes"
	"github.com/shashiranjanraj/radio/app/services"
	"github.com/shashiranjanraj/radio/config"
	"github.com/shashiranjanraj/radio/pkg/contenttype"
	"github.com/shashiranjanraj/radio/pkg/metrics"
	"github.com/shashiranjanraj/radio/pkg/middleware"
	"github.com/shashiranjanraj/radio/pkg/reqid"
	"github.com/shashiranjanraj/radio/pkg/router"
	"github.com/shashiranjanraj/radio/pkg/storage"
)

// HTTPKernel owns the router and the routing rules it was built from.
type HTTPKernel struct {
	router *router.Router
	rules  *routes.Router
}

// NewHTTPKernel builds the handler for cfg, serving resources from the
// default disk of disks. A nil log sends dispatcher failures to the process
// logger.
func NewHTTPKernel(cfg config.Config, disks *storage.Manager, log controllers.ErrorLogger) *HTTPKernel {
	rules := routes.New(routes.PagesFromConfig(cfg))
	dispatcher := controllers.NewDispatcher(
		rules,
		services.NewFileService(disks.Default()),
		contenttype.Default,
		log,
	)

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Recovery, for panics outside the dispatcher
	//  3. Request ID, before anything logs
	//  4. Logger, reads request_id from context
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)

	if cfg.Metrics.Enabled && cfg.Metrics.Path != "" {
		r.Get(cfg.Metrics.Path, "metrics", metrics.Handler())
	}

	r.Fallback("dispatch", dispatcher)

	return &HTTPKernel{router: r, rules: rules}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// Routes lists the mux-level routes (metrics and the dispatcher mount).
func (k *HTTPKernel) Routes() []router.RouteInfo {
	return k.router.Routes()
}

// Rules lists the dispatcher's routing rules in evaluation order.
func (k *HTTPKernel) Rules() []routes.Rule {
	return k.rules.Table()
}
