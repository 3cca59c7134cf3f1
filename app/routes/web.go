package routes

import (
	"net/http"

	"github.com/shashiranjanraj/radio/config"
)

// Kind is the action decided for one request.
type Kind int

const (
	KindNotFound Kind = iota
	KindRedirect
	KindPage
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindRedirect:
		return "redirect"
	case KindPage:
		return "page"
	case KindFile:
		return "file"
	default:
		return "not_found"
	}
}

// Route is the routing decision. Target is the redirect location for
// KindRedirect and the resource path for KindPage and KindFile.
type Route struct {
	Kind   Kind
	Target string
}

// Pages configures the fixed routes.
type Pages struct {
	HomeLocation    string
	HomeRoute       string
	HomeHTML        string
	ControllerRoute string
	ControllerHTML  string
}

// PagesFromConfig picks the routing options out of cfg.
func PagesFromConfig(cfg config.Config) Pages {
	return Pages{
		HomeLocation:    cfg.Location.Home,
		HomeRoute:       cfg.Pages.HomeRoute,
		HomeHTML:        cfg.Pages.HomeHTML,
		ControllerRoute: cfg.Pages.ControllerRoute,
		ControllerHTML:  cfg.Pages.ControllerHTML,
	}
}

// Router classifies requests. It holds no per-request state and is safe to
// share between goroutines.
type Router struct {
	pages Pages
}

func New(pages Pages) *Router {
	return &Router{pages: pages}
}

// Match applies the rules in order; the first match wins.
func (rt *Router) Match(method, path string) Route {
	if method != http.MethodGet {
		return Route{Kind: KindNotFound}
	}

	switch path {
	case "/":
		return Route{Kind: KindRedirect, Target: rt.pages.HomeLocation}
	case rt.pages.HomeRoute:
		return Route{Kind: KindPage, Target: rt.pages.HomeHTML}
	case rt.pages.ControllerRoute:
		return Route{Kind: KindPage, Target: rt.pages.ControllerHTML}
	}

	return Route{Kind: KindFile, Target: path}
}

// Rule describes one routing rule for listings.
type Rule struct {
	Method string
	Path   string
	Action string
}

// Table lists the rules in evaluation order.
func (rt *Router) Table() []Rule {
	return []Rule{
		{http.MethodGet, "/", "302 → " + rt.pages.HomeLocation},
		{http.MethodGet, rt.pages.HomeRoute, "page " + rt.pages.HomeHTML},
		{http.MethodGet, rt.pages.ControllerRoute, "page " + rt.pages.ControllerHTML},
		{http.MethodGet, "*", "file (Content-Type by extension)"},
		{"*", "*", "404"},
	}
}
