// Package hxassetecho provides Echo framework integration for hxasset.
//
// Mount a serve.Manager onto an Echo instance or group so published asset
// directories are reachable:
//
//	e := echo.New()
//	mgr := hxassetecho.Mount(e)
//	c.assets = hxasset.NewPublisher("./assets/widget").Attach(c)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", cacheMiddleware)
//	mgr := hxassetecho.MountGroup(g)
package hxassetecho

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxasset"
	"github.com/pthm/hxasset/lib/serve"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path       string
	manager    *serve.Manager
	serveOpts  []serve.Option
	setDefault bool
}

// WithPath sets the URL path prefix for published assets.
// Defaults to serve.DefaultBaseURL.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithManager mounts an existing manager instead of creating one.
// The manager's base URL must match the mount path.
func WithManager(mgr *serve.Manager) Option {
	return func(o *options) {
		o.manager = mgr
	}
}

// WithServeOptions passes options to the created serve.Manager.
func WithServeOptions(opts ...serve.Option) Option {
	return func(o *options) {
		o.serveOpts = append(o.serveOpts, opts...)
	}
}

// WithoutDefault leaves the package default registry untouched.
// By default the mounted manager becomes the default manager of
// hxasset.DefaultRegistry().
func WithoutDefault() Option {
	return func(o *options) {
		o.setDefault = false
	}
}

// Mount creates a serve.Manager and mounts its handler on an Echo instance.
//
//	e := echo.New()
//	mgr := hxassetecho.Mount(e)
//
//	// With options:
//	mgr := hxassetecho.Mount(e, hxassetecho.WithPath("/static"))
func Mount(e *echo.Echo, opts ...Option) *serve.Manager {
	mgr, path := newManager(opts)
	e.GET(path+"/*", wrap(mgr))
	e.HEAD(path+"/*", wrap(mgr))
	return mgr
}

// MountGroup creates a serve.Manager and mounts its handler on an Echo group.
//
// Published URLs are built from the mount path, which does not include the
// group prefix. Pass the full public path as the manager's base URL:
//
//	g := e.Group("/app")
//	mgr := hxassetecho.MountGroup(g,
//	    hxassetecho.WithServeOptions(serve.WithBaseURL("/app/assets")))
func MountGroup(g *echo.Group, opts ...Option) *serve.Manager {
	mgr, path := newManager(opts)
	g.GET(path+"/*", wrap(mgr))
	g.HEAD(path+"/*", wrap(mgr))
	return mgr
}

func newManager(opts []Option) (*serve.Manager, string) {
	o := &options{path: serve.DefaultBaseURL, setDefault: true}
	for _, opt := range opts {
		opt(o)
	}
	path := "/" + strings.Trim(o.path, "/")

	mgr := o.manager
	if mgr == nil {
		mgr = serve.New(append([]serve.Option{serve.WithBaseURL(path)}, o.serveOpts...)...)
	}

	if o.setDefault {
		hxasset.DefaultRegistry().SetDefaultManager(mgr)
	}
	return mgr, path
}

// wrap serves the wildcard remainder of the route, "<segment>/<file>".
func wrap(mgr *serve.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request().Clone(c.Request().Context())
		r.URL.Path = "/" + c.Param("*")
		r.URL.RawPath = ""
		mgr.ServeHTTP(c.Response(), r)
		return nil
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxassetecho.Render(c, page())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
