package httpx

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Route is one row of a route table passed to Router.Mount.
type Route struct {
	Method     string
	Path       string
	Handler    HandlerFunc
	Middleware []MiddlewareFunc
}

// Router registers handlers under a shared path prefix. The zero Router
// ignores registrations.
type Router struct {
	g *echo.Group
}

func NewRouter(a *App, prefix string, mw ...MiddlewareFunc) *Router {
	if a == nil || a.e == nil {
		return &Router{}
	}
	return &Router{g: a.e.Group(prefix, mw...)}
}

func (r *Router) GET(path string, h HandlerFunc, mw ...MiddlewareFunc) *Router {
	return r.Mount(Route{Method: http.MethodGet, Path: path, Handler: h, Middleware: mw})
}

func (r *Router) POST(path string, h HandlerFunc, mw ...MiddlewareFunc) *Router {
	return r.Mount(Route{Method: http.MethodPost, Path: path, Handler: h, Middleware: mw})
}

// Mount registers a route table; rows missing a method, path or handler are skipped.
func (r *Router) Mount(routes ...Route) *Router {
	if r.g == nil {
		return r
	}
	for _, rt := range routes {
		if rt.Method == "" || rt.Path == "" || rt.Handler == nil {
			continue
		}
		r.g.Add(strings.ToUpper(rt.Method), rt.Path, rt.Handler, rt.Middleware...)
	}
	return r
}
