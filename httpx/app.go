// Package httpx wraps echo for serving and resty for calling JSON HTTP APIs.
package httpx

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type (
	Context        = echo.Context
	HandlerFunc    = echo.HandlerFunc
	MiddlewareFunc = echo.MiddlewareFunc
)

// App is the echo instance behind a Server.
type App struct{ e *echo.Echo }

func New() *App { return &App{echo.New()} }

func (a *App) Use(mw ...MiddlewareFunc) { a.e.Use(mw...) }

// Group is NewRouter bound to a.
func (a *App) Group(prefix string, mw ...MiddlewareFunc) *Router {
	return NewRouter(a, prefix, mw...)
}

func (a *App) GET(path string, h HandlerFunc, mw ...MiddlewareFunc) {
	a.e.GET(path, h, mw...)
}

func (a *App) POST(path string, h HandlerFunc, mw ...MiddlewareFunc) {
	a.e.POST(path, h, mw...)
}

// HTTPError builds an error that the server's error handler renders with code.
func HTTPError(code int, message any) error { return echo.NewHTTPError(code, message) }

func RecoverMiddleware() MiddlewareFunc { return middleware.Recover() }

// CORSMiddleware builds a CORS middleware; nil allows any origin.
func CORSMiddleware(cfg *middleware.CORSConfig) MiddlewareFunc {
	if cfg == nil {
		return middleware.CORSWithConfig(middleware.DefaultCORSConfig)
	}
	return middleware.CORSWithConfig(*cfg)
}

// DefaultCORSConfig allows any origin with the common methods.
var DefaultCORSConfig = middleware.DefaultCORSConfig
