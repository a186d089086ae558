package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server serves an App with recover, request logging and optional CORS.
type Server struct {
	app      *App
	address  string
	srv      *http.Server
	shutdown time.Duration
	logger   *slog.Logger
}

type ServerOptions struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORS         *middleware.CORSConfig
	Logger       *slog.Logger
}

type ServerOption func(*ServerOptions)

func WithAddress(addr string) ServerOption {
	return func(o *ServerOptions) {
		if addr != "" {
			o.Address = addr
		}
	}
}

func WithTimeouts(read, write time.Duration) ServerOption {
	return func(o *ServerOptions) {
		if read > 0 {
			o.ReadTimeout = read
		}
		if write > 0 {
			o.WriteTimeout = write
		}
	}
}

// WithLogger sets the logger for request lines and lifecycle messages.
func WithLogger(l *slog.Logger) ServerOption {
	return func(o *ServerOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithCORS enables CORS; nil allows any origin.
func WithCORS(cfg *middleware.CORSConfig) ServerOption {
	return func(o *ServerOptions) {
		if cfg == nil {
			def := DefaultCORSConfig
			cfg = &def
		}
		o.CORS = cfg
	}
}

// RouteRegistrar mounts handlers on the server's App.
type RouteRegistrar func(*App)

func NewServer(opts ...ServerOption) *Server {
	cfg := ServerOptions{
		Address:      ":8000",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		Logger:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	app := New()
	e := app.e
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = renderError
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Use(RecoverMiddleware(), LoggerMiddleware(cfg.Logger))
	if cfg.CORS != nil {
		e.Use(CORSMiddleware(cfg.CORS))
	}

	return &Server{
		app:      app,
		address:  cfg.Address,
		shutdown: 5 * time.Second,
		logger:   cfg.Logger,
	}
}

func (s *Server) RegisterRoutes(reg RouteRegistrar) {
	if reg != nil {
		reg(s.app)
	}
}

// Handler exposes the router for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.app.e }

type StartOption func(*Server)

func WithShutdownTimeout(d time.Duration) StartOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdown = d
		}
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully and returns
// ctx.Err().
func (s *Server) Start(ctx context.Context, opts ...StartOption) error {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.srv = &http.Server{
		Addr:         s.address,
		Handler:      s.app.e,
		ReadTimeout:  s.app.e.Server.ReadTimeout,
		WriteTimeout: s.app.e.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("http server listening", slog.String("addr", s.address))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http server shutdown", slog.Any("error", err))
		}
		s.logger.Info("http server stopped")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// renderError writes {"error": msg}. Messages of plain errors are passed
// through; handlers hide internals by returning HTTPError.
func renderError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := StatusInternalError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = http.StatusText(code)
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		}
	case err != nil:
		msg = err.Error()
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]any{"error": msg})
}
