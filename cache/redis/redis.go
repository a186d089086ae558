// Package redis implements cache.Store over a small pooled RESP client.
package redis

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/adeilh/vacation/cache"
)

// Store implements cache.Store using the Redis RESP protocol.
type Store struct {
	opts   Options
	dialFn dialFunc
	pool   chan *conn
}

type dialFunc func(context.Context, Options) (net.Conn, error)

type conn struct {
	net.Conn
	r *bufio.Reader
}

// NewStore builds a Redis-backed cache store. Connections are dialled lazily.
func NewStore(opts Options) *Store {
	cfg := opts.withDefaults()
	return &Store{opts: cfg, dialFn: defaultDial, pool: make(chan *conn, cfg.PoolSize)}
}

// WithDial overrides the dialer.
func (s *Store) WithDial(fn dialFunc) {
	if fn != nil {
		s.dialFn = fn
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	reply, err := s.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	switch v := reply.(type) {
	case nil:
		return nil, cache.ErrNotFound
	case []byte:
		return v, nil
	}
	return nil, fmt.Errorf("redis: unexpected GET reply %T", reply)
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", key, string(value)}
	if ttl > 0 {
		args = append(args, "PX", strconv.FormatInt(max(ttl.Milliseconds(), 1), 10))
	}
	reply, err := s.do(ctx, args...)
	if err != nil {
		return err
	}
	return expectStatus(reply, "OK")
}

func (s *Store) Delete(ctx context.Context, key string) error {
	reply, err := s.do(ctx, "DEL", key)
	if err != nil {
		return err
	}
	n, ok := reply.(int64)
	if !ok {
		return fmt.Errorf("redis: unexpected DEL reply %v", reply)
	}
	if n == 0 {
		return cache.ErrNotFound
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	reply, err := s.do(ctx, "PING")
	if err != nil {
		return err
	}
	return expectStatus(reply, "PONG")
}

// Close drops all pooled connections.
func (s *Store) Close() error {
	for {
		select {
		case c := <-s.pool:
			_ = c.Close()
		default:
			return nil
		}
	}
}

// do runs one command on a pooled connection. Connections that saw an I/O
// error are discarded; server error replies leave the connection reusable.
func (s *Store) do(ctx context.Context, args ...string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := s.roundTrip(c, args...)
	var srvErr ServerError
	s.release(c, err != nil && !errors.As(err, &srvErr))
	return reply, err
}

func (s *Store) roundTrip(c *conn, args ...string) (any, error) {
	if err := deadline(c.SetWriteDeadline, s.opts.WriteTimeout); err != nil {
		return nil, err
	}
	if _, err := c.Write(encodeCommand(args...)); err != nil {
		return nil, err
	}
	if err := deadline(c.SetReadDeadline, s.opts.ReadTimeout); err != nil {
		return nil, err
	}
	return readReply(c.r)
}

func (s *Store) acquire(ctx context.Context) (*conn, error) {
	select {
	case c := <-s.pool:
		return c, nil
	default:
	}
	nc, err := s.dialFn(ctx, s.opts)
	if err != nil {
		return nil, fmt.Errorf("redis: dial %s: %w", s.opts.Addr, err)
	}
	c := &conn{Conn: nc, r: bufio.NewReader(nc)}
	if err := s.handshake(c); err != nil {
		_ = nc.Close()
		return nil, err
	}
	return c, nil
}

func (s *Store) handshake(c *conn) error {
	if s.opts.Password != "" {
		reply, err := s.roundTrip(c, "AUTH", s.opts.Password)
		if err != nil {
			return err
		}
		if err := expectStatus(reply, "OK"); err != nil {
			return err
		}
	}
	if s.opts.DB > 0 {
		reply, err := s.roundTrip(c, "SELECT", strconv.Itoa(s.opts.DB))
		if err != nil {
			return err
		}
		if err := expectStatus(reply, "OK"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) release(c *conn, broken bool) {
	if broken {
		_ = c.Close()
		return
	}
	select {
	case s.pool <- c:
	default:
		_ = c.Close()
	}
}

func defaultDial(ctx context.Context, opts Options) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	return dialer.DialContext(ctx, "tcp", opts.Addr)
}

func deadline(set func(time.Time) error, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return set(time.Now().Add(timeout))
}
