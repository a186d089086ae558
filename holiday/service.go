package holiday

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SourceCache is reported when a request was served from a fresh cache record.
const SourceCache = "cache"

// Result is the outcome of a holiday lookup.
type Result struct {
	Source   string    `json:"source"`
	Holidays []Holiday `json:"holidays"`
}

// Service serves holidays from the cache, refetching stale or missing records.
type Service struct {
	store    Store
	provider Provider
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type ServiceOption func(*Service)

// WithTTL overrides how long a cached record stays fresh.
func WithTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires a cache store in front of a provider.
func NewService(store Store, provider Provider, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("holiday: service requires a store")
	}
	if provider == nil {
		return nil, errors.New("holiday: service requires a provider")
	}
	s := &Service{
		store:    store,
		provider: provider,
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.now() }

// Holidays returns the holidays of country in year.
func (s *Service) Holidays(ctx context.Context, country string, year int) (Result, error) {
	code, err := NormalizeCountry(country)
	if err != nil {
		return Result{}, err
	}
	if err := validateYear(year); err != nil {
		return Result{}, err
	}
	key := Key{CountryCode: code, Year: year}
	now := s.now()

	cached, err := s.store.Find(ctx, key)
	switch {
	case err == nil:
		if cached.Fresh(now, s.ttl) {
			return Result{Source: SourceCache, Holidays: cached.Holidays}, nil
		}
		s.logger.Debug("holiday cache stale", slog.String("key", key.String()), slog.Time("fetched_at", cached.FetchedAt))
	case errors.Is(err, ErrNotFound):
	default:
		s.logger.Warn("holiday cache lookup failed", slog.String("key", key.String()), slog.Any("error", err))
	}

	holidays, source, err := fetch(ctx, s.provider, code, year)
	if err != nil {
		return Result{}, fmt.Errorf("holiday: fetch %s: %w", key, err)
	}
	if holidays == nil {
		holidays = []Holiday{}
	}
	Sort(holidays)

	rec := Record{CountryCode: code, Year: year, Holidays: holidays, FetchedAt: now}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("holiday: cache %s: %w", key, err)
	}
	s.logger.Info("holiday cache refreshed", slog.String("key", key.String()), slog.String("source", source), slog.Int("count", len(holidays)))
	return Result{Source: source, Holidays: holidays}, nil
}

// AddCustom appends a user supplied holiday to the cached record of country and year.
func (s *Service) AddCustom(ctx context.Context, country string, year int, h Holiday) error {
	if strings.TrimSpace(country) == "" || year == 0 || strings.TrimSpace(h.Date) == "" {
		return ErrMissingFields
	}
	code, err := NormalizeCountry(country)
	if err != nil {
		return err
	}
	if err := validateYear(year); err != nil {
		return err
	}
	if _, err := h.Time(); err != nil {
		return err
	}
	key := Key{CountryCode: code, Year: year}
	now := s.now()

	rec, err := s.store.Find(ctx, key)
	switch {
	case err == nil:
		rec.Holidays = append(rec.Holidays, h)
		Sort(rec.Holidays)
	case errors.Is(err, ErrNotFound):
		rec = Record{CountryCode: code, Year: year, Holidays: []Holiday{h}}
	default:
		return fmt.Errorf("holiday: load %s: %w", key, err)
	}
	rec.FetchedAt = now

	if err := s.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("holiday: save %s: %w", key, err)
	}
	s.logger.Info("custom holiday added", slog.String("key", key.String()), slog.String("date", h.Date))
	return nil
}
