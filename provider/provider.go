// Package provider composes holiday data sources.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adeilh/vacation/holiday"
)

// Chain asks each provider in turn and returns the first successful answer.
type Chain struct {
	providers []holiday.Provider
	logger    *slog.Logger
}

// Fallback builds a Chain; nil providers are ignored.
func Fallback(providers ...holiday.Provider) *Chain {
	c := &Chain{logger: slog.Default()}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// WithLogger sets the logger used to report failed attempts.
func (c *Chain) WithLogger(l *slog.Logger) *Chain {
	if l != nil {
		c.logger = l
	}
	return c
}

// Name joins the member names, e.g. "nager+local".
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (c *Chain) Holidays(ctx context.Context, countryCode string, year int) ([]holiday.Holiday, error) {
	hs, _, err := c.HolidaysWithSource(ctx, countryCode, year)
	return hs, err
}

// HolidaysWithSource also reports the name of the provider that answered.
func (c *Chain) HolidaysWithSource(ctx context.Context, countryCode string, year int) ([]holiday.Holiday, string, error) {
	if len(c.providers) == 0 {
		return nil, "", fmt.Errorf("%w: no providers configured", holiday.ErrProvidersExhausted)
	}
	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		hs, err := p.Holidays(ctx, countryCode, year)
		if err == nil {
			return hs, p.Name(), nil
		}
		c.logger.Warn("holiday provider failed",
			slog.String("provider", p.Name()),
			slog.String("country", countryCode),
			slog.Int("year", year),
			slog.Any("error", err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if allUnsupported(errs) {
		return nil, "", errors.Join(errs...)
	}
	return nil, "", fmt.Errorf("%w: %w", holiday.ErrProvidersExhausted, errors.Join(errs...))
}

func allUnsupported(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, holiday.ErrUnsupportedCountry) {
			return false
		}
	}
	return len(errs) > 0
}
