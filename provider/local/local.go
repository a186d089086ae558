// Package local computes holidays in-process with github.com/rickar/cal/v2.
package local

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"github.com/adeilh/vacation/holiday"
)

// Name is reported as the source of holidays served by this provider.
const Name = "local"

// Provider serves holidays from registered rickar/cal definitions.
type Provider struct {
	mu        sync.RWMutex
	calendars map[string][]*cal.Holiday
}

// New returns a provider preloaded with the US federal holidays.
func New() *Provider {
	p := &Provider{calendars: map[string][]*cal.Holiday{}}
	p.Register("US",
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	return p
}

// Register adds holiday definitions for country, appending to any existing set.
// Codes are stored upper-cased; an empty code is ignored.
func (p *Provider) Register(country string, hs ...*cal.Holiday) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hs {
		if h != nil {
			p.calendars[country] = append(p.calendars[country], h)
		}
	}
}

// Countries lists the registered country codes in sorted order.
func (p *Provider) Countries() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.calendars))
	for code := range p.calendars {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (p *Provider) Name() string { return Name }

// Holidays reports every observed date that lands in year. A holiday observed
// in a neighbouring year (New Year on a Saturday is observed the Friday
// before) is listed under the year it is observed in, never under both.
func (p *Provider) Holidays(ctx context.Context, countryCode string, year int) ([]holiday.Holiday, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	p.mu.RLock()
	defs, ok := p.calendars[code]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("local: %s: %w", countryCode, holiday.ErrUnsupportedCountry)
	}

	out := make([]holiday.Holiday, 0, len(defs))
	for _, def := range defs {
		for y := year - 1; y <= year+1; y++ {
			day := observedOn(def, y)
			if day.IsZero() || day.Year() != year {
				continue
			}
			out = append(out, holiday.Holiday{
				Date:      day.Format(holiday.DateLayout),
				LocalName: def.Name,
				Name:      def.Name,
				Types:     []string{"Public"},
			})
		}
	}
	holiday.Sort(out)
	return out, nil
}

// observedOn is the day off for def's occurrence in year, zero when def is
// not in effect that year.
func observedOn(def *cal.Holiday, year int) time.Time {
	actual, observed := def.Calc(year)
	if observed.IsZero() {
		return actual
	}
	return observed
}
