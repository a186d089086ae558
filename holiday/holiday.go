package holiday

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of Holiday.Date.
const DateLayout = "2006-01-02"

// DefaultCountry is used when a request does not name a country.
const DefaultCountry = "IN"

// DefaultTTL is how long a cached record is served before it is refetched.
const DefaultTTL = 7 * 24 * time.Hour

const (
	minYear = 1900
	maxYear = 2200
)

var (
	ErrNotFound           = errors.New("holiday: record not found")
	ErrInvalidCountry     = errors.New("holiday: invalid country code")
	ErrInvalidYear        = errors.New("holiday: invalid year")
	ErrInvalidDate        = errors.New("holiday: invalid date")
	ErrMissingFields      = errors.New("missing fields")
	ErrUnsupportedCountry = errors.New("holiday: country not supported")
	ErrProvidersExhausted = errors.New("holiday: no provider could serve the request")
)

// Holiday is a single public holiday as served to calendar clients.
type Holiday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName,omitempty"`
	Name      string   `json:"name"`
	Types     []string `json:"type,omitempty"`
}

// Time parses Date in UTC.
func (h Holiday) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, h.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, h.Date)
	}
	return t, nil
}

// Key identifies one cached document.
type Key struct {
	CountryCode string
	Year        int
}

func (k Key) String() string { return k.CountryCode + ":" + strconv.Itoa(k.Year) }

// Record is the cached holiday list for one country and year.
type Record struct {
	CountryCode string    `json:"countryCode"`
	Year        int       `json:"year"`
	Holidays    []Holiday `json:"holidays"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Key returns the lookup key of the record.
func (r Record) Key() Key { return Key{CountryCode: r.CountryCode, Year: r.Year} }

// Fresh reports whether the record is younger than ttl at now.
func (r Record) Fresh(now time.Time, ttl time.Duration) bool {
	if r.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(r.FetchedAt) < ttl
}

// Store persists cache records. Upsert replaces the whole record.
type Store interface {
	Find(ctx context.Context, key Key) (Record, error)
	Upsert(ctx context.Context, rec Record) error
}

// Provider fetches holidays from an authoritative source.
type Provider interface {
	Name() string
	Holidays(ctx context.Context, countryCode string, year int) ([]Holiday, error)
}

// SourcedProvider is implemented by providers that delegate to others and can
// report which one actually answered.
type SourcedProvider interface {
	Provider
	HolidaysWithSource(ctx context.Context, countryCode string, year int) ([]Holiday, string, error)
}

func fetch(ctx context.Context, p Provider, code string, year int) ([]Holiday, string, error) {
	if sp, ok := p.(SourcedProvider); ok {
		return sp.HolidaysWithSource(ctx, code, year)
	}
	hs, err := p.Holidays(ctx, code, year)
	return hs, p.Name(), err
}

// NormalizeCountry upper-cases and validates an ISO 3166-1 alpha-2 code.
func NormalizeCountry(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return DefaultCountry, nil
	}
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidCountry, raw)
	}
	return code, nil
}

// ParseYear parses a year query value; empty means the year of now.
func ParseYear(raw string, now time.Time) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, raw)
	}
	if err := validateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

// Sort orders holidays by date, keeping the relative order of equal dates.
func Sort(hs []Holiday) {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date < hs[j].Date })
}
