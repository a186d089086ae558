// Package nager fetches public holidays from the Nager.Date REST API.
package nager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/adeilh/vacation/holiday"
	"github.com/adeilh/vacation/httpx"
)

const (
	// DefaultBaseURL is the public Nager.Date endpoint.
	DefaultBaseURL = "https://date.nager.at"

	holidaysPath  = "/api/v3/PublicHolidays/{year}/{country}"
	countriesPath = "/api/v3/AvailableCountries"
	userAgent     = "vacation-holiday-calendar"
)

// Name is reported as the source of holidays served by this provider.
const Name = "nager"

type publicHoliday struct {
	Date        string   `json:"date"`
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Global      bool     `json:"global"`
	Types       []string `json:"types"`
}

// Country is an entry of the AvailableCountries listing.
type Country struct {
	CountryCode string `json:"countryCode"`
	Name        string `json:"name"`
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client implements holiday.Provider.
type Client struct {
	http *httpx.Client
}

func New(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{http: httpx.NewClient(
		httpx.WithBaseURL(base),
		httpx.WithClientTimeout(opts.Timeout),
		httpx.WithRetries(opts.Retries, 0),
		httpx.WithHeaders(map[string]string{"User-Agent": userAgent}),
	)}
}

func (c *Client) Name() string { return Name }

func (c *Client) Holidays(ctx context.Context, countryCode string, year int) ([]holiday.Holiday, error) {
	var out []publicHoliday
	resp, err := c.http.Get(ctx, holidaysPath, &out, httpx.WithPathParams(map[string]string{
		"year":    strconv.Itoa(year),
		"country": countryCode,
	}))
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("nager: %s: %w", countryCode, holiday.ErrUnsupportedCountry)
		}
		return nil, fmt.Errorf("nager: fetch %s/%d: %w", countryCode, year, err)
	}
	// Nager answers 204 for countries it knows nothing about.
	if resp.StatusCode() == http.StatusNoContent {
		return nil, fmt.Errorf("nager: %s: %w", countryCode, holiday.ErrUnsupportedCountry)
	}

	hs := make([]holiday.Holiday, 0, len(out))
	for _, ph := range out {
		hs = append(hs, holiday.Holiday{
			Date:      ph.Date,
			LocalName: ph.LocalName,
			Name:      ph.Name,
			Types:     ph.Types,
		})
	}
	return hs, nil
}

// Countries lists the countries Nager.Date has data for.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var out []Country
	if _, err := c.http.Get(ctx, countriesPath, &out); err != nil {
		return nil, fmt.Errorf("nager: countries: %w", err)
	}
	return out, nil
}
