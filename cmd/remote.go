package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adeilh/vacation/holiday"
	"github.com/adeilh/vacation/httpx"
)

// serverURL switches holidays and custom from the local store to the HTTP API
// of a running server.
var serverURL string

const remoteTimeout = 15 * time.Second

func newRemote(base string) *httpx.Client {
	return httpx.NewClient(httpx.WithBaseURL(base), httpx.WithClientTimeout(remoteTimeout))
}

func remoteHolidays(ctx context.Context, c *httpx.Client, country, year string) (holiday.Result, error) {
	query := map[string]string{}
	if country != "" {
		query["country"] = country
	}
	if year != "" {
		query["year"] = year
	}
	var res holiday.Result
	if _, err := c.Get(ctx, "/api/holidays", &res, httpx.WithQuery(query)); err != nil {
		return holiday.Result{}, remoteError(err)
	}
	return res, nil
}

type customBody struct {
	CountryCode string          `json:"countryCode"`
	Year        int             `json:"year"`
	Holiday     holiday.Holiday `json:"holiday"`
}

func remoteAddCustom(ctx context.Context, c *httpx.Client, country string, year int, h holiday.Holiday) error {
	_, err := c.Post(ctx, "/api/holidays/custom", customBody{CountryCode: country, Year: year, Holiday: h}, nil)
	return remoteError(err)
}

// remoteError surfaces the server's {"error": msg} text.
func remoteError(err error) error {
	var se *httpx.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(se.Body), &body) == nil && body.Error != "" {
		return fmt.Errorf("server: %d %s", se.Code, body.Error)
	}
	return err
}
