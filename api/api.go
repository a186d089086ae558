// Package api exposes the holiday service and calendar grids over HTTP.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/adeilh/vacation/calendar"
	"github.com/adeilh/vacation/holiday"
	"github.com/adeilh/vacation/httpx"
)

// Handler serves the HTTP endpoints.
type Handler struct {
	svc       *holiday.Service
	countries []Country
	logger    *slog.Logger
}

type Option func(*Handler)

// WithCountries replaces the country picker list.
func WithCountries(cs []Country) Option {
	return func(h *Handler) {
		if len(cs) > 0 {
			h.countries = append([]Country(nil), cs...)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New builds a Handler around svc.
func New(svc *holiday.Service, opts ...Option) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("api: holiday service is required")
	}
	h := &Handler{svc: svc, countries: DefaultCountries, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Register mounts the routes; it satisfies httpx.RouteRegistrar.
func (h *Handler) Register(a *httpx.App) {
	httpx.NewRouter(a, "/api").
		GET("/holidays", h.getHolidays).
		POST("/holidays/custom", h.addCustom).
		GET("/calendar", h.getCalendar).
		GET("/countries", h.getCountries)
	a.GET("/healthz", h.health)
}

func (h *Handler) getHolidays(c httpx.Context) error {
	year, err := holiday.ParseYear(c.QueryParam("year"), h.svc.Now())
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.svc.Holidays(c.Request().Context(), c.QueryParam("country"), year)
	if err != nil {
		return h.fail(c, err)
	}

	body, err := json.Marshal(res)
	if err != nil {
		return h.fail(c, err)
	}
	tag, err := etag(res.Holidays)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set("ETag", tag)
	if matchesETag(c.Request().Header.Get("If-None-Match"), tag) {
		return c.NoContent(httpx.StatusNotModified)
	}
	return c.JSONBlob(httpx.StatusOK, body)
}

// etag hashes the holiday list only, so a cache hit and the fetch that filled
// it carry the same tag.
func etag(hs []holiday.Holiday) (string, error) {
	raw, err := json.Marshal(hs)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(raw)
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}

// yearValue accepts both 2025 and "2025".
type yearValue int

func (y *yearValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return holiday.ErrInvalidYear
	}
	*y = yearValue(n)
	return nil
}

type customRequest struct {
	CountryCode string           `json:"countryCode"`
	Year        yearValue        `json:"year"`
	Holiday     *holiday.Holiday `json:"holiday"`
}

func (h *Handler) addCustom(c httpx.Context) error {
	var req customRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		if errors.Is(err, holiday.ErrInvalidYear) {
			return h.fail(c, err)
		}
		return httpx.HTTPError(httpx.StatusBadRequest, "invalid JSON body")
	}
	if req.Holiday == nil {
		return h.fail(c, holiday.ErrMissingFields)
	}
	if err := h.svc.AddCustom(c.Request().Context(), req.CountryCode, int(req.Year), *req.Holiday); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(httpx.StatusOK, map[string]bool{"ok": true})
}

type calendarResponse struct {
	Country string `json:"country"`
	Source  string `json:"source"`
	calendar.Page
}

func (h *Handler) getCalendar(c httpx.Context) error {
	view, err := calendar.ParseView(c.QueryParam("view"))
	if err != nil {
		return httpx.HTTPError(httpx.StatusBadRequest, err.Error())
	}
	date := h.svc.Now().UTC()
	if raw := c.QueryParam("date"); raw != "" {
		date, err = time.Parse(holiday.DateLayout, raw)
		if err != nil {
			return h.fail(c, holiday.ErrInvalidDate)
		}
	}
	country, err := holiday.NormalizeCountry(c.QueryParam("country"))
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.svc.Holidays(c.Request().Context(), country, date.Year())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(httpx.StatusOK, calendarResponse{
		Country: country,
		Source:  res.Source,
		Page:    calendar.NewPage(view, date, res.Holidays),
	})
}

func (h *Handler) getCountries(c httpx.Context) error {
	return c.JSON(httpx.StatusOK, h.countries)
}

func (h *Handler) health(c httpx.Context) error {
	return c.JSON(httpx.StatusOK, map[string]string{"status": "ok"})
}

// fail maps domain errors to HTTP errors. Unexpected errors are logged and
// hidden behind a generic message. A request whose own context ended is not a
// server fault and is reported by how it ended.
func (h *Handler) fail(c httpx.Context, err error) error {
	switch ctxErr := c.Request().Context().Err(); {
	case errors.Is(ctxErr, context.Canceled):
		h.logger.Debug("client went away", slog.String("uri", c.Request().RequestURI), slog.Any("error", err))
		return httpx.HTTPError(httpx.StatusClientClosedRequest, "client closed request")
	case errors.Is(ctxErr, context.DeadlineExceeded):
		h.logger.Warn("request deadline exceeded", slog.String("uri", c.Request().RequestURI), slog.Any("error", err))
		return httpx.HTTPError(httpx.StatusGatewayTimeout, "request timed out")
	}
	switch {
	case errors.Is(err, holiday.ErrMissingFields):
		return httpx.HTTPError(httpx.StatusBadRequest, holiday.ErrMissingFields.Error())
	case errors.Is(err, holiday.ErrInvalidCountry),
		errors.Is(err, holiday.ErrInvalidYear),
		errors.Is(err, holiday.ErrInvalidDate):
		return httpx.HTTPError(httpx.StatusBadRequest, err.Error())
	case errors.Is(err, holiday.ErrProvidersExhausted):
		h.logger.Warn("holiday providers failed", slog.String("uri", c.Request().RequestURI), slog.Any("error", err))
		return httpx.HTTPError(httpx.StatusBadGateway, "failed to fetch holidays")
	case errors.Is(err, holiday.ErrUnsupportedCountry):
		return httpx.HTTPError(httpx.StatusNotFound, err.Error())
	}
	h.logger.Error("request failed", slog.String("uri", c.Request().RequestURI), slog.Any("error", err))
	return httpx.HTTPError(httpx.StatusInternalError, "internal server error")
}
