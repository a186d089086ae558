package api_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeilh/vacation/api"
	"github.com/adeilh/vacation/cache"
	"github.com/adeilh/vacation/cache/memory"
	"github.com/adeilh/vacation/holiday"
	"github.com/adeilh/vacation/httpx"
	"github.com/adeilh/vacation/provider"
)

type fakeProvider struct {
	mu       sync.Mutex
	name     string
	holidays map[string][]holiday.Holiday
	err      error
	calls    int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Holidays(_ context.Context, country string, _ int) ([]holiday.Holiday, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	hs, ok := p.holidays[country]
	if !ok {
		return nil, holiday.ErrUnsupportedCountry
	}
	return append([]holiday.Holiday(nil), hs...), nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func setup(t *testing.T, p holiday.Provider) (*httpx.Client, *cache.RecordStore) {
	t.Helper()
	ts, store := serve(t, p)
	return ts.Client(), store
}

func serve(t *testing.T, p holiday.Provider) (*httpx.TestServer, *cache.RecordStore) {
	t.Helper()
	kv := memory.NewStore(0)
	t.Cleanup(func() { _ = kv.Close() })
	store := cache.NewRecordStore(kv, 0)

	svc, err := holiday.NewService(store, p,
		holiday.WithClock(func() time.Time { return now }),
		holiday.WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	h, err := api.New(svc, api.WithLogger(quietLogger()))
	require.NoError(t, err)

	server := httpx.NewServer(httpx.WithLogger(quietLogger()), httpx.WithCORS(nil))
	server.RegisterRoutes(h.Register)
	ts := httpx.NewTestServer(server.Handler())
	t.Cleanup(ts.Close)

	return ts, store
}

func india() *fakeProvider {
	return &fakeProvider{
		name: "nager",
		holidays: map[string][]holiday.Holiday{
			"IN": {
				{Date: "2025-08-15", Name: "Independence Day"},
				{Date: "2025-01-26", Name: "Republic Day"},
			},
		},
	}
}

type holidaysBody struct {
	Source   string            `json:"source"`
	Holidays []holiday.Holiday `json:"holidays"`
}

func TestGetHolidaysFetchesThenServesCache(t *testing.T) {
	p := india()
	client, _ := setup(t, p)
	ctx := context.Background()

	var first holidaysBody
	resp, err := client.Get(ctx, "/api/holidays", &first, httpx.WithQuery(map[string]string{"year": "2025"}))
	require.NoError(t, err)
	assert.Equal(t, httpx.StatusOK, resp.StatusCode())
	assert.Equal(t, "nager", first.Source)
	require.Len(t, first.Holidays, 2)
	assert.Equal(t, "2025-01-26", first.Holidays[0].Date)
	tag := resp.Header().Get("ETag")
	assert.NotEmpty(t, tag)

	var second holidaysBody
	resp, err = client.Get(ctx, "/api/holidays", &second, httpx.WithQuery(map[string]string{"country": "in", "year": "2025"}))
	require.NoError(t, err)
	assert.Equal(t, holiday.SourceCache, second.Source)
	assert.Equal(t, first.Holidays, second.Holidays)
	assert.Equal(t, tag, resp.Header().Get("ETag"))
	assert.Equal(t, 1, p.Calls())
}

func TestGetHolidaysDefaultsToCurrentYear(t *testing.T) {
	p := india()
	client, store := setup(t, p)

	_, err := client.Get(context.Background(), "/api/holidays", nil)
	require.NoError(t, err)

	_, err = store.Find(context.Background(), holiday.Key{CountryCode: "IN", Year: now.Year()})
	assert.NoError(t, err)
}

func TestGetHolidaysNotModified(t *testing.T) {
	ts, _ := serve(t, india())
	ctx := context.Background()
	query := httpx.WithQuery(map[string]string{"year": "2025"})

	resp, err := ts.Client().Get(ctx, "/api/holidays", nil, query)
	require.NoError(t, err)
	tag := resp.Header().Get("ETag")

	conditional := ts.Client(httpx.WithHeaders(map[string]string{"If-None-Match": `"stale", ` + tag}))
	resp, err = conditional.Get(ctx, "/api/holidays", nil, query)
	require.NoError(t, err)
	assert.Equal(t, httpx.StatusNotModified, resp.StatusCode())
	assert.Empty(t, resp.Body())
}

func TestGetHolidaysErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider holiday.Provider
		query    map[string]string
		want     int
	}{
		{"bad country", india(), map[string]string{"country": "IND"}, httpx.StatusBadRequest},
		{"bad year", india(), map[string]string{"year": "20x5"}, httpx.StatusBadRequest},
		{"year out of range", india(), map[string]string{"year": "1066"}, httpx.StatusBadRequest},
		{"unsupported country", india(), map[string]string{"country": "ZZ"}, httpx.StatusNotFound},
		{
			"providers down",
			provider.Fallback(&fakeProvider{name: "nager", err: errors.New("connection refused")}).WithLogger(quietLogger()),
			nil,
			httpx.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setup(t, tt.provider)
			resp, err := client.Get(context.Background(), "/api/holidays", nil, httpx.WithQuery(tt.query))
			require.Error(t, err)
			var se *httpx.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.want, resp.StatusCode())
			assert.Contains(t, se.Body, `"error"`)
		})
	}
}

func TestGetHolidaysEndedRequestContext(t *testing.T) {
	cancelled := func() (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx, cancel
	}
	expired := func() (context.Context, context.CancelFunc) {
		return context.WithDeadline(context.Background(), now)
	}

	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		want    int
		logLine string
	}{
		{"client went away", cancelled, httpx.StatusClientClosedRequest, "level=DEBUG msg=\"client went away\""},
		{"deadline exceeded", expired, httpx.StatusGatewayTimeout, "level=WARN msg=\"request deadline exceeded\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

			kv := memory.NewStore(0)
			t.Cleanup(func() { _ = kv.Close() })
			svc, err := holiday.NewService(cache.NewRecordStore(kv, 0), provider.Fallback(india()).WithLogger(logger),
				holiday.WithClock(func() time.Time { return now }),
				holiday.WithLogger(logger),
			)
			require.NoError(t, err)
			h, err := api.New(svc, api.WithLogger(logger))
			require.NoError(t, err)
			server := httpx.NewServer(httpx.WithLogger(logger))
			server.RegisterRoutes(h.Register)

			ctx, cancel := tt.ctx()
			defer cancel()
			req := httptest.NewRequest(http.MethodGet, "/api/holidays?year=2025", nil).WithContext(ctx)
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, logs.String(), tt.logLine)
			assert.NotContains(t, logs.String(), "level=ERROR")
			assert.NotContains(t, rec.Body.String(), "internal server error")
		})
	}
}

func TestAddCustomHoliday(t *testing.T) {
	p := india()
	client, store := setup(t, p)
	ctx := context.Background()

	var ok map[string]bool
	_, err := client.Post(ctx, "/api/holidays/custom", map[string]any{
		"countryCode": "IN",
		"year":        "2025",
		"holiday":     map[string]string{"date": "2025-03-14", "name": "Office Holi"},
	}, &ok)
	require.NoError(t, err)
	assert.True(t, ok["ok"])

	rec, err := store.Find(ctx, holiday.Key{CountryCode: "IN", Year: 2025})
	require.NoError(t, err)
	require.Len(t, rec.Holidays, 1)
	assert.Equal(t, "Office Holi", rec.Holidays[0].Name)
	assert.True(t, now.Equal(rec.FetchedAt))

	var body holidaysBody
	_, err = client.Get(ctx, "/api/holidays", &body, httpx.WithQuery(map[string]string{"year": "2025"}))
	require.NoError(t, err)
	assert.Equal(t, holiday.SourceCache, body.Source)
	assert.Zero(t, p.Calls())
}

func TestAddCustomHolidayValidation(t *testing.T) {
	client, _ := setup(t, india())
	ctx := context.Background()

	for name, body := range map[string]any{
		"no holiday": map[string]any{"countryCode": "IN", "year": 2025},
		"no year":    map[string]any{"countryCode": "IN", "holiday": map[string]string{"date": "2025-01-01"}},
		"no country": map[string]any{"year": 2025, "holiday": map[string]string{"date": "2025-01-01"}},
		"no date":    map[string]any{"countryCode": "IN", "year": 2025, "holiday": map[string]string{"name": "x"}},
	} {
		resp, err := client.Post(ctx, "/api/holidays/custom", body, nil)
		require.Error(t, err, name)
		assert.Equal(t, httpx.StatusBadRequest, resp.StatusCode(), name)
		assert.Contains(t, resp.String(), "missing fields", name)
	}

	resp, err := client.Post(ctx, "/api/holidays/custom", map[string]any{
		"countryCode": "IN", "year": 2025, "holiday": map[string]string{"date": "14/03/2025"},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, httpx.StatusBadRequest, resp.StatusCode())
}

func TestGetCalendar(t *testing.T) {
	client, _ := setup(t, india())

	var page struct {
		Country string `json:"country"`
		Source  string `json:"source"`
		View    string `json:"view"`
		Title   string `json:"title"`
		Prev    string `json:"prev"`
		Next    string `json:"next"`
		Months  []struct {
			Title string `json:"title"`
			Weeks []struct {
				Holidays int `json:"holidays"`
				Days     []struct {
					Date    string `json:"date"`
					Color   string `json:"color"`
					Holiday string `json:"holiday"`
				} `json:"days"`
			} `json:"weeks"`
		} `json:"months"`
	}
	_, err := client.Get(context.Background(), "/api/calendar", &page,
		httpx.WithQuery(map[string]string{"date": "2025-08-15", "view": "quarter"}))
	require.NoError(t, err)

	assert.Equal(t, "IN", page.Country)
	assert.Equal(t, "Q3 2025", page.Title)
	assert.Equal(t, "2025-05-15", page.Prev)
	assert.Equal(t, "2025-11-15", page.Next)
	require.Len(t, page.Months, 3)
	assert.Equal(t, "August", page.Months[1].Title)

	// Aug 10 - 16 holds Independence Day on the Friday.
	week := page.Months[1].Weeks[2]
	assert.Equal(t, 1, week.Holidays)
	assert.Equal(t, "2025-08-15", week.Days[5].Date)
	assert.Equal(t, "Independence Day", week.Days[5].Holiday)
	assert.Equal(t, "#f0f0f0", week.Days[0].Color)
}

func TestGetCalendarRejectsBadInput(t *testing.T) {
	client, _ := setup(t, india())
	for _, q := range []map[string]string{
		{"view": "year"},
		{"date": "2025-13-01"},
		{"country": "1N"},
	} {
		resp, err := client.Get(context.Background(), "/api/calendar", nil, httpx.WithQuery(q))
		require.Error(t, err)
		assert.Equal(t, httpx.StatusBadRequest, resp.StatusCode(), "%v", q)
	}
}

func TestCountriesAndHealth(t *testing.T) {
	client, _ := setup(t, india())
	ctx := context.Background()

	var countries []api.Country
	_, err := client.Get(ctx, "/api/countries", &countries)
	require.NoError(t, err)
	assert.Equal(t, api.DefaultCountries, countries)

	var health map[string]string
	_, err = client.Get(ctx, "/healthz", &health)
	require.NoError(t, err)
	assert.Equal(t, "ok", health["status"])
}

func TestNewRequiresService(t *testing.T) {
	_, err := api.New(nil)
	assert.Error(t, err)
}

func TestCountriesFromCodes(t *testing.T) {
	got := api.Countries([]string{"in", "US", "", "XX1", "US", "KE"})
	assert.Equal(t, []api.Country{
		{Code: "IN", Name: "India"},
		{Code: "US", Name: "United States"},
		{Code: "KE", Name: "KE"},
	}, got)

	var codes []string
	for _, c := range api.DefaultCountries {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, api.DefaultCountries, api.Countries(codes))
}
