package local

import (
	"context"
	"testing"

	"github.com/rickar/cal/v2/us"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeilh/vacation/holiday"
)

func TestUSHolidays2025(t *testing.T) {
	p := New()
	hs, err := p.Holidays(context.Background(), "US", 2025)
	require.NoError(t, err)
	require.Len(t, hs, 9)

	byDate := map[string]string{}
	for _, h := range hs {
		byDate[h.Date] = h.Name
	}
	assert.Contains(t, byDate, "2025-01-01")
	assert.Contains(t, byDate, "2025-07-04")
	assert.Contains(t, byDate, "2025-11-27")
	assert.Contains(t, byDate, "2025-12-25")
	assert.Equal(t, "2025-01-01", hs[0].Date)
}

func TestObservedDateIsUsed(t *testing.T) {
	// Independence Day 2026 falls on a Saturday and is observed on Friday.
	p := New()
	hs, err := p.Holidays(context.Background(), "US", 2026)
	require.NoError(t, err)

	var dates []string
	for _, h := range hs {
		dates = append(dates, h.Date)
	}
	assert.Contains(t, dates, "2026-07-03")
	assert.NotContains(t, dates, "2026-07-04")
}

func TestUnsupportedCountry(t *testing.T) {
	_, err := New().Holidays(context.Background(), "IN", 2025)
	assert.ErrorIs(t, err, holiday.ErrUnsupportedCountry)
}

func TestRegister(t *testing.T) {
	p := New()
	p.Register("PR", us.NewYear, nil, us.ChristmasDay)
	assert.Equal(t, []string{"PR", "US"}, p.Countries())

	hs, err := p.Holidays(context.Background(), "PR", 2025)
	require.NoError(t, err)
	assert.Len(t, hs, 2)
}

func TestObservedDateAcrossYearBoundary(t *testing.T) {
	// New Year 2022 falls on a Saturday and is observed on Friday 2021-12-31.
	p := New()
	ctx := context.Background()

	dates := func(year int) map[string]string {
		hs, err := p.Holidays(ctx, "US", year)
		require.NoError(t, err)
		out := map[string]string{}
		for _, h := range hs {
			out[h.Date] = h.Name
		}
		return out
	}

	y2021 := dates(2021)
	assert.Contains(t, y2021, "2021-01-01")
	assert.Contains(t, y2021, "2021-12-31")
	assert.Equal(t, y2021["2021-01-01"], y2021["2021-12-31"])
	assert.Len(t, y2021, 10)

	y2022 := dates(2022)
	assert.NotContains(t, y2022, "2021-12-31")
	assert.NotContains(t, y2022, "2022-01-01")
	assert.Len(t, y2022, 8)
}

func TestRegisterNormalizesCode(t *testing.T) {
	p := New()
	p.Register(" gb ", us.ChristmasDay)
	p.Register("", us.NewYear)
	assert.Equal(t, []string{"GB", "US"}, p.Countries())

	hs, err := p.Holidays(context.Background(), "GB", 2025)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "2025-12-25", hs[0].Date)
}
