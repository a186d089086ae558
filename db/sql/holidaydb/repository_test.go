package holidaydb_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeilh/vacation/db/sql/holidaydb"
	"github.com/adeilh/vacation/db/sql/sqlite"
	"github.com/adeilh/vacation/holiday"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, sqlite.Migrate(ctx, path))
	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepositoryUpsertAndFind(t *testing.T) {
	repo := holidaydb.NewRepository(openSQLite(t), holidaydb.SQLite)
	ctx := context.Background()
	key := holiday.Key{CountryCode: "IN", Year: 2025}

	_, err := repo.Find(ctx, key)
	require.ErrorIs(t, err, holiday.ErrNotFound)

	fetched := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	rec := holiday.Record{
		CountryCode: "IN",
		Year:        2025,
		Holidays: []holiday.Holiday{
			{Date: "2025-01-26", LocalName: "गणतंत्र दिवस", Name: "Republic Day", Types: []string{"Public"}},
		},
		FetchedAt: fetched,
	}
	require.NoError(t, repo.Upsert(ctx, rec))

	got, err := repo.Find(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, rec.Holidays, got.Holidays)
	assert.True(t, fetched.Equal(got.FetchedAt), "fetched_at = %s", got.FetchedAt)

	rec.Holidays = append(rec.Holidays, holiday.Holiday{Date: "2025-08-15", Name: "Independence Day"})
	rec.FetchedAt = fetched.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, rec))

	got, err = repo.Find(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got.Holidays, 2)
	assert.True(t, rec.FetchedAt.Equal(got.FetchedAt))
}

func TestRepositoryNilHolidaysStoredAsEmptyList(t *testing.T) {
	repo := holidaydb.NewRepository(openSQLite(t), holidaydb.SQLite)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, holiday.Record{CountryCode: "XK", Year: 2025, FetchedAt: time.Now()}))
	got, err := repo.Find(ctx, holiday.Key{CountryCode: "XK", Year: 2025})
	require.NoError(t, err)
	assert.NotNil(t, got.Holidays)
	assert.Empty(t, got.Holidays)
}

func TestRepositoryPurge(t *testing.T) {
	repo := holidaydb.NewRepository(openSQLite(t), holidaydb.SQLite)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, holiday.Record{CountryCode: "US", Year: 2024, FetchedAt: now.Add(-30 * 24 * time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, holiday.Record{CountryCode: "US", Year: 2025, FetchedAt: now}))

	n, err := repo.Purge(ctx, now.Add(-holiday.DefaultTTL))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Find(ctx, holiday.Key{CountryCode: "US", Year: 2024})
	assert.ErrorIs(t, err, holiday.ErrNotFound)
	_, err = repo.Find(ctx, holiday.Key{CountryCode: "US", Year: 2025})
	assert.NoError(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, sqlite.Migrate(ctx, path))
	require.NoError(t, sqlite.Migrate(ctx, path))
}

func TestServiceOverSQLite(t *testing.T) {
	repo := holidaydb.NewRepository(openSQLite(t), holidaydb.SQLite)
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	p := &countingProvider{hs: []holiday.Holiday{{Date: "2025-01-01", Name: "New Year"}}}
	svc, err := holiday.NewService(repo, p, holiday.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Holidays(ctx, "US", 2025)
	require.NoError(t, err)
	assert.Equal(t, "stub", first.Source)

	second, err := svc.Holidays(ctx, "US", 2025)
	require.NoError(t, err)
	assert.Equal(t, holiday.SourceCache, second.Source)
	assert.Equal(t, 1, p.calls)
}

type countingProvider struct {
	hs    []holiday.Holiday
	calls int
}

func (p *countingProvider) Name() string { return "stub" }

func (p *countingProvider) Holidays(context.Context, string, int) ([]holiday.Holiday, error) {
	p.calls++
	return p.hs, nil
}
