// Package holidaydb stores holiday cache records in a SQL table shared by the
// PostgreSQL and SQLite backends.
package holidaydb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adeilh/vacation/holiday"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

const (
	findQuery = `SELECT holidays, fetched_at FROM holiday_cache WHERE country_code = ? AND year = ?`

	upsertQuery = `INSERT INTO holiday_cache (country_code, year, holidays, fetched_at)
                   VALUES (?, ?, ?, ?)
                   ON CONFLICT (country_code, year)
                   DO UPDATE SET holidays = excluded.holidays, fetched_at = excluded.fetched_at`

	purgeQuery = `DELETE FROM holiday_cache WHERE fetched_at < ?`
)

// Repository implements holiday.Store on a holiday_cache table.
type Repository struct {
	db     *sql.DB
	find   string
	upsert string
	purge  string
}

// NewRepository wraps an existing *sql.DB connection.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{
		db:     db,
		find:   rebind(dialect, findQuery),
		upsert: rebind(dialect, upsertQuery),
		purge:  rebind(dialect, purgeQuery),
	}
}

func (r *Repository) Find(ctx context.Context, key holiday.Key) (holiday.Record, error) {
	var (
		raw       []byte
		fetchedAt any
	)
	err := r.db.QueryRowContext(ctx, r.find, key.CountryCode, key.Year).Scan(&raw, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return holiday.Record{}, holiday.ErrNotFound
		}
		return holiday.Record{}, fmt.Errorf("holidaydb: find %s: %w", key, err)
	}
	rec := holiday.Record{CountryCode: key.CountryCode, Year: key.Year}
	if err := json.Unmarshal(raw, &rec.Holidays); err != nil {
		return holiday.Record{}, fmt.Errorf("holidaydb: decode %s: %w", key, err)
	}
	if rec.FetchedAt, err = scanTime(fetchedAt); err != nil {
		return holiday.Record{}, fmt.Errorf("holidaydb: fetched_at %s: %w", key, err)
	}
	return rec, nil
}

func (r *Repository) Upsert(ctx context.Context, rec holiday.Record) error {
	hs := rec.Holidays
	if hs == nil {
		hs = []holiday.Holiday{}
	}
	raw, err := json.Marshal(hs)
	if err != nil {
		return fmt.Errorf("holidaydb: encode %s: %w", rec.Key(), err)
	}
	// lib/pq sends []byte as bytea, which jsonb rejects.
	if _, err := r.db.ExecContext(ctx, r.upsert, rec.CountryCode, rec.Year, string(raw), rec.FetchedAt.UTC()); err != nil {
		return fmt.Errorf("holidaydb: upsert %s: %w", rec.Key(), err)
	}
	return nil
}

// Purge deletes records fetched before cutoff and reports how many went away.
func (r *Repository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.purge, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("holidaydb: purge: %w", err)
	}
	return res.RowsAffected()
}

func rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// scanTime accepts the representations drivers use for timestamp columns.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	case nil:
		return time.Time{}, nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
