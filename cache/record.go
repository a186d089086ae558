package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adeilh/vacation/holiday"
)

const keyPrefix = "holidays:"

// RecordStore keeps holiday records as JSON documents in a KV Store.
type RecordStore struct {
	kv        Store
	retention time.Duration
}

// NewRecordStore wraps kv. retention bounds how long the backend keeps a
// record; freshness is still decided by the record's fetch time.
func NewRecordStore(kv Store, retention time.Duration) *RecordStore {
	return &RecordStore{kv: kv, retention: retention}
}

// RecordKey returns the KV key for a holiday record.
func RecordKey(k holiday.Key) string {
	return keyPrefix + k.CountryCode + ":" + strconv.Itoa(k.Year)
}

func (s *RecordStore) Find(ctx context.Context, key holiday.Key) (holiday.Record, error) {
	raw, err := s.kv.Get(ctx, RecordKey(key))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return holiday.Record{}, holiday.ErrNotFound
		}
		return holiday.Record{}, fmt.Errorf("cache: get %s: %w", key, err)
	}
	var rec holiday.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return holiday.Record{}, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return rec, nil
}

func (s *RecordStore) Upsert(ctx context.Context, rec holiday.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", rec.Key(), err)
	}
	if err := s.kv.Set(ctx, RecordKey(rec.Key()), raw, s.retention); err != nil {
		return fmt.Errorf("cache: set %s: %w", rec.Key(), err)
	}
	return nil
}
