package holidaydb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = $1 AND b = $2", rebind(Postgres, "a = ? AND b = ?"))
	assert.Equal(t, "a = ? AND b = ?", rebind(SQLite, "a = ? AND b = ?"))
}

func TestScanTime(t *testing.T) {
	want := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, in := range []any{
		want,
		want.In(time.FixedZone("IST", 5*3600+1800)),
		"2025-03-04 05:06:07+00:00",
		[]byte("2025-03-04T05:06:07Z"),
		want.UnixMilli(),
	} {
		got, err := scanTime(in)
		require.NoError(t, err, "%v", in)
		assert.True(t, want.Equal(got), "%v -> %s", in, got)
	}
	_, err := scanTime(3.14)
	assert.Error(t, err)
	_, err = scanTime("yesterday")
	assert.Error(t, err)
}
