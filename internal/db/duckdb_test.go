package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-quake/internal/quake"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func markers() []quake.Marker {
	return []quake.Marker{
		{ID: "a", Place: "A", Magnitude: 0.7, MagnitudeKnown: true, Time: time.UnixMilli(1760000000000), Lon: -120, Lat: 35},
		{ID: "b", Place: "B", Magnitude: 2.2, MagnitudeKnown: true, Lon: -118, Lat: 34},
		{ID: "c", Place: "C", Magnitude: 2.9, MagnitudeKnown: true, Lon: 140, Lat: 38},
		{ID: "d", Place: "D", Magnitude: 6.1, MagnitudeKnown: true, Lon: 178, Lat: -18},
	}
}

func TestBucketCounts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, markers()))

	counts, err := s.BucketCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 6)

	got := map[string]int64{}
	for _, c := range counts {
		got[c.Label] = c.Count
	}
	assert.Equal(t, map[string]int64{"0-1": 1, "1-2": 0, "2-3": 2, "3-4": 0, "4-5": 0, "5+": 1}, got)
	assert.Equal(t, "orangered", counts[5].Color)
}

func TestReplaceDropsPreviousLoad(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, markers()))
	require.NoError(t, s.Replace(ctx, markers()[:1]))

	res, err := s.Query(ctx, "SELECT count(*) AS n FROM quakes")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, 1, res.Rows[0]["n"])
}

func TestTables(t *testing.T) {
	tables, err := openStore(t).Tables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "quakes")
}

func TestQueryReadOnly(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, q := range []string{
		"DELETE FROM quakes",
		"DROP TABLE quakes",
		"SELECT 1; DROP TABLE quakes",
		"insert into quakes (id) values ('x')",
	} {
		_, err := s.Query(ctx, q)
		assert.ErrorIs(t, err, ErrReadOnly, q)
	}

	res, err := s.Query(ctx, "  select 1 as ok;")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, res.Columns)
}
