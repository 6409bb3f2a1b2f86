package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	require.NoError(t, err, "opening database")
	defer db.Close()

	count := func(table string) int {
		t.Helper()
		n, err := db.single("select count(1) from " + table)
		require.NoError(t, err, "count %s", table)
		return n
	}

	assert.NoError(t, db.RecordTemperature("foo", 42.1234), "record temperature")
	assert.Equal(t, 1, count("temperature"))

	assert.NoError(t, db.RecordSatelliteStatus(1, 30, 1, 2), "record satellite status")
	assert.Equal(t, 1, count("satellite"))

	gps := time.Date(2018, 3, 27, 23, 29, 5, 0, time.UTC)
	assert.NoError(t, db.RecordTiming(gps, 250*time.Millisecond, 3), "record timing")
	assert.Equal(t, 1, count("timing"))
	offset, err := db.single("select offset_ns from timing")
	require.NoError(t, err)
	assert.Equal(t, int((250 * time.Millisecond).Nanoseconds()), offset)

	assert.NoError(t, db.RecordPacketCounts(map[string]int{"8f/ab": 60, "5c": 12}), "record packet counts")
	assert.Equal(t, 2, count("packet"))
	n, err := db.single("select count from packet where id = ?", "8f/ab")
	require.NoError(t, err)
	assert.Equal(t, 60, n)
}

func TestSingleRejectsManyRows(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RecordTemperature("a", 1))
	require.NoError(t, db.RecordTemperature("b", 2))
	_, err = db.single("select temperature from temperature")
	assert.Error(t, err)
}
