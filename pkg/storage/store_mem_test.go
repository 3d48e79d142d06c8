package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	generator "gensetgateway/pkg/generator/runtime"
)

func memResult(ts time.Time, voltage float64) *generator.ReadResult {
	return &generator.ReadResult{
		Timestamp:        ts,
		Values:           map[string]interface{}{"voltage": voltage},
		ConnectionStatus: generator.Connected,
	}
}

func TestMemTelemetryStoreNewestFirst(t *testing.T) {
	store := NewMemTelemetryStore(10)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(context.Background(), "gen-1", memResult(base.Add(time.Duration(i)*time.Second), float64(240+i))))
	}

	rows, err := store.Query(context.Background(), "gen-1", TelemetryQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, 244.0, rows[0].Values["voltage"])
	assert.Equal(t, 240.0, rows[4].Values["voltage"])
	assert.Equal(t, "connected", rows[0].ConnectionStatus)
}

func TestMemTelemetryStoreEvictsOldest(t *testing.T) {
	store := NewMemTelemetryStore(3)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(context.Background(), "gen-1", memResult(base.Add(time.Duration(i)*time.Second), float64(i))))
	}

	rows, err := store.Query(context.Background(), "gen-1", TelemetryQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4.0, rows[0].Values["voltage"])
	assert.Equal(t, 2.0, rows[2].Values["voltage"])
}

func TestMemTelemetryStoreWindowAndLimit(t *testing.T) {
	store := NewMemTelemetryStore(100)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(context.Background(), "gen-1", memResult(base.Add(time.Duration(i)*time.Minute), float64(i))))
	}

	rows, err := store.Query(context.Background(), "gen-1", TelemetryQuery{
		Start: base.Add(2 * time.Minute),
		End:   base.Add(7 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, 7.0, rows[0].Values["voltage"])
	assert.Equal(t, 2.0, rows[5].Values["voltage"])

	rows, err = store.Query(context.Background(), "gen-1", TelemetryQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 9.0, rows[0].Values["voltage"])
}

func TestMemTelemetryStoreProfileIsolation(t *testing.T) {
	store := NewMemTelemetryStore(10)
	now := time.Now().UTC()
	require.NoError(t, store.Append(context.Background(), "gen-1", memResult(now, 240)))

	rows, err := store.Query(context.Background(), "gen-2", TelemetryQuery{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemTelemetryStoreCopiesValues(t *testing.T) {
	store := NewMemTelemetryStore(10)
	result := memResult(time.Now().UTC(), 240)
	require.NoError(t, store.Append(context.Background(), "gen-1", result))

	// Later mutation of the source result must not reach the stored row.
	result.Values["voltage"] = 0.0

	rows, err := store.Query(context.Background(), "gen-1", TelemetryQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 240.0, rows[0].Values["voltage"])
}
