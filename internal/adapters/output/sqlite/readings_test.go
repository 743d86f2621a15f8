package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

func openStore(t *testing.T) *ReadingStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "readings.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReadingStore_RecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	target := 22.0
	for i := 0; i < 5; i++ {
		err := store.Record(ctx, model.Reading{
			Time:          base.Add(time.Duration(i) * time.Minute),
			Temperature:   20.0 + float64(i)*0.1,
			TargetTemp:    &target,
			HeatingStatus: 66,
		})
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// newest first
	assert.Equal(t, base.Add(4*time.Minute), recent[0].Time)
	assert.InDelta(t, 20.4, recent[0].Temperature, 1e-9)
	require.NotNil(t, recent[0].TargetTemp)
	assert.Equal(t, 22.0, *recent[0].TargetTemp)
	assert.Equal(t, int64(66), recent[0].HeatingStatus)
}

func TestReadingStore_NullTarget(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.Record(ctx, model.Reading{
		Time:          time.Now().UTC(),
		Temperature:   19.5,
		HeatingStatus: 0,
	})
	require.NoError(t, err)

	recent, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Nil(t, recent[0].TargetTemp)
}

func TestReadingStore_Prune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		err := store.Record(ctx, model.Reading{
			Time:        base.Add(time.Duration(i) * time.Hour),
			Temperature: 20,
		})
		require.NoError(t, err)
	}

	pruned, err := store.Prune(ctx, base.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(5), pruned)

	recent, err := store.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}
