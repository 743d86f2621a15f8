package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

func TestJSONSnapshotCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	cache := NewJSONSnapshotCache(path)

	snap := model.Snapshot{
		model.FieldPower:            1,
		model.FieldMode:             3,
		model.FieldHeatingIntensity: 66,
		model.FieldHeatingStatus:    -16,
		model.FieldTemperature:      213,
	}

	err := cache.Save(context.Background(), snap)
	assert.NoError(t, err)

	loaded, err := cache.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestJSONSnapshotCache_MissingFile(t *testing.T) {
	cache := NewJSONSnapshotCache(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := cache.Load(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestJSONSnapshotCache_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	assert.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	cache := NewJSONSnapshotCache(path)
	_, err := cache.Load(context.Background())
	assert.Error(t, err)
}
