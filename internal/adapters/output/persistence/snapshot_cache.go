// Package persistence stores the last known device snapshot on disk so the
// bridge serves state across restarts while the device is unreachable.
package persistence

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

type JSONSnapshotCache struct {
	filepath string
	mu       sync.RWMutex
}

func NewJSONSnapshotCache(filepath string) *JSONSnapshotCache {
	return &JSONSnapshotCache{filepath: filepath}
}

// Load reads the cached snapshot. A missing file is not an error: it yields
// an empty snapshot, the same as a bridge that never saw the device.
func (r *JSONSnapshotCache) Load(ctx context.Context) (model.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Snapshot{}, nil
		}
		return nil, err
	}

	var raw map[string]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	snap := make(model.Snapshot, len(raw))
	for k, v := range raw {
		snap[model.Field(k)] = v
	}
	return snap, nil
}

func (r *JSONSnapshotCache) Save(ctx context.Context, s model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := make(map[string]int64, len(s))
	for k, v := range s {
		raw[string(k)] = v
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.filepath, data, 0644)
}
