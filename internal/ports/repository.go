package ports

import (
	"context"
	"time"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

// SnapshotCache persists the last known snapshot so the bridge can serve
// state across restarts while the device is unreachable.
type SnapshotCache interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, s model.Snapshot) error
}

// ReadingStore records temperature history samples.
type ReadingStore interface {
	Record(ctx context.Context, r model.Reading) error
	Recent(ctx context.Context, limit int) ([]model.Reading, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}
