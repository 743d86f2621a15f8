package ports

import (
	"context"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

// DeviceTransport is the boundary to the external CoAP client. The
// implementation owns the encrypted session, observe subscription and
// request encoding; this repository never touches the wire itself.
type DeviceTransport interface {
	// Status fetches the current full snapshot.
	Status(ctx context.Context) (model.Snapshot, error)

	// Observe streams snapshots pushed by the device until ctx is
	// cancelled or the session breaks, closing the channel before it
	// returns. Each received snapshot may be full or partial; callers
	// merge partials into their last known state.
	Observe(ctx context.Context, snapshots chan<- model.Snapshot) error

	// SetControlValues sends a command to the device.
	SetControlValues(ctx context.Context, cmd model.Command) error

	// Reconnect tears down and re-establishes the session.
	Reconnect(ctx context.Context) error

	// Shutdown releases the session.
	Shutdown(ctx context.Context) error
}
