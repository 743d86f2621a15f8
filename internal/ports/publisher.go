package ports

import (
	"context"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

// StatePublisher pushes the derived climate state to the host automation
// platform. Publication is best-effort: the bridge keeps serving its own
// API when the host is down.
type StatePublisher interface {
	PublishState(ctx context.Context, state model.ClimateState) error
	IsConfigured() bool
}
