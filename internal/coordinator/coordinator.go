// Package coordinator drives snapshot updates from the device into the
// heater service, using either CoAP observe pushes or periodic polling, and
// owns the reconnect policy for broken sessions.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
	"github.com/mrverrall/philips-heater-coap/internal/domain/service"
	"github.com/mrverrall/philips-heater-coap/internal/ports"
)

// UpdateMethod selects how snapshots are obtained.
type UpdateMethod string

const (
	MethodObserve UpdateMethod = "observe"
	MethodPolling UpdateMethod = "polling"
)

const (
	initialRetryDelay = 5 * time.Second
	maxRetryDelay     = 5 * time.Minute

	// consecutive poll failures before the session is rebuilt
	pollFailureThreshold = 3
)

type Coordinator struct {
	log       *slog.Logger
	transport ports.DeviceTransport
	heater    *service.HeaterService
	cache     ports.SnapshotCache

	method       UpdateMethod
	scanInterval time.Duration
	opTimeout    time.Duration
}

func New(
	log *slog.Logger,
	transport ports.DeviceTransport,
	heater *service.HeaterService,
	cache ports.SnapshotCache,
	method UpdateMethod,
	scanInterval time.Duration,
	opTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		log:          log,
		transport:    transport,
		heater:       heater,
		cache:        cache,
		method:       method,
		scanInterval: scanInterval,
		opTimeout:    opTimeout,
	}
}

// Run restores the cached snapshot, performs an initial status fetch and
// then keeps the service updated until ctx is cancelled. Startup never
// fails on an unreachable device: the bridge serves cached state in
// degraded mode while the reconnect loop keeps trying.
func (c *Coordinator) Run(ctx context.Context) error {
	c.restoreCache(ctx)

	if snap, err := c.fetchStatus(ctx); err != nil {
		c.log.Warn("initial status fetch failed, serving cached state", "err", err)
	} else {
		c.apply(ctx, snap)
	}

	if c.method == MethodPolling {
		return c.runPolling(ctx)
	}
	return c.runObserve(ctx)
}

func (c *Coordinator) runObserve(ctx context.Context) error {
	retry := initialRetryDelay
	for {
		c.log.Debug("starting observe session")
		gotUpdate, err := c.observeSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if gotUpdate {
			retry = initialRetryDelay
		}
		if err != nil {
			c.log.Error("observe session ended", "err", err, "retry_in", retry)
		} else {
			c.log.Warn("observe session ended without error, reconnecting", "retry_in", retry)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
		if retry *= 2; retry > maxRetryDelay {
			retry = maxRetryDelay
		}

		reconnectCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
		err = c.transport.Reconnect(reconnectCtx)
		cancel()
		if err != nil {
			c.log.Error("reconnect failed", "err", err)
		} else {
			c.log.Info("reconnected to device")
		}
	}
}

// observeSession consumes one observe stream until it breaks. It reports
// whether at least one snapshot arrived, so the caller can reset backoff.
func (c *Coordinator) observeSession(ctx context.Context) (bool, error) {
	snapshots := make(chan model.Snapshot)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.transport.Observe(ctx, snapshots)
	}()

	gotUpdate := false
	for {
		select {
		case <-ctx.Done():
			<-errCh
			return gotUpdate, ctx.Err()
		case snap, ok := <-snapshots:
			if !ok {
				return gotUpdate, <-errCh
			}
			gotUpdate = true
			c.apply(ctx, snap)
		}
	}
}

func (c *Coordinator) runPolling(ctx context.Context) error {
	failures := 0
	ticker := time.NewTicker(c.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		snap, err := c.fetchStatus(ctx)
		if err != nil {
			failures++
			c.log.Error("poll failed", "err", err, "consecutive", failures)
			if failures >= pollFailureThreshold {
				reconnectCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
				rerr := c.transport.Reconnect(reconnectCtx)
				cancel()
				if rerr != nil {
					c.log.Error("reconnect failed", "err", rerr)
				} else {
					c.log.Info("reconnected to device")
					failures = 0
				}
			}
			continue
		}
		failures = 0
		c.apply(ctx, snap)
	}
}

func (c *Coordinator) fetchStatus(ctx context.Context) (model.Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.transport.Status(fetchCtx)
}

func (c *Coordinator) apply(ctx context.Context, snap model.Snapshot) {
	c.heater.ApplySnapshot(ctx, snap, false)
	if c.cache == nil {
		return
	}
	if err := c.cache.Save(ctx, c.heater.Snapshot()); err != nil {
		c.log.Error("failed to cache snapshot", "err", err)
	}
}

func (c *Coordinator) restoreCache(ctx context.Context) {
	if c.cache == nil {
		return
	}
	snap, err := c.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.log.Warn("failed to restore cached snapshot", "err", err)
		}
		return
	}
	if len(snap) == 0 {
		return
	}
	c.log.Info("restored cached snapshot", "fields", len(snap))
	c.heater.ApplySnapshot(ctx, snap, false)
}
