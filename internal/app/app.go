package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	httpapi "github.com/mrverrall/philips-heater-coap/internal/adapters/input/http"
	"github.com/mrverrall/philips-heater-coap/internal/adapters/output/airctrl"
	"github.com/mrverrall/philips-heater-coap/internal/adapters/output/homeassistant"
	"github.com/mrverrall/philips-heater-coap/internal/adapters/output/persistence"
	"github.com/mrverrall/philips-heater-coap/internal/adapters/output/sqlite"
	"github.com/mrverrall/philips-heater-coap/internal/config"
	"github.com/mrverrall/philips-heater-coap/internal/coordinator"
	"github.com/mrverrall/philips-heater-coap/internal/domain/service"
	"github.com/mrverrall/philips-heater-coap/internal/domain/translator"
	"github.com/mrverrall/philips-heater-coap/internal/ports"
)

const pruneInterval = time.Hour

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{log: log, cfg: cfg}
}

// Run wires the adapters to the heater service and keeps everything
// running until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting heater bridge",
		slog.String("host", a.cfg.Device.Host),
		slog.String("update_method", a.cfg.Device.UpdateMethod),
		slog.Duration("scan_interval", a.cfg.Device.ScanInterval),
	)

	cal, err := translator.NewCalibration(a.cfg.Device.TemperatureFormula)
	if err != nil {
		return fmt.Errorf("invalid temperature formula: %w", err)
	}

	transport := airctrl.NewClient(a.log, a.cfg.Device.AirctrlBinary, a.cfg.Device.Host)

	publisher := homeassistant.NewClient(a.cfg.HomeAssistant.EntityID, a.cfg.HomeAssistant.FriendlyName)
	if a.cfg.HomeAssistant.URL != "" && a.cfg.HomeAssistant.Token != "" {
		publisher.Configure(a.cfg.HomeAssistant.URL, a.cfg.HomeAssistant.Token)
		a.log.InfoContext(ctx, "publishing state to Home Assistant",
			slog.String("entity_id", a.cfg.HomeAssistant.EntityID))
	} else {
		a.log.InfoContext(ctx, "Home Assistant publishing disabled")
	}

	var readings *sqlite.ReadingStore
	if a.cfg.Storage.DBPath != "" {
		readings, err = sqlite.Open(ctx, a.cfg.Storage.DBPath, a.log)
		if err != nil {
			return fmt.Errorf("failed to open reading store: %w", err)
		}
		defer readings.Close()
	}

	var cache ports.SnapshotCache
	if a.cfg.Storage.CachePath != "" {
		cache = persistence.NewJSONSnapshotCache(a.cfg.Storage.CachePath)
	}

	// *sqlite.ReadingStore is typed nil when history is disabled; keep
	// the interface nil in that case
	var readingStore ports.ReadingStore
	if readings != nil {
		readingStore = readings
	}

	heater := service.NewHeaterService(a.log, transport, publisher, readingStore, cal)

	coord := coordinator.New(
		a.log,
		transport,
		heater,
		cache,
		coordinator.UpdateMethod(a.cfg.Device.UpdateMethod),
		a.cfg.Device.ScanInterval,
		a.cfg.Device.OperationTimeout,
	)

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         a.cfg.HTTP.Host,
		Port:         a.cfg.HTTP.Port,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}, a.log, heater, readingStore)

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "coordinator started")
		return coord.Run(ctx)
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if readings != nil && a.cfg.Storage.HistoryRetention > 0 {
		erg.Go(func() error {
			return a.runPruning(ctx, readings)
		})
	}

	erg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return transport.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "bridge stopped with error", slog.String("err", err.Error()))
		return err
	}

	a.log.InfoContext(ctx, "bridge stopped gracefully")
	return nil
}

func (a *App) runPruning(ctx context.Context, readings *sqlite.ReadingStore) error {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-a.cfg.Storage.HistoryRetention)
		pruned, err := readings.Prune(ctx, cutoff)
		if err != nil {
			a.log.Error("history pruning failed", "err", err)
			continue
		}
		if pruned > 0 {
			a.log.Debug("pruned history", "rows", pruned)
		}
	}
}
