package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
	"github.com/mrverrall/philips-heater-coap/internal/domain/translator"
	"github.com/mrverrall/philips-heater-coap/internal/ports"
)

// HeaterService holds the last known device snapshot and exposes the
// climate-entity surface on top of it. Reads derive state through the
// translator on demand; writes build a command through the translator,
// forward it to the transport and merge it optimistically into the local
// snapshot so the API reflects the intent before the device confirms it.
type HeaterService struct {
	log       *slog.Logger
	transport ports.DeviceTransport
	publisher ports.StatePublisher
	readings  ports.ReadingStore
	cal       *translator.Calibration

	mu        sync.RWMutex
	snapshot  model.Snapshot
	listeners map[int]func()
	nextID    int

	// last values already warned about, to keep unrecognized-state
	// warnings to one per distinct value
	warnedMode   *int64
	warnedStatus *int64
}

func NewHeaterService(
	log *slog.Logger,
	transport ports.DeviceTransport,
	publisher ports.StatePublisher,
	readings ports.ReadingStore,
	cal *translator.Calibration,
) *HeaterService {
	return &HeaterService{
		log:       log,
		transport: transport,
		publisher: publisher,
		readings:  readings,
		cal:       cal,
		snapshot:  model.Snapshot{},
		listeners: map[int]func(){},
	}
}

// AddListener registers a callback invoked after every snapshot change and
// returns a function that removes it.
func (s *HeaterService) AddListener(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ApplySnapshot installs a snapshot received from the device. A partial
// snapshot is merged into the current one; a full snapshot replaces it.
// Side effects (history sample, host publication, listener fan-out) all run
// on the caller's goroutine.
func (s *HeaterService) ApplySnapshot(ctx context.Context, snap model.Snapshot, partial bool) {
	s.mu.Lock()
	if partial {
		s.snapshot = s.snapshot.Merge(snap)
	} else {
		s.snapshot = snap.Clone()
	}
	current := s.snapshot
	s.warnUnrecognizedLocked(current)
	s.mu.Unlock()

	s.recordReading(ctx, current)
	s.publish(ctx)
	s.notify()
}

// warnUnrecognizedLocked logs once per distinct out-of-schema value. The
// device keeps working through the documented fallbacks; the log line is
// the only surface for firmware introducing new codes.
func (s *HeaterService) warnUnrecognizedLocked(snap model.Snapshot) {
	if mode, ok := snap.Value(model.FieldMode); ok && mode != 1 && mode != 2 && mode != 3 {
		if s.warnedMode == nil || *s.warnedMode != mode {
			s.log.Warn("unrecognized mode value, treating as fan_only", "value", mode)
			s.warnedMode = &mode
		}
	}
	if status, ok := snap.Value(model.FieldHeatingStatus); ok {
		switch status {
		case 0, 65, 66, 67, -16:
		default:
			if s.warnedStatus == nil || *s.warnedStatus != status {
				s.log.Warn("unrecognized heating status, treating as idle", "value", status)
				s.warnedStatus = &status
			}
		}
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *HeaterService) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// IsOn reports whether the device power field is set.
func (s *HeaterService) IsOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.ValueOr(model.FieldPower, 0) == 1
}

// HVACMode returns the semantic mode, off when the device is powered down.
func (s *HeaterService) HVACMode() model.HVACMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.ValueOr(model.FieldPower, 0) != 1 {
		return model.HVACModeOff
	}
	return translator.ModeFromSnapshot(s.snapshot)
}

// HVACAction returns what the device is doing right now.
func (s *HeaterService) HVACAction() model.HVACAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.ValueOr(model.FieldPower, 0) != 1 {
		return model.HVACActionOff
	}
	return translator.ActionFromSnapshot(s.snapshot)
}

// Preset returns the active preset, if the snapshot matches one. The shared
// low/medium raw pair always reads back as low.
func (s *HeaterService) Preset() (model.Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return translator.PresetFromSnapshot(s.snapshot)
}

// Oscillating reports the oscillation status.
func (s *HeaterService) Oscillating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return translator.OscillationFromSnapshot(s.snapshot)
}

// CurrentTemperature returns the calibrated room temperature, if reported.
func (s *HeaterService) CurrentTemperature() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.snapshot.Value(model.FieldTemperature)
	if !ok {
		return 0, false
	}
	return s.cal.Apply(translator.TemperatureFromRaw(raw)), true
}

// TargetTemperature returns the set point, if reported. The target field
// carries whole degrees.
func (s *HeaterService) TargetTemperature() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.snapshot.Value(model.FieldTargetTemp)
	if !ok {
		return 0, false
	}
	return float64(raw), true
}

// TargetTemperatureRange returns the accepted set point bounds in Celsius.
func (s *HeaterService) TargetTemperatureRange() (min, max float64) {
	return model.MinTemp, model.MaxTemp
}

// Degraded reports that the snapshot is missing fields the mode or action
// derivations rely on, meaning the derived state is built from fallbacks.
func (s *HeaterService) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.snapshot.Has(model.FieldPower, model.FieldMode, model.FieldHeatingIntensity, model.FieldHeatingStatus)
}

// State assembles the full semantic view used by the API, the websocket
// stream and the host publisher.
func (s *HeaterService) State() model.ClimateState {
	s.mu.RLock()
	snap := s.snapshot
	on := snap.ValueOr(model.FieldPower, 0) == 1

	state := model.ClimateState{
		HVACMode:    model.HVACModeOff,
		HVACAction:  model.HVACActionOff,
		Oscillating: translator.OscillationFromSnapshot(snap),
		IsOn:        on,
		Degraded:    !snap.Has(model.FieldPower, model.FieldMode, model.FieldHeatingIntensity, model.FieldHeatingStatus),
	}
	if on {
		state.HVACMode = translator.ModeFromSnapshot(snap)
		state.HVACAction = translator.ActionFromSnapshot(snap)
	}
	if p, ok := translator.PresetFromSnapshot(snap); ok {
		state.Preset = p
	}
	if raw, ok := snap.Value(model.FieldTemperature); ok {
		t := s.cal.Apply(translator.TemperatureFromRaw(raw))
		state.CurrentTemperature = &t
	}
	if raw, ok := snap.Value(model.FieldTargetTemp); ok {
		t := float64(raw)
		state.TargetTemperature = &t
	}
	if raw, ok := snap.Value(model.FieldFanSpeed); ok {
		v := raw
		state.FanSpeed = &v
	}
	s.mu.RUnlock()
	return state
}

// SetHVACMode maps the requested mode onto the device's preset table: auto
// selects the auto program, fan_only selects ventilation, heat selects the
// medium program, off cuts power.
func (s *HeaterService) SetHVACMode(ctx context.Context, mode model.HVACMode) error {
	switch mode {
	case model.HVACModeOff:
		return s.TurnOff(ctx)
	case model.HVACModeAuto:
		return s.SetPreset(ctx, model.PresetAuto)
	case model.HVACModeFanOnly:
		return s.SetPreset(ctx, model.PresetVentilation)
	case model.HVACModeHeat:
		return s.SetPreset(ctx, model.PresetMedium)
	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownHVACMode, mode)
	}
}

// SetPreset selects a preset and powers the device on in the same command.
func (s *HeaterService) SetPreset(ctx context.Context, p model.Preset) error {
	cmd, err := translator.PresetCommand(p)
	if err != nil {
		return fmt.Errorf("%w: %q", err, p)
	}
	cmd[model.FieldPower] = 1
	return s.send(ctx, cmd)
}

// SetOscillation turns oscillation on or off.
func (s *HeaterService) SetOscillation(ctx context.Context, on bool) error {
	return s.send(ctx, translator.OscillationCommand(on))
}

// SetTargetTemperature sets the heating set point. Out-of-range values are
// rejected before anything reaches the device.
func (s *HeaterService) SetTargetTemperature(ctx context.Context, celsius float64) error {
	cmd, err := translator.TargetTemperatureCommand(celsius)
	if err != nil {
		return fmt.Errorf("%w: %v", err, celsius)
	}
	return s.send(ctx, cmd)
}

func (s *HeaterService) TurnOn(ctx context.Context) error {
	return s.send(ctx, translator.PowerCommand(true))
}

func (s *HeaterService) TurnOff(ctx context.Context) error {
	return s.send(ctx, translator.PowerCommand(false))
}

// send forwards a command and merges it into the local snapshot. The next
// observe push or poll corrects the optimistic state if the device
// disagreed.
func (s *HeaterService) send(ctx context.Context, cmd model.Command) error {
	if err := s.transport.SetControlValues(ctx, cmd); err != nil {
		return fmt.Errorf("set control values: %w", err)
	}

	s.mu.Lock()
	s.snapshot = s.snapshot.Merge(model.Snapshot(cmd))
	s.mu.Unlock()

	s.publish(ctx)
	s.notify()
	return nil
}

func (s *HeaterService) recordReading(ctx context.Context, snap model.Snapshot) {
	if s.readings == nil {
		return
	}
	raw, ok := snap.Value(model.FieldTemperature)
	if !ok {
		return
	}
	r := model.Reading{
		Time:          time.Now().UTC(),
		Temperature:   s.cal.Apply(translator.TemperatureFromRaw(raw)),
		HeatingStatus: snap.ValueOr(model.FieldHeatingStatus, 0),
	}
	if target, ok := snap.Value(model.FieldTargetTemp); ok {
		t := float64(target)
		r.TargetTemp = &t
	}
	if err := s.readings.Record(ctx, r); err != nil {
		s.log.Error("failed to record reading", "err", err)
	}
}

func (s *HeaterService) publish(ctx context.Context) {
	if s.publisher == nil || !s.publisher.IsConfigured() {
		return
	}
	if err := s.publisher.PublishState(ctx, s.State()); err != nil {
		s.log.Error("failed to publish state", "err", err)
	}
}

func (s *HeaterService) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
