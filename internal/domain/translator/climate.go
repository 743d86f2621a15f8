// Package translator maps raw heater field values to semantic climate state
// and user intents back to the field values the device expects. Every
// function is pure: nothing here does I/O or keeps state between calls, so
// the package is safe to use from any number of goroutines.
package translator

import (
	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

// heatingActions maps the heating status field to the action the device is
// performing. Values outside the table fall back to idle; newer firmware is
// known to grow this set.
var heatingActions = map[int64]model.HVACAction{
	0:   model.HVACActionFan,
	65:  model.HVACActionHeating, // high
	66:  model.HVACActionHeating, // low
	67:  model.HVACActionHeating, // medium
	-16: model.HVACActionIdle,    // auto reached target
}

// presetCommands holds the literal field pair each preset writes. Low and
// medium send the identical pair: the device does not distinguish them on
// the wire, so a snapshot written with either reads back the same.
var presetCommands = map[model.Preset]model.Command{
	model.PresetAuto:        {model.FieldMode: 3, model.FieldHeatingIntensity: 0},
	model.PresetLow:         {model.FieldMode: 3, model.FieldHeatingIntensity: 66},
	model.PresetMedium:      {model.FieldMode: 3, model.FieldHeatingIntensity: 66},
	model.PresetHigh:        {model.FieldMode: 3, model.FieldHeatingIntensity: 65},
	model.PresetVentilation: {model.FieldMode: 1, model.FieldHeatingIntensity: -127},
}

// presetOrder fixes reverse-lookup order so the shared low/medium pair
// always resolves to low.
var presetOrder = []model.Preset{
	model.PresetAuto,
	model.PresetLow,
	model.PresetMedium,
	model.PresetHigh,
	model.PresetVentilation,
}

// ModeFromSnapshot derives the HVAC mode from the mode and heating intensity
// fields. A missing or unrecognized mode value resolves to fan_only rather
// than failing: the safest reading of a device we cannot interpret is "it is
// moving air".
func ModeFromSnapshot(s model.Snapshot) model.HVACMode {
	mode := s.ValueOr(model.FieldMode, model.ModeValueFan)
	switch mode {
	case model.ModeValueHeating:
		if s.ValueOr(model.FieldHeatingIntensity, 0) == 0 {
			return model.HVACModeAuto
		}
		return model.HVACModeHeat
	case model.ModeValueFan, model.ModeValueCirculation:
		return model.HVACModeFanOnly
	default:
		return model.HVACModeFanOnly
	}
}

// ActionFromSnapshot derives the HVAC action from the heating status field.
// Missing or unrecognized values resolve to idle.
func ActionFromSnapshot(s model.Snapshot) model.HVACAction {
	status, ok := s.Value(model.FieldHeatingStatus)
	if !ok {
		return model.HVACActionIdle
	}
	if action, ok := heatingActions[status]; ok {
		return action
	}
	return model.HVACActionIdle
}

// OscillationFromSnapshot reports whether the device is oscillating. The
// device uses two distinct raw values for "on": 17222 right after the
// command is accepted and 17920 once the sweep is running. Anything else,
// including the command-off value 0, reads as off.
func OscillationFromSnapshot(s model.Snapshot) bool {
	v := s.ValueOr(model.FieldOscillation, model.OscillationOff)
	return v == model.OscillationOn || v == model.OscillationStatus
}

// PresetFromSnapshot resolves the active preset by matching the snapshot
// against the preset command table. The second return is false when no
// preset matches. Because low and medium share raw values, a device set to
// either always reads back as low.
func PresetFromSnapshot(s model.Snapshot) (model.Preset, bool) {
	for _, p := range presetOrder {
		cmd := presetCommands[p]
		match := true
		for f, want := range cmd {
			if got, ok := s.Value(f); !ok || got != want {
				match = false
				break
			}
		}
		if match {
			return p, true
		}
	}
	return "", false
}

// PresetCommand returns the field values that select the given preset.
func PresetCommand(p model.Preset) (model.Command, error) {
	cmd, ok := presetCommands[p]
	if !ok {
		return nil, model.ErrUnknownPreset
	}
	out := make(model.Command, len(cmd))
	for f, v := range cmd {
		out[f] = v
	}
	return out, nil
}

// OscillationCommand returns the command that turns oscillation on or off.
// The on command must be 17222; 17920 is a status-only value the device
// rejects as input.
func OscillationCommand(on bool) model.Command {
	if on {
		return model.Command{model.FieldOscillation: model.OscillationOn}
	}
	return model.Command{model.FieldOscillation: model.OscillationOff}
}

// PowerCommand returns the command that switches the device on or off.
func PowerCommand(on bool) model.Command {
	if on {
		return model.Command{model.FieldPower: 1}
	}
	return model.Command{model.FieldPower: 0}
}
