package model

import "errors"

// HVACMode is the semantic operating mode derived from the mode and heating
// intensity fields.
type HVACMode string

const (
	HVACModeOff     HVACMode = "off"
	HVACModeAuto    HVACMode = "auto"
	HVACModeHeat    HVACMode = "heat"
	HVACModeFanOnly HVACMode = "fan_only"
)

// HVACAction is what the device is currently doing, derived from the heating
// status field.
type HVACAction string

const (
	HVACActionOff     HVACAction = "off"
	HVACActionFan     HVACAction = "fan"
	HVACActionHeating HVACAction = "heating"
	HVACActionIdle    HVACAction = "idle"
)

// Preset names a fixed (mode, heating intensity) pair.
type Preset string

const (
	PresetAuto        Preset = "auto"
	PresetLow         Preset = "low"
	PresetMedium      Preset = "medium"
	PresetHigh        Preset = "high"
	PresetVentilation Preset = "ventilation"
)

// Target temperature limits accepted by the device, in degrees Celsius.
const (
	MinTemp = 1.0
	MaxTemp = 37.0
)

// Validation errors returned for out-of-domain caller input.
var (
	ErrUnknownPreset    = errors.New("unknown preset")
	ErrUnknownHVACMode  = errors.New("unknown hvac mode")
	ErrTemperatureRange = errors.New("target temperature out of range")
)
