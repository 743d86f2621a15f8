package model

import "time"

// ClimateState is the semantic view of a snapshot, assembled by the heater
// service for publication to Home Assistant, the HTTP API and websocket
// subscribers.
type ClimateState struct {
	HVACMode    HVACMode   `json:"hvac_mode"`
	HVACAction  HVACAction `json:"hvac_action"`
	Preset      Preset     `json:"preset,omitempty"`
	Oscillating bool       `json:"oscillating"`
	IsOn        bool       `json:"is_on"`

	// Pointers: nil when the backing field is absent from the snapshot.
	CurrentTemperature *float64 `json:"current_temperature,omitempty"`
	TargetTemperature  *float64 `json:"target_temperature,omitempty"`
	FanSpeed           *int64   `json:"fan_speed,omitempty"`

	// Degraded is set when the snapshot lacks fields the mode and action
	// derivations need, i.e. the values above are fallbacks.
	Degraded bool `json:"degraded"`
}

// Reading is one temperature history sample.
type Reading struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	TargetTemp    *float64  `json:"target_temperature,omitempty"`
	HeatingStatus int64     `json:"heating_status"`
}
