package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

func TestModeFromSnapshot(t *testing.T) {
	// Heating with intensity 0 is the auto program
	mode := ModeFromSnapshot(model.Snapshot{model.FieldMode: 3, model.FieldHeatingIntensity: 0})
	assert.Equal(t, model.HVACModeAuto, mode)

	// Any other intensity while heating is plain heat
	mode = ModeFromSnapshot(model.Snapshot{model.FieldMode: 3, model.FieldHeatingIntensity: 65})
	assert.Equal(t, model.HVACModeHeat, mode)
	mode = ModeFromSnapshot(model.Snapshot{model.FieldMode: 3, model.FieldHeatingIntensity: 66})
	assert.Equal(t, model.HVACModeHeat, mode)

	// Fan and circulation both read as fan_only regardless of intensity
	mode = ModeFromSnapshot(model.Snapshot{model.FieldMode: 1, model.FieldHeatingIntensity: -127})
	assert.Equal(t, model.HVACModeFanOnly, mode)
	mode = ModeFromSnapshot(model.Snapshot{model.FieldMode: 2, model.FieldHeatingIntensity: 42})
	assert.Equal(t, model.HVACModeFanOnly, mode)
}

func TestModeFromSnapshot_Fallbacks(t *testing.T) {
	// Missing mode field falls back to fan_only instead of failing
	assert.Equal(t, model.HVACModeFanOnly, ModeFromSnapshot(model.Snapshot{}))

	// Unrecognized mode values from newer firmware do the same
	mode := ModeFromSnapshot(model.Snapshot{model.FieldMode: 9, model.FieldHeatingIntensity: 65})
	assert.Equal(t, model.HVACModeFanOnly, mode)

	// Heating with a missing intensity field defaults to auto
	mode = ModeFromSnapshot(model.Snapshot{model.FieldMode: 3})
	assert.Equal(t, model.HVACModeAuto, mode)
}

func TestActionFromSnapshot(t *testing.T) {
	cases := []struct {
		status int64
		want   model.HVACAction
	}{
		{0, model.HVACActionFan},
		{65, model.HVACActionHeating},
		{66, model.HVACActionHeating},
		{67, model.HVACActionHeating},
		{-16, model.HVACActionIdle},
		{99, model.HVACActionIdle}, // unrecognized
	}
	for _, c := range cases {
		got := ActionFromSnapshot(model.Snapshot{model.FieldHeatingStatus: c.status})
		assert.Equal(t, c.want, got, "heating status %d", c.status)
	}

	// Missing field falls back to idle
	assert.Equal(t, model.HVACActionIdle, ActionFromSnapshot(model.Snapshot{}))
}

func TestOscillationFromSnapshot(t *testing.T) {
	on := []int64{17222, 17920}
	for _, v := range on {
		assert.True(t, OscillationFromSnapshot(model.Snapshot{model.FieldOscillation: v}), "value %d", v)
	}

	off := []int64{0, 1, -1, 17221, 17223, 17919, 17921}
	for _, v := range off {
		assert.False(t, OscillationFromSnapshot(model.Snapshot{model.FieldOscillation: v}), "value %d", v)
	}

	assert.False(t, OscillationFromSnapshot(model.Snapshot{}))
}

func TestPresetCommand(t *testing.T) {
	cmd, err := PresetCommand(model.PresetAuto)
	assert.NoError(t, err)
	assert.Equal(t, model.Command{model.FieldMode: 3, model.FieldHeatingIntensity: 0}, cmd)

	cmd, err = PresetCommand(model.PresetHigh)
	assert.NoError(t, err)
	assert.Equal(t, model.Command{model.FieldMode: 3, model.FieldHeatingIntensity: 65}, cmd)

	cmd, err = PresetCommand(model.PresetVentilation)
	assert.NoError(t, err)
	assert.Equal(t, model.Command{model.FieldMode: 1, model.FieldHeatingIntensity: -127}, cmd)

	_, err = PresetCommand(model.Preset("turbo"))
	assert.ErrorIs(t, err, model.ErrUnknownPreset)
}

func TestPresetCommand_LowEqualsMedium(t *testing.T) {
	// Low and medium send identical raw values: the readback cannot tell
	// them apart. This is device behavior, not a bug.
	low, err := PresetCommand(model.PresetLow)
	assert.NoError(t, err)
	medium, err := PresetCommand(model.PresetMedium)
	assert.NoError(t, err)
	assert.Equal(t, low, medium)
}

func TestPresetFromSnapshot(t *testing.T) {
	p, ok := PresetFromSnapshot(model.Snapshot{model.FieldMode: 3, model.FieldHeatingIntensity: 0})
	assert.True(t, ok)
	assert.Equal(t, model.PresetAuto, p)

	// The shared low/medium pair always resolves to low
	p, ok = PresetFromSnapshot(model.Snapshot{model.FieldMode: 3, model.FieldHeatingIntensity: 66})
	assert.True(t, ok)
	assert.Equal(t, model.PresetLow, p)

	p, ok = PresetFromSnapshot(model.Snapshot{model.FieldMode: 1, model.FieldHeatingIntensity: -127})
	assert.True(t, ok)
	assert.Equal(t, model.PresetVentilation, p)

	_, ok = PresetFromSnapshot(model.Snapshot{model.FieldMode: 2, model.FieldHeatingIntensity: 1})
	assert.False(t, ok)

	_, ok = PresetFromSnapshot(model.Snapshot{})
	assert.False(t, ok)
}

func TestOscillationCommand(t *testing.T) {
	// On must emit the command value 17222, never the status value 17920
	cmd := OscillationCommand(true)
	assert.Equal(t, model.Command{model.FieldOscillation: 17222}, cmd)

	cmd = OscillationCommand(false)
	assert.Equal(t, model.Command{model.FieldOscillation: 0}, cmd)
}

func TestPowerCommand(t *testing.T) {
	assert.Equal(t, model.Command{model.FieldPower: 1}, PowerCommand(true))
	assert.Equal(t, model.Command{model.FieldPower: 0}, PowerCommand(false))
}

func TestTemperatureRoundTrip(t *testing.T) {
	// Exact round trip for every 0.1 degree step in the valid range
	for raw := int64(10); raw <= 370; raw++ {
		c := TemperatureFromRaw(raw)
		back, err := TemperatureToRaw(c)
		assert.NoError(t, err)
		assert.Equal(t, raw, back, "celsius %v", c)
	}
}

func TestTemperatureToRaw_Range(t *testing.T) {
	_, err := TemperatureToRaw(0)
	assert.ErrorIs(t, err, model.ErrTemperatureRange)

	_, err = TemperatureToRaw(38)
	assert.ErrorIs(t, err, model.ErrTemperatureRange)

	_, err = TemperatureToRaw(0.9)
	assert.ErrorIs(t, err, model.ErrTemperatureRange)

	raw, err := TemperatureToRaw(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), raw)

	raw, err = TemperatureToRaw(37)
	assert.NoError(t, err)
	assert.Equal(t, int64(370), raw)
}

func TestTargetTemperatureCommand(t *testing.T) {
	cmd, err := TargetTemperatureCommand(21.4)
	assert.NoError(t, err)
	assert.Equal(t, model.Command{model.FieldTargetTemp: 21}, cmd)

	cmd, err = TargetTemperatureCommand(21.5)
	assert.NoError(t, err)
	assert.Equal(t, model.Command{model.FieldTargetTemp: 22}, cmd)

	_, err = TargetTemperatureCommand(0)
	assert.ErrorIs(t, err, model.ErrTemperatureRange)
	_, err = TargetTemperatureCommand(38)
	assert.ErrorIs(t, err, model.ErrTemperatureRange)
}

func TestCalibration(t *testing.T) {
	c, err := NewCalibration("x + 0.3")
	assert.NoError(t, err)
	assert.InDelta(t, 21.8, c.Apply(21.5), 1e-9)

	c, err = NewCalibration("x * 2 - 1")
	assert.NoError(t, err)
	assert.InDelta(t, 41.0, c.Apply(21.0), 1e-9)

	// Empty formula passes readings through
	c, err = NewCalibration("")
	assert.NoError(t, err)
	assert.Equal(t, 21.5, c.Apply(21.5))

	// Malformed formulas are rejected at parse time
	_, err = NewCalibration("x +* 2")
	assert.Error(t, err)
}
