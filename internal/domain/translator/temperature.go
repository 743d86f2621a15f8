package translator

import (
	"math"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

// TemperatureFromRaw converts a decicelsius sensor reading to degrees
// Celsius. The temperature sensor reports Celsius multiplied by ten.
func TemperatureFromRaw(raw int64) float64 {
	return float64(raw) / 10
}

// TemperatureToRaw converts degrees Celsius to the decicelsius wire value,
// rounded to the nearest integer. Values outside the 1-37 degree range the
// device accepts are rejected, never clamped.
func TemperatureToRaw(celsius float64) (int64, error) {
	if celsius < model.MinTemp || celsius > model.MaxTemp {
		return 0, model.ErrTemperatureRange
	}
	return int64(math.Round(celsius * 10)), nil
}

// TargetTemperatureCommand builds the command setting the target
// temperature. The target field takes whole degrees, unlike the sensor
// field: the device rounds internally, so we round here to keep the
// snapshot readback consistent with what was sent.
func TargetTemperatureCommand(celsius float64) (model.Command, error) {
	if celsius < model.MinTemp || celsius > model.MaxTemp {
		return nil, model.ErrTemperatureRange
	}
	return model.Command{model.FieldTargetTemp: int64(math.Round(celsius))}, nil
}
