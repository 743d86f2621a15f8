package airctrl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

func TestParseSnapshot(t *testing.T) {
	data := []byte(`{
		"D01S03": "Bedroom heater",
		"D01S05": "CX5120",
		"D03102": 1,
		"D0310A": 3,
		"D0310C": 66,
		"D0313F": -16,
		"D0320F": 17920,
		"D03224": 215,
		"rssi": -52.5
	}`)

	snap, err := parseSnapshot(data)
	assert.NoError(t, err)

	assert.Equal(t, int64(1), snap[model.FieldPower])
	assert.Equal(t, int64(3), snap[model.FieldMode])
	assert.Equal(t, int64(66), snap[model.FieldHeatingIntensity])
	assert.Equal(t, int64(-16), snap[model.FieldHeatingStatus])
	assert.Equal(t, int64(17920), snap[model.FieldOscillation])
	assert.Equal(t, int64(215), snap[model.FieldTemperature])

	// strings and non-integral numbers are dropped
	_, ok := snap.Value(model.FieldName)
	assert.False(t, ok)
	_, ok = snap.Value(model.Field("rssi"))
	assert.False(t, ok)
}

func TestParseSnapshot_Invalid(t *testing.T) {
	_, err := parseSnapshot([]byte("not json"))
	assert.Error(t, err)
}
