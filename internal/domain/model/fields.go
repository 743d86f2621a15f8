package model

// Field is a vendor field identifier ("D-code") naming one attribute of the
// heater's CoAP status document.
type Field string

// Device information fields.
const (
	FieldName            Field = "D01S03"
	FieldType            Field = "D01S04"
	FieldModelID         Field = "D01S05"
	FieldSoftwareVersion Field = "D01S12"
	FieldDeviceID        Field = "DeviceId"
	FieldProductID       Field = "ProductId"
	FieldWifiVersion     Field = "WifiVersion"
)

// Control fields.
const (
	FieldPower            Field = "D03102"
	FieldMode             Field = "D0310A" // 1=fan, 2=circulation, 3=heating
	FieldHeatingIntensity Field = "D0310C" // 0=auto, 65=high, 66=low/medium, -127=fan
	FieldFanSpeed         Field = "D0310D"
	FieldTargetTemp       Field = "D0310E" // whole degrees Celsius
	FieldChildLock        Field = "D03106"
	FieldBacklight        Field = "D03105"
	FieldOscillation      Field = "D0320F"
	FieldTimer            Field = "D03180"
	FieldTimer2           Field = "D03182"
)

// Sensor fields.
const (
	FieldTemperature   Field = "D03224" // decicelsius
	FieldHeatingStatus Field = "D0313F"
)

// Raw mode values reported in FieldMode.
const (
	ModeValueFan         int64 = 1
	ModeValueCirculation int64 = 2
	ModeValueHeating     int64 = 3
)

// Oscillation raw values. The device reports a different "on" value than the
// one it accepts as a command.
const (
	OscillationOn     int64 = 17222 // command and status
	OscillationStatus int64 = 17920 // status only, never valid as a command
	OscillationOff    int64 = 0
)

// Supported models, keyed by the value of FieldModelID.
var SupportedModels = map[string]string{
	"CX3120": "Philips CX3120 Heater",
	"CX5120": "Philips CX5120 Heater",
}
