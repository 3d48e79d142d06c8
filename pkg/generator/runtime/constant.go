package runtime

import (
	"encoding/json"
	"fmt"
)

// Canonical point names shared by the register maps and the status
// synthesizer. A brand map may omit a point, never rename it.
const (
	PointEngineStatus = "engineStatus"
	PointPowerStatus  = "powerStatus"
	PointAlarmBits    = "alarmBits"
	PointFaultBits    = "faultBits"
	PointWarningBits  = "warningBits"

	PointVoltage            = "voltage"
	PointCurrent            = "current"
	PointFrequency          = "frequency"
	PointPower              = "power"
	PointPowerFactor        = "powerFactor"
	PointOilTemperature     = "oilTemperature"
	PointCoolantTemperature = "coolantTemperature"
	PointExhaustTemperature = "exhaustTemperature"
	PointRpm                = "rpm"
	PointOilPressure        = "oilPressure"
	PointFuelPressure       = "fuelPressure"
	PointMainsVoltage       = "mainsVoltage"
	PointRuntimeHours       = "runtimeHours"
	PointFuelLevel          = "fuelLevel"
	PointBatteryVoltage     = "batteryVoltage"

	PointStartCommand = "startCommand"
	PointStopCommand  = "stopCommand"
)

type Brand int8

const (
	BrandGenerac Brand = iota
	BrandKohler
	BrandCummins
	BrandMebay
	BrandCustom
)

var BrandToString = map[Brand]string{
	BrandGenerac: "generac",
	BrandKohler:  "kohler",
	BrandCummins: "cummins",
	BrandMebay:   "mebay",
	BrandCustom:  "custom",
}

var StringToBrand = map[string]Brand{
	"generac": BrandGenerac,
	"kohler":  BrandKohler,
	"cummins": BrandCummins,
	"mebay":   BrandMebay,
	"custom":  BrandCustom,
}

func (b Brand) MarshalJSON() ([]byte, error) {
	if s, ok := BrandToString[b]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown brand %d", b)
}

func (b *Brand) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToBrand[s]
	if !ok {
		return fmt.Errorf("unknown brand %s", s)
	}
	*b = v
	return nil
}

type TransportType int8

const (
	TransportTcp TransportType = iota
	TransportRtu
)

var TransportTypeToString = map[TransportType]string{
	TransportTcp: "tcp",
	TransportRtu: "rtu",
}

var StringToTransportType = map[string]TransportType{
	"tcp": TransportTcp,
	"rtu": TransportRtu,
}

func (t TransportType) MarshalJSON() ([]byte, error) {
	if s, ok := TransportTypeToString[t]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown transport type %d", t)
}

func (t *TransportType) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToTransportType[s]
	if !ok {
		return fmt.Errorf("unknown transport type %s", s)
	}
	*t = v
	return nil
}

type RegisterClass int8

const (
	RegisterHolding RegisterClass = iota
	RegisterInput
	RegisterCoil
	RegisterDiscrete
)

var RegisterClassToString = map[RegisterClass]string{
	RegisterHolding:  "holding",
	RegisterInput:    "input",
	RegisterCoil:     "coil",
	RegisterDiscrete: "discrete",
}

var StringToRegisterClass = map[string]RegisterClass{
	"holding":  RegisterHolding,
	"input":    RegisterInput,
	"coil":     RegisterCoil,
	"discrete": RegisterDiscrete,
}

func (rc RegisterClass) MarshalJSON() ([]byte, error) {
	if s, ok := RegisterClassToString[rc]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown register class %d", rc)
}

func (rc *RegisterClass) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToRegisterClass[s]
	if !ok {
		return fmt.Errorf("unknown register class %s", s)
	}
	*rc = v
	return nil
}

type WireType int8

const (
	WireUint16 WireType = iota
	WireInt16
	WireUint32
	WireInt32
	WireFloat32
	WireBool
)

var WireTypeToString = map[WireType]string{
	WireUint16:  "uint16",
	WireInt16:   "int16",
	WireUint32:  "uint32",
	WireInt32:   "int32",
	WireFloat32: "float32",
	WireBool:    "bool",
}

var StringToWireType = map[string]WireType{
	"uint16":  WireUint16,
	"int16":   WireInt16,
	"uint32":  WireUint32,
	"int32":   WireInt32,
	"float32": WireFloat32,
	"bool":    WireBool,
}

// WireTypeWords is the register word count occupied by each wire type.
var WireTypeWords = map[WireType]uint16{
	WireUint16:  1,
	WireInt16:   1,
	WireUint32:  2,
	WireInt32:   2,
	WireFloat32: 2,
	WireBool:    1,
}

func (wt WireType) MarshalJSON() ([]byte, error) {
	if s, ok := WireTypeToString[wt]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown wire type %d", wt)
}

func (wt *WireType) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToWireType[s]
	if !ok {
		return fmt.Errorf("unknown wire type %s", s)
	}
	*wt = v
	return nil
}

type ConnectionStatus int8

const (
	Connected ConnectionStatus = iota
	Disconnected
	ConnectionError
)

var ConnectionStatusToString = map[ConnectionStatus]string{
	Connected:       "connected",
	Disconnected:    "disconnected",
	ConnectionError: "error",
}

var StringToConnectionStatus = map[string]ConnectionStatus{
	"connected":    Connected,
	"disconnected": Disconnected,
	"error":        ConnectionError,
}

func (cs ConnectionStatus) MarshalJSON() ([]byte, error) {
	if s, ok := ConnectionStatusToString[cs]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown connection status %d", cs)
}

func (cs *ConnectionStatus) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToConnectionStatus[s]
	if !ok {
		return fmt.Errorf("unknown connection status %s", s)
	}
	*cs = v
	return nil
}

type TransferSwitch int8

const (
	TransferOff TransferSwitch = iota
	TransferMains
	TransferGenerator
)

var TransferSwitchToString = map[TransferSwitch]string{
	TransferOff:       "off",
	TransferMains:     "mains",
	TransferGenerator: "generator",
}

var StringToTransferSwitch = map[string]TransferSwitch{
	"off":       TransferOff,
	"mains":     TransferMains,
	"generator": TransferGenerator,
}

func (ts TransferSwitch) MarshalJSON() ([]byte, error) {
	if s, ok := TransferSwitchToString[ts]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown transfer switch position %d", ts)
}

func (ts *TransferSwitch) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToTransferSwitch[s]
	if !ok {
		return fmt.Errorf("unknown transfer switch position %s", s)
	}
	*ts = v
	return nil
}

type TransportEventType int8

const (
	TransportConnected TransportEventType = iota
	TransportDisconnected
	TransportFaulted
)

var TransportEventTypeToString = map[TransportEventType]string{
	TransportConnected:    "connected",
	TransportDisconnected: "disconnected",
	TransportFaulted:      "error",
}

// TransportEvent is pushed by a transport when its link state changes
// outside a caller initiated operation.
type TransportEvent struct {
	Type TransportEventType
	Err  error
}
