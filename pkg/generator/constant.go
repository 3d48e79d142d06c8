package generator

import (
	"encoding/json"
	"fmt"
)

// Engine status word layout. Brand register maps normalize their
// controller's native status word onto these bits before the synthesizer
// reads them.
const (
	engineBitRunning uint16 = 1 << iota
	engineBitLoaded
	engineBitCooldown
	engineBitReady
	engineBitStarting
	engineBitStopping
)

// Power status word layout. Bits 2 and 3 carry the transfer switch
// position as a two bit field.
const (
	powerBitMains uint16 = 1 << iota
	powerBitGeneratorOnline
)

const (
	transferSwitchShift = 2
	transferSwitchMask  = 0x3
)

// AlarmMessages maps alarm word bits onto operator facing text, bit 0
// first. Active conditions that clear on their own once the cause goes
// away.
var AlarmMessages = [16]string{
	"Low Oil Pressure",
	"High Engine Temperature",
	"Low Coolant Level",
	"Overcrank",
	"Overspeed",
	"Underspeed",
	"Low Fuel Level",
	"Low Battery Voltage",
	"High Battery Voltage",
	"Generator Undervoltage",
	"Generator Overvoltage",
	"Underfrequency",
	"Overfrequency",
	"Overload",
	"Emergency Stop Active",
	"High Exhaust Temperature",
}

// FaultMessages maps fault word bits. Latched shutdown conditions, any set
// bit blocks a start command until the controller is reset.
var FaultMessages = [16]string{
	"Engine Fault",
	"Crank Failure",
	"Fuel System Fault",
	"Speed Sensor Fault",
	"Oil Pressure Sender Fault",
	"Temperature Sender Fault",
	"Alternator Fault",
	"Transfer Switch Fault",
	"Controller Internal Fault",
	"Battery Charger Fault",
	"Governor Fault",
	"Sensor Supply Fault",
	"Ground Fault",
	"Breaker Trip",
	"Exhaust System Fault",
	"Controller Communication Fault",
}

// WarningMessages maps warning word bits, advisory only.
var WarningMessages = [16]string{
	"Maintenance Due Soon",
	"Low Fuel Warning",
	"Weak Battery",
	"High Engine Temperature Warning",
	"Low Oil Pressure Warning",
	"Exercise Overdue",
	"Not In Auto",
	"Battery Charger Missing",
	"Low Coolant Temperature",
	"Air Filter Restriction",
	"Fuel Leak Detected",
	"Speed Deviation",
	"Voltage Deviation",
	"Frequency Deviation",
	"Load Imbalance",
	"Controller Clock Not Set",
}

// Change deadbands for the event stream. Analog noise inside the band does
// not wake subscribers.
const (
	electricalDeadband = 0.05
	fuelLevelDeadband  = 0.02
)

type MonitorState int32

const (
	Uninitialized MonitorState = iota
	Idle
	Polling
	Stopped
)

var MonitorStateToString = map[MonitorState]string{
	Uninitialized: "uninitialized",
	Idle:          "idle",
	Polling:       "polling",
	Stopped:       "stopped",
}

type EventType int8

const (
	EventStatusChanged EventType = iota
	EventConnected
	EventDisconnected
	EventError
)

var EventTypeToString = map[EventType]string{
	EventStatusChanged: "statusChanged",
	EventConnected:     "connected",
	EventDisconnected:  "disconnected",
	EventError:         "error",
}

var StringToEventType = map[string]EventType{
	"statusChanged": EventStatusChanged,
	"connected":     EventConnected,
	"disconnected":  EventDisconnected,
	"error":         EventError,
}

func (e EventType) MarshalJSON() ([]byte, error) {
	if s, ok := EventTypeToString[e]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown event type %d", e)
}

func (e *EventType) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToEventType[s]
	if !ok {
		return fmt.Errorf("unknown event type %s", s)
	}
	*e = v
	return nil
}
