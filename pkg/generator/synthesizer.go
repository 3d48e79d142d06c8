package generator

import (
	"math"

	"gensetgateway/pkg/generator/runtime"
)

// Synthesize folds one decoded poll cycle into the summarized generator
// view. A point that failed or is absent from the brand map contributes its
// zero value, a partial cycle still yields a complete status.
func Synthesize(profile *runtime.GeneratorProfile, result *runtime.ReadResult) *runtime.GeneratorStatus {
	engine := wordValue(result.Values, runtime.PointEngineStatus)
	power := wordValue(result.Values, runtime.PointPowerStatus)

	status := &runtime.GeneratorStatus{
		Running:  engine&engineBitRunning != 0,
		Loaded:   engine&engineBitLoaded != 0,
		Cooldown: engine&engineBitCooldown != 0,
		Ready:    engine&engineBitReady != 0,
		Starting: engine&engineBitStarting != 0,
		Stopping: engine&engineBitStopping != 0,

		MainsAvailable:  power&powerBitMains != 0,
		GeneratorOnline: power&powerBitGeneratorOnline != 0,
		TransferSwitch:  transferSwitchPosition(power),

		Metrics: runtime.StatusMetrics{
			Voltage:            floatValue(result.Values, runtime.PointVoltage),
			Current:            floatValue(result.Values, runtime.PointCurrent),
			Frequency:          floatValue(result.Values, runtime.PointFrequency),
			PowerKW:            floatValue(result.Values, runtime.PointPower),
			PowerFactor:        floatValue(result.Values, runtime.PointPowerFactor),
			OilTemperature:     floatValue(result.Values, runtime.PointOilTemperature),
			CoolantTemperature: floatValue(result.Values, runtime.PointCoolantTemperature),
			ExhaustTemperature: floatValue(result.Values, runtime.PointExhaustTemperature),
			Rpm:                floatValue(result.Values, runtime.PointRpm),
			OilPressure:        floatValue(result.Values, runtime.PointOilPressure),
			FuelPressure:       floatValue(result.Values, runtime.PointFuelPressure),
			MainsVoltage:       floatValue(result.Values, runtime.PointMainsVoltage),
			RuntimeHours:       floatValue(result.Values, runtime.PointRuntimeHours),
			FuelLevel:          floatValue(result.Values, runtime.PointFuelLevel),
			BatteryVoltage:     floatValue(result.Values, runtime.PointBatteryVoltage),
		},

		Alarms:   bitMessages(wordValue(result.Values, runtime.PointAlarmBits), AlarmMessages),
		Faults:   bitMessages(wordValue(result.Values, runtime.PointFaultBits), FaultMessages),
		Warnings: bitMessages(wordValue(result.Values, runtime.PointWarningBits), WarningMessages),

		ConnectionStatus: result.ConnectionStatus,
		LastUpdated:      result.Timestamp,
	}
	status.MaintenanceDueInHours = maintenanceDue(status.Metrics.RuntimeHours, profile.MaintenanceIntervalHours)
	return status
}

// StatusChanged reports whether cur differs enough from prev to notify
// subscribers. Discrete state differences always count, analog metrics must
// leave their deadband.
func StatusChanged(prev, cur *runtime.GeneratorStatus) bool {
	if prev == nil {
		return true
	}
	if prev.Running != cur.Running ||
		prev.Loaded != cur.Loaded ||
		prev.MainsAvailable != cur.MainsAvailable ||
		prev.TransferSwitch != cur.TransferSwitch {
		return true
	}
	if len(prev.Alarms) != len(cur.Alarms) || len(prev.Faults) != len(cur.Faults) {
		return true
	}
	if exceedsDeadband(prev.Metrics.Voltage, cur.Metrics.Voltage, electricalDeadband) ||
		exceedsDeadband(prev.Metrics.Frequency, cur.Metrics.Frequency, electricalDeadband) ||
		exceedsDeadband(prev.Metrics.PowerKW, cur.Metrics.PowerKW, electricalDeadband) {
		return true
	}
	return exceedsDeadband(prev.Metrics.FuelLevel, cur.Metrics.FuelLevel, fuelLevelDeadband)
}

// Positions 0b00 and 0b11 both read as off, 0b11 shows up on some
// controllers mid transition.
func transferSwitchPosition(power uint16) runtime.TransferSwitch {
	switch power >> transferSwitchShift & transferSwitchMask {
	case 0b01:
		return runtime.TransferMains
	case 0b10:
		return runtime.TransferGenerator
	default:
		return runtime.TransferOff
	}
}

// bitMessages expands a status word into its set messages, bit 0 first.
func bitMessages(word uint16, messages [16]string) []string {
	decoded := make([]string, 0)
	for bit := 0; bit < 16; bit++ {
		if word&(1<<bit) == 0 {
			continue
		}
		decoded = append(decoded, messages[bit])
	}
	return decoded
}

// maintenanceDue is the hour count left until the next service boundary,
// boundaries fall on every whole multiple of the interval.
func maintenanceDue(runtimeHours, intervalHours float64) float64 {
	if intervalHours <= 0 {
		return 0
	}
	return math.Ceil(runtimeHours/intervalHours)*intervalHours - runtimeHours
}

// exceedsDeadband measures relative movement against the previous value. A
// transition between zero and nonzero always exceeds.
func exceedsDeadband(prev, cur, deadband float64) bool {
	if prev == cur {
		return false
	}
	if prev == 0 || cur == 0 {
		return true
	}
	return math.Abs(cur-prev)/math.Abs(prev) > deadband
}

func wordValue(values map[string]interface{}, name string) uint16 {
	if v, ok := values[name].(float64); ok {
		return uint16(v)
	}
	return 0
}

func floatValue(values map[string]interface{}, name string) float64 {
	if v, ok := values[name].(float64); ok {
		return v
	}
	return 0
}
