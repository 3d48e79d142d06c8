package model

import (
	"gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/runtime/constant"
)

// Cummins PowerCommand family. Telemetry lives in the input register space,
// only the command coils are writable.
func cumminsRegisterMap() *runtime.RegisterMap {
	m := &runtime.RegisterMap{
		Brand:        runtime.BrandCummins,
		MemoryLayout: constant.ABCD,
		Points: []*runtime.RegisterPoint{
			{Name: runtime.PointEngineStatus, Address: 800, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Description: "Engine state bit field"},
			{Name: runtime.PointPowerStatus, Address: 801, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Description: "Mains and transfer switch bit field"},
			{Name: runtime.PointAlarmBits, Address: 802, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Description: "Active alarm bit field"},
			{Name: runtime.PointFaultBits, Address: 803, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Description: "Latched fault bit field"},
			{Name: runtime.PointWarningBits, Address: 804, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Description: "Warning bit field"},
			{Name: runtime.PointVoltage, Address: 810, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Generator output voltage"},
			{Name: runtime.PointCurrent, Address: 811, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.1, Unit: "A", Description: "Generator output current"},
			{Name: runtime.PointFrequency, Address: 812, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.01, Unit: "Hz", Description: "Generator output frequency"},
			{Name: runtime.PointPower, Address: 813, RegisterClass: runtime.RegisterInput, WireType: runtime.WireInt16, Scale: 0.1, Unit: "kW", Description: "Active power"},
			{Name: runtime.PointPowerFactor, Address: 814, RegisterClass: runtime.RegisterInput, WireType: runtime.WireInt16, Scale: 0.001, Description: "Power factor"},
			{Name: runtime.PointOilTemperature, Address: 815, RegisterClass: runtime.RegisterInput, WireType: runtime.WireInt16, Scale: 0.1, Unit: "°F", Description: "Engine oil temperature"},
			{Name: runtime.PointCoolantTemperature, Address: 816, RegisterClass: runtime.RegisterInput, WireType: runtime.WireInt16, Scale: 0.1, Unit: "°F", Description: "Engine coolant temperature"},
			{Name: runtime.PointExhaustTemperature, Address: 817, RegisterClass: runtime.RegisterInput, WireType: runtime.WireInt16, Scale: 0.1, Unit: "°F", Description: "Exhaust gas temperature"},
			{Name: runtime.PointRpm, Address: 818, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Unit: "RPM", Description: "Engine speed"},
			{Name: runtime.PointOilPressure, Address: 819, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.1, Unit: "psi", Description: "Engine oil pressure"},
			{Name: runtime.PointFuelPressure, Address: 820, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.1, Unit: "psi", Description: "Fuel supply pressure"},
			{Name: runtime.PointMainsVoltage, Address: 821, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Utility voltage"},
			{Name: runtime.PointRuntimeHours, Address: 822, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint32, Scale: 0.1, Unit: "h", Description: "Cumulative engine runtime"},
			{Name: runtime.PointFuelLevel, Address: 824, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.5, Unit: "%", Description: "Fuel tank level"},
			{Name: runtime.PointBatteryVoltage, Address: 825, RegisterClass: runtime.RegisterInput, WireType: runtime.WireUint16, Scale: 0.01, Unit: "V", Description: "Starting battery voltage"},
			{Name: runtime.PointStartCommand, Address: 900, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote start pulse coil"},
			{Name: runtime.PointStopCommand, Address: 901, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote stop pulse coil"},
		},
	}
	m.Index()
	return m
}
