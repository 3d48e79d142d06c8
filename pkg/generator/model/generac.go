package model

import (
	"gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/runtime/constant"
)

// Generac air cooled and Guardian family controllers. Hex register numbering
// starting at 0x0001, every telemetry word in the holding space.
func generacRegisterMap() *runtime.RegisterMap {
	m := &runtime.RegisterMap{
		Brand:        runtime.BrandGenerac,
		MemoryLayout: constant.ABCD,
		Points: []*runtime.RegisterPoint{
			{Name: runtime.PointEngineStatus, Address: 0x0001, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Engine state bit field"},
			{Name: runtime.PointPowerStatus, Address: 0x0002, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Mains and transfer switch bit field"},
			{Name: runtime.PointAlarmBits, Address: 0x0003, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Active alarm bit field"},
			{Name: runtime.PointFaultBits, Address: 0x0004, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Latched fault bit field"},
			{Name: runtime.PointWarningBits, Address: 0x0005, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Warning bit field"},
			{Name: runtime.PointVoltage, Address: 0x0006, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Generator output voltage"},
			{Name: runtime.PointCurrent, Address: 0x0007, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "A", Description: "Generator output current"},
			{Name: runtime.PointFrequency, Address: 0x0008, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.01, Unit: "Hz", Description: "Generator output frequency"},
			{Name: runtime.PointPower, Address: 0x0009, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.1, Unit: "kW", Description: "Active power"},
			{Name: runtime.PointPowerFactor, Address: 0x000A, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.01, Description: "Power factor"},
			{Name: runtime.PointOilTemperature, Address: 0x000B, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.1, Unit: "°F", Description: "Engine oil temperature"},
			{Name: runtime.PointCoolantTemperature, Address: 0x000C, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.1, Unit: "°F", Description: "Engine coolant temperature"},
			{Name: runtime.PointExhaustTemperature, Address: 0x000D, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.1, Unit: "°F", Description: "Exhaust gas temperature"},
			{Name: runtime.PointRpm, Address: 0x000E, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Unit: "RPM", Description: "Engine speed"},
			{Name: runtime.PointOilPressure, Address: 0x000F, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "psi", Description: "Engine oil pressure"},
			{Name: runtime.PointFuelPressure, Address: 0x0010, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "psi", Description: "Fuel supply pressure"},
			{Name: runtime.PointMainsVoltage, Address: 0x0011, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Utility voltage"},
			{Name: runtime.PointRuntimeHours, Address: 0x0012, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint32, Scale: 0.1, Unit: "h", Description: "Cumulative engine runtime"},
			{Name: runtime.PointFuelLevel, Address: 0x0014, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "%", Description: "Fuel tank level"},
			{Name: runtime.PointBatteryVoltage, Address: 0x0015, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Starting battery voltage"},
			{Name: runtime.PointStartCommand, Address: 0x0001, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote start pulse coil"},
			{Name: runtime.PointStopCommand, Address: 0x0002, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote stop pulse coil"},
		},
	}
	m.Index()
	return m
}
