package model

import (
	"gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/runtime/constant"
)

// Mebay DC series controllers, the usual fit for unbranded Chinese gensets.
// Compact zero based register block, metric units, word swapped pairs.
func mebayRegisterMap() *runtime.RegisterMap {
	m := &runtime.RegisterMap{
		Brand:        runtime.BrandMebay,
		MemoryLayout: constant.CDAB,
		Points: []*runtime.RegisterPoint{
			{Name: runtime.PointEngineStatus, Address: 0, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Engine state bit field"},
			{Name: runtime.PointPowerStatus, Address: 1, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Mains and transfer switch bit field"},
			{Name: runtime.PointAlarmBits, Address: 2, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Active alarm bit field"},
			{Name: runtime.PointFaultBits, Address: 3, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Latched fault bit field"},
			{Name: runtime.PointWarningBits, Address: 4, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Warning bit field"},
			{Name: runtime.PointVoltage, Address: 5, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Generator output voltage"},
			{Name: runtime.PointCurrent, Address: 6, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "A", Description: "Generator output current"},
			{Name: runtime.PointFrequency, Address: 7, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "Hz", Description: "Generator output frequency"},
			{Name: runtime.PointPower, Address: 8, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.1, Unit: "kW", Description: "Active power"},
			{Name: runtime.PointPowerFactor, Address: 9, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Scale: 0.01, Description: "Power factor"},
			{Name: runtime.PointOilTemperature, Address: 10, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Unit: "°C", Description: "Engine oil temperature"},
			{Name: runtime.PointCoolantTemperature, Address: 11, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Unit: "°C", Description: "Engine coolant temperature"},
			{Name: runtime.PointExhaustTemperature, Address: 12, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireInt16, Unit: "°C", Description: "Exhaust gas temperature"},
			{Name: runtime.PointRpm, Address: 13, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Unit: "RPM", Description: "Engine speed"},
			{Name: runtime.PointOilPressure, Address: 14, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Unit: "kPa", Description: "Engine oil pressure"},
			{Name: runtime.PointFuelPressure, Address: 15, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Unit: "kPa", Description: "Fuel supply pressure"},
			{Name: runtime.PointMainsVoltage, Address: 16, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Utility voltage"},
			{Name: runtime.PointRuntimeHours, Address: 17, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint32, Unit: "h", Description: "Cumulative engine runtime"},
			{Name: runtime.PointFuelLevel, Address: 19, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Unit: "%", Description: "Fuel tank level"},
			{Name: runtime.PointBatteryVoltage, Address: 20, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, Unit: "V", Description: "Starting battery voltage"},
			{Name: runtime.PointStartCommand, Address: 0, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote start pulse coil"},
			{Name: runtime.PointStopCommand, Address: 1, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote stop pulse coil"},
		},
	}
	m.Index()
	return m
}
