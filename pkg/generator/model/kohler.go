package model

import (
	"gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/runtime/constant"
)

// Kohler Decision-Maker family. Status words at 1000, all analog telemetry
// as float32 register pairs from 1010 up.
func kohlerRegisterMap() *runtime.RegisterMap {
	m := &runtime.RegisterMap{
		Brand:        runtime.BrandKohler,
		MemoryLayout: constant.ABCD,
		Points: []*runtime.RegisterPoint{
			{Name: runtime.PointEngineStatus, Address: 1000, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Engine state bit field"},
			{Name: runtime.PointPowerStatus, Address: 1001, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Mains and transfer switch bit field"},
			{Name: runtime.PointAlarmBits, Address: 1002, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Active alarm bit field"},
			{Name: runtime.PointFaultBits, Address: 1003, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Latched fault bit field"},
			{Name: runtime.PointWarningBits, Address: 1004, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Description: "Warning bit field"},
			{Name: runtime.PointVoltage, Address: 1010, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "V", Description: "Generator output voltage"},
			{Name: runtime.PointCurrent, Address: 1012, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "A", Description: "Generator output current"},
			{Name: runtime.PointFrequency, Address: 1014, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "Hz", Description: "Generator output frequency"},
			{Name: runtime.PointPower, Address: 1016, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "kW", Description: "Active power"},
			{Name: runtime.PointPowerFactor, Address: 1018, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Description: "Power factor"},
			{Name: runtime.PointOilTemperature, Address: 1020, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "°F", Description: "Engine oil temperature"},
			{Name: runtime.PointCoolantTemperature, Address: 1022, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "°F", Description: "Engine coolant temperature"},
			{Name: runtime.PointExhaustTemperature, Address: 1024, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "°F", Description: "Exhaust gas temperature"},
			{Name: runtime.PointRpm, Address: 1026, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "RPM", Description: "Engine speed"},
			{Name: runtime.PointOilPressure, Address: 1028, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "psi", Description: "Engine oil pressure"},
			{Name: runtime.PointFuelPressure, Address: 1030, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "psi", Description: "Fuel supply pressure"},
			{Name: runtime.PointMainsVoltage, Address: 1032, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "V", Description: "Utility voltage"},
			{Name: runtime.PointRuntimeHours, Address: 1034, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "h", Description: "Cumulative engine runtime"},
			{Name: runtime.PointFuelLevel, Address: 1036, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "%", Description: "Fuel tank level"},
			{Name: runtime.PointBatteryVoltage, Address: 1038, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireFloat32, Unit: "V", Description: "Starting battery voltage"},
			{Name: runtime.PointStartCommand, Address: 1100, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote start pulse coil"},
			{Name: runtime.PointStopCommand, Address: 1101, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite, Description: "Remote stop pulse coil"},
		},
	}
	m.Index()
	return m
}
