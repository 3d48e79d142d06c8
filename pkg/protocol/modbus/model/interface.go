package model

import (
	"time"

	generator "gensetgateway/pkg/generator/runtime"
	modbus "gensetgateway/pkg/protocol/modbus/runtime"
)

var _ ModbusModeler = (*ModbusTcp)(nil)
var _ ModbusModeler = (*ModbusRtu)(nil)

var ModbusModelers = map[generator.TransportType]ModbusModeler{
	generator.TransportTcp: &ModbusTcp{},
	generator.TransportRtu: &ModbusRtu{},
}

// ModbusModeler builds wire frames and the messenger pool for one
// transport flavor. NewClients never dials, the pool starts empty and an
// explicit connect primes it.
type ModbusModeler interface {
	GenerateReadMessage(unitId byte, functionCode modbus.FunctionCode, startAddress uint16, quantity uint16, points []*modbus.PointParse) *modbus.DataFrame
	GenerateWriteCoilMessage(unitId byte, address uint16, on bool) *modbus.DataFrame
	NewClients(transport *generator.Transport, timeout time.Duration) (*modbus.Clients, error)
}
