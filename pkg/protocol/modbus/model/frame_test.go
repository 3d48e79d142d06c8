package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	modbus "gensetgateway/pkg/protocol/modbus/runtime"
)

func TestTcpGenerateReadMessage(t *testing.T) {
	m := &ModbusTcp{}
	df := m.GenerateReadMessage(0x18, modbus.ReadHoldRegister, 2, 2, nil)
	df.WriteTransactionId()

	expect := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x18, 0x03, 0x00, 0x02, 0x00, 0x02}
	assert.Equal(t, expect, df.DataFrame)
	assert.Equal(t, 2*2+modbus.TcpNonDataLength, len(df.ResponseDataFrame))
}

func TestTcpTransactionIdIncrements(t *testing.T) {
	m := &ModbusTcp{}
	df := m.GenerateReadMessage(0x01, modbus.ReadHoldRegister, 0, 1, nil)
	df.WriteTransactionId()
	df.WriteTransactionId()
	df.WriteTransactionId()

	assert.Equal(t, uint16(3), df.TransactionId)
	assert.Equal(t, []byte{0x00, 0x03}, df.DataFrame[:2])
}

func TestRtuGenerateReadMessage(t *testing.T) {
	m := &ModbusRtu{}
	df := m.GenerateReadMessage(0x01, modbus.ReadHoldRegister, 0, 10, nil)

	expect := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A, 0xC5, 0xCD}
	assert.Equal(t, expect, df.DataFrame)
	assert.Equal(t, 10*2+modbus.RtuNonDataLength, len(df.ResponseDataFrame))
}

func TestRtuGenerateReadCoilMessage(t *testing.T) {
	m := &ModbusRtu{}
	df := m.GenerateReadMessage(0x01, modbus.ReadCoilStatus, 0, 10, nil)

	assert.Equal(t, byte(modbus.ReadCoilStatus), df.DataFrame[1])
	// 10 coils pack into 2 data bytes
	assert.Equal(t, 2+modbus.RtuNonDataLength, len(df.ResponseDataFrame))
}

func TestRtuGenerateWriteCoilMessage(t *testing.T) {
	m := &ModbusRtu{}

	on := m.GenerateWriteCoilMessage(0x01, 1, true)
	assert.Equal(t, []byte{0x01, 0x05, 0x00, 0x01, 0xFF, 0x00, 0xDD, 0xFA}, on.DataFrame)

	off := m.GenerateWriteCoilMessage(0x01, 1, false)
	assert.Equal(t, []byte{0x01, 0x05, 0x00, 0x01, 0x00, 0x00, 0x9C, 0x0A}, off.DataFrame)
}

func TestTcpGenerateWriteCoilMessage(t *testing.T) {
	m := &ModbusTcp{}
	df := m.GenerateWriteCoilMessage(0x01, 2, true)
	df.WriteTransactionId()

	expect := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01, 0x05, 0x00, 0x02, 0xFF, 0x00}
	assert.Equal(t, expect, df.DataFrame)
	assert.Equal(t, 12, len(df.ResponseDataFrame))
}
