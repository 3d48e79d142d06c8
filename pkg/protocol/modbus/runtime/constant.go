package runtime

import (
	"errors"

	"go.bug.st/serial"

	"gensetgateway/pkg/runtime/constant"
)

type FunctionCode uint8

const (
	ReadCoilStatus      FunctionCode = 0x01
	ReadInputStatus     FunctionCode = 0x02
	ReadHoldRegister    FunctionCode = 0x03
	ReadInputRegister   FunctionCode = 0x04
	WriteSingleCoil     FunctionCode = 0x05
	WriteSingleRegister FunctionCode = 0x06
)

// The protocol caps one request at 125 words or 2000 coils. Kept a shade
// under, some controllers refuse frames near the limit.
const (
	PerRequestMaxRegister = 122
	PerRequestMaxCoil     = 1967
)

const (
	// TcpNonDataLength MBAP header(6) + unit id(1) + function code(1) + byte count(1)
	TcpNonDataLength = 9
	// TcpHeaderLength MBAP header before the unit id
	TcpHeaderLength = 6
	// RtuNonDataLength unit id(1) + function code(1) + byte count(1) + crc16(2)
	RtuNonDataLength = 5
)

const (
	CoilOn  uint16 = 0xFF00
	CoilOff uint16 = 0x0000
)

var (
	ErrModbusBadConn              = errors.New("modbus bad connection")
	ErrModbusServerBadResp        = errors.New("modbus server bad response")
	ErrMessageTransaction         = errors.New("modbus message transaction not match")
	ErrMessageSlave               = errors.New("modbus message unit id not match")
	ErrMessageDataLengthNotEnough = errors.New("modbus message data length not enough")
	ErrMessageFunctionCodeError   = errors.New("modbus message function code error")
	ErrMessageCoilEcho            = errors.New("modbus write coil echo not match")
	ErrCRC16Error                 = errors.New("modbus message crc16 check failed")
	ErrManyRetry                  = errors.New("modbus ask retry more than three times")
	ErrMessengerClosed            = errors.New("modbus messenger pool closed")
	ErrNotConnected               = errors.New("modbus controller not connected")
)

var ParityToParity = map[constant.Parity]serial.Parity{
	constant.NoParity:    serial.NoParity,
	constant.OddParity:   serial.OddParity,
	constant.EvenParity:  serial.EvenParity,
	constant.MarkParity:  serial.MarkParity,
	constant.SpaceParity: serial.SpaceParity,
}

var StopBitsToStopBits = map[constant.StopBits]serial.StopBits{
	constant.OneStopBit:           serial.OneStopBit,
	constant.OnePointFiveStopBits: serial.OnePointFiveStopBits,
	constant.TwoStopBits:          serial.TwoStopBits,
}
