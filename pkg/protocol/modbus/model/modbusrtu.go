package model

import (
	"container/list"
	"sync"
	"time"

	"go.bug.st/serial"
	"k8s.io/klog/v2"

	generator "gensetgateway/pkg/generator/runtime"
	modbus "gensetgateway/pkg/protocol/modbus/runtime"
	"gensetgateway/pkg/utils/binutil"
	"gensetgateway/pkg/utils/crcutil"
)

type ModbusRtu struct {
}

func (m *ModbusRtu) NewClients(transport *generator.Transport, timeout time.Duration) (*modbus.Clients, error) {
	mode := &serial.Mode{
		BaudRate: transport.BaudRate,
		Parity:   modbus.ParityToParity[transport.Parity],
		DataBits: transport.DataBits,
		StopBits: modbus.StopBitsToStopBits[transport.StopBits],
	}

	clients := &modbus.Clients{
		Messengers:   list.New(),
		Max:          1,
		Idle:         0,
		Mux:          &sync.Mutex{},
		NextRequest:  1,
		ConnRequests: make(map[uint64]chan modbus.Messenger, 0),
		NewMessenger: func() (modbus.Messenger, error) {
			port, err := serial.Open(transport.Path, mode)
			if err != nil {
				klog.V(2).InfoS("Failed to connect serial port", "path", transport.Path, "error", err)
				return nil, err
			}
			return &modbus.SerialClient{
				Timeout: timeout,
				Port:    port,
			}, nil
		},
	}
	return clients, nil
}

func (m *ModbusRtu) GenerateReadMessage(unitId byte, functionCode modbus.FunctionCode, startAddress uint16, quantity uint16, points []*modbus.PointParse) *modbus.DataFrame {
	// 01 03 00 00 00 0A C5 CD
	// 01  设备地址
	// 03  功能码
	// 00 00  起始地址
	// 00 0A  寄存器数量(word数量)/线圈数量
	// C5 CD  crc16检验码
	message := make([]byte, 6)
	message[0] = unitId
	message[1] = byte(functionCode)
	binutil.WriteUint16(message[2:], startAddress)
	binutil.WriteUint16(message[4:], quantity)
	crc16 := make([]byte, 2)
	binutil.WriteUint16(crc16, crcutil.CheckCrc16sum(message))
	message = append(message, crc16...)

	bytesLength := 0
	switch functionCode {
	case modbus.ReadCoilStatus, modbus.ReadInputStatus:
		if quantity%8 == 0 {
			bytesLength = int(quantity)/8 + modbus.RtuNonDataLength
		} else {
			bytesLength = int(quantity)/8 + 1 + modbus.RtuNonDataLength
		}
	case modbus.ReadHoldRegister, modbus.ReadInputRegister:
		bytesLength = int(quantity)*2 + modbus.RtuNonDataLength
	}

	df := &modbus.DataFrame{
		UnitId:            unitId,
		FunctionCode:      functionCode,
		StartAddress:      startAddress,
		Quantity:          quantity,
		TransactionId:     0,
		DataFrame:         message,
		ResponseDataFrame: make([]byte, bytesLength),
		Points:            make([]*modbus.PointParse, 0, len(points)),
	}
	df.Points = append(df.Points, points...)

	return df
}

func (m *ModbusRtu) GenerateWriteCoilMessage(unitId byte, address uint16, on bool) *modbus.DataFrame {
	// 01 05 00 01 FF 00 DD FA
	// FF 00  线圈接通  00 00  线圈断开
	message := make([]byte, 6)
	message[0] = unitId
	message[1] = byte(modbus.WriteSingleCoil)
	binutil.WriteUint16(message[2:], address)
	if on {
		binutil.WriteUint16(message[4:], modbus.CoilOn)
	} else {
		binutil.WriteUint16(message[4:], modbus.CoilOff)
	}
	crc16 := make([]byte, 2)
	binutil.WriteUint16(crc16, crcutil.CheckCrc16sum(message))
	message = append(message, crc16...)

	return &modbus.DataFrame{
		UnitId:        unitId,
		FunctionCode:  modbus.WriteSingleCoil,
		StartAddress:  address,
		Quantity:      1,
		TransactionId: 0,
		DataFrame:     message,
		// 写单个线圈的响应为请求报文原样返回
		ResponseDataFrame: make([]byte, 8),
	}
}
