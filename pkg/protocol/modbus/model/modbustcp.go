package model

import (
	"container/list"
	"fmt"
	"net"
	"sync"
	"time"

	"k8s.io/klog/v2"

	generator "gensetgateway/pkg/generator/runtime"
	modbus "gensetgateway/pkg/protocol/modbus/runtime"
	"gensetgateway/pkg/utils/binutil"
)

type ModbusTcp struct {
}

func (m *ModbusTcp) NewClients(transport *generator.Transport, timeout time.Duration) (*modbus.Clients, error) {
	addr := fmt.Sprintf("%s:%d", transport.Host, transport.Port)
	clients := &modbus.Clients{
		Messengers:   list.New(),
		Max:          1,
		Idle:         0,
		Mux:          &sync.Mutex{},
		NextRequest:  1,
		ConnRequests: make(map[uint64]chan modbus.Messenger, 0),
		NewMessenger: func() (modbus.Messenger, error) {
			tunnel, err := net.DialTimeout("tcp", addr, timeout)
			if err != nil {
				klog.V(2).InfoS("Failed to connect modbus server", "address", addr, "error", err)
				return nil, err
			}
			return &modbus.TcpClient{
				Tunnel:  tunnel,
				Timeout: timeout,
			}, nil
		},
	}
	return clients, nil
}

func (m *ModbusTcp) GenerateReadMessage(unitId byte, functionCode modbus.FunctionCode, startAddress uint16, quantity uint16, points []*modbus.PointParse) *modbus.DataFrame {
	// 00 01 00 00 00 06 18 03 00 02 00 02
	// 00 01  此次通信事务处理标识符，一般每次通信之后将被要求加1以区别不同的通信数据报文
	// 00 00  表示协议标识符，00 00为modbus协议
	// 00 06  数据长度，用来指示接下来数据的长度，单位字节
	// 18  设备地址，用以标识连接在串行线或者网络上的远程服务端的地址。以上七个字节也被称为modbus报文头
	// 03  功能码，此时代码03为读取保持寄存器数据
	// 00 02  起始地址
	// 00 02  寄存器数量(word数量)/线圈数量
	message := make([]byte, 12)

	binutil.WriteUint16(message[2:], 0) // 协议版本
	binutil.WriteUint16(message[4:], 6) // 剩余长度
	message[6] = unitId
	message[7] = byte(functionCode)
	binutil.WriteUint16(message[8:], startAddress)
	binutil.WriteUint16(message[10:], quantity)

	bytesLength := 0
	switch functionCode {
	case modbus.ReadCoilStatus, modbus.ReadInputStatus:
		if quantity%8 == 0 {
			bytesLength = int(quantity)/8 + modbus.TcpNonDataLength
		} else {
			bytesLength = int(quantity)/8 + 1 + modbus.TcpNonDataLength
		}
	case modbus.ReadHoldRegister, modbus.ReadInputRegister:
		bytesLength = int(quantity)*2 + modbus.TcpNonDataLength
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

func (m *ModbusTcp) GenerateWriteCoilMessage(unitId byte, address uint16, on bool) *modbus.DataFrame {
	// 00 01 00 00 00 06 01 05 00 01 FF 00
	// 05  功能码，写单个线圈
	// FF 00  线圈接通  00 00  线圈断开
	message := make([]byte, 12)

	binutil.WriteUint16(message[2:], 0)
	binutil.WriteUint16(message[4:], 6)
	message[6] = unitId
	message[7] = byte(modbus.WriteSingleCoil)
	binutil.WriteUint16(message[8:], address)
	if on {
		binutil.WriteUint16(message[10:], modbus.CoilOn)
	} else {
		binutil.WriteUint16(message[10:], modbus.CoilOff)
	}

	return &modbus.DataFrame{
		UnitId:        unitId,
		FunctionCode:  modbus.WriteSingleCoil,
		StartAddress:  address,
		Quantity:      1,
		TransactionId: 0,
		DataFrame:     message,
		// 写单个线圈的响应为请求报文原样返回
		ResponseDataFrame: make([]byte, 12),
	}
}
