package modbus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
	"k8s.io/klog/v2"

	generator "gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/protocol/modbus/model"
	modbus "gensetgateway/pkg/protocol/modbus/runtime"
	"gensetgateway/pkg/runtime/constant"
	"gensetgateway/pkg/utils/binutil"
	"gensetgateway/pkg/utils/crcutil"
)

/**
modbus 协议 ADU = 地址(1) + pdu(253) + 16位校验(2) = 256
modbus tcp报文
tcp报文头(6)  +  地址(1)   +   pdu(253) = 260
modbus rtu报文
地址(1) + pdu(253) + 16位校验(2) = 256
*/

var registerClassToFunctionCode = map[generator.RegisterClass]modbus.FunctionCode{
	generator.RegisterHolding:  modbus.ReadHoldRegister,
	generator.RegisterInput:    modbus.ReadInputRegister,
	generator.RegisterCoil:     modbus.ReadCoilStatus,
	generator.RegisterDiscrete: modbus.ReadInputStatus,
}

type frameResult struct {
	frame *modbus.DataFrame
	raw   map[string][]byte
	err   error
}

// ModbusClient drives one generator controller over a single serialized
// link. Read sweeps walk the prebuilt frames, command coils are written
// through the same messenger pool so they interleave with polling without
// overlapping on the wire.
type ModbusClient struct {
	NeedCheckTransaction     bool
	NeedCheckCrc16Sum        bool
	UnitId                   byte
	RegisterMap              *generator.RegisterMap
	Clients                  *modbus.Clients
	FunctionCodeDataFrameMap map[modbus.FunctionCode][]*modbus.DataFrame
	PointCount               int

	modeler             model.ModbusModeler
	leastResponseLength int
	timeout             time.Duration
	retryDelay          time.Duration
	maxRetries          int

	connected *atomic.Bool
	eventCh   chan generator.TransportEvent

	mux            sync.Mutex
	halted         bool
	retryCount     int
	reconnectTimer *time.Timer
}

// NewModbusClient prepares frames and the messenger pool without dialing,
// the controller is only reached by an explicit Connect.
func NewModbusClient(profile *generator.GeneratorProfile, registerMap *generator.RegisterMap) (*ModbusClient, error) {
	if profile.Transport == nil {
		return nil, &generator.ConfigurationError{Reason: "transport not configured"}
	}
	modeler, ok := model.ModbusModelers[profile.Transport.Type]
	if !ok {
		return nil, &generator.ConfigurationError{Reason: "unsupported transport type"}
	}

	needCheckTransaction := false
	needCheckCrc16Sum := false
	leastResponseLength := 0
	switch profile.Transport.Type {
	case generator.TransportTcp:
		needCheckTransaction = true
		leastResponseLength = modbus.TcpNonDataLength
	case generator.TransportRtu:
		needCheckCrc16Sum = true
		leastResponseLength = modbus.RtuNonDataLength
	}

	pollPoints := registerMap.PollPoints()
	if len(pollPoints) == 0 {
		return nil, &generator.ConfigurationError{Reason: "register map has no readable points"}
	}

	functionCodeDataFrameMap := make(map[modbus.FunctionCode][]*modbus.DataFrame, 0)
	functionCodePointMap := make(map[modbus.FunctionCode][]*generator.RegisterPoint, 0)
	for _, point := range pollPoints {
		code := registerClassToFunctionCode[point.RegisterClass]
		functionCodePointMap[code] = append(functionCodePointMap[code], point)
	}
	for code, points := range functionCodePointMap {
		sort.Slice(points, func(i, j int) bool { return points[i].Address < points[j].Address })
		dfs := make([]*modbus.DataFrame, 0)
		startAddress := points[0].Address
		var quantity uint16 = 0
		pps := make([]*modbus.PointParse, 0)
		switch code {
		case modbus.ReadCoilStatus, modbus.ReadInputStatus:
			dataFrameDataLength := startAddress + modbus.PerRequestMaxCoil
			for i := 0; i < len(points); i++ {
				point := points[i]
				if point.Address <= dataFrameDataLength {
					pp := &modbus.PointParse{
						Point: point,
						Start: point.Address - startAddress,
					}
					pps = append(pps, pp)
					quantity = point.Address - startAddress + 1
				} else {
					df := modeler.GenerateReadMessage(profile.UnitId, code, startAddress, quantity, pps)
					dfs = append(dfs, df)
					pps = pps[:0:0]
					quantity = 0
					startAddress = point.Address
					dataFrameDataLength = startAddress + modbus.PerRequestMaxCoil
					i--
				}
			}
		case modbus.ReadHoldRegister, modbus.ReadInputRegister:
			dataFrameDataLength := startAddress + modbus.PerRequestMaxRegister
			for i := 0; i < len(points); i++ {
				point := points[i]
				if point.Address+point.Words() <= dataFrameDataLength {
					pp := &modbus.PointParse{
						Point: point,
						Start: (point.Address - startAddress) * 2,
					}
					pps = append(pps, pp)
					quantity = point.Address - startAddress + point.Words()
				} else {
					df := modeler.GenerateReadMessage(profile.UnitId, code, startAddress, quantity, pps)
					dfs = append(dfs, df)
					pps = pps[:0:0]
					quantity = 0
					startAddress = point.Address
					dataFrameDataLength = startAddress + modbus.PerRequestMaxRegister
					i--
				}
			}
		}
		if len(pps) > 0 {
			df := modeler.GenerateReadMessage(profile.UnitId, code, startAddress, quantity, pps)
			dfs = append(dfs, df)
			pps = pps[:0:0]
		}
		functionCodeDataFrameMap[code] = append(functionCodeDataFrameMap[code], dfs...)
	}

	timeout := time.Duration(profile.Timeout) * time.Millisecond
	clients, err := modeler.NewClients(profile.Transport, timeout)
	if err != nil {
		return nil, &generator.ConfigurationError{Reason: err.Error()}
	}

	mc := &ModbusClient{
		NeedCheckTransaction:     needCheckTransaction,
		NeedCheckCrc16Sum:        needCheckCrc16Sum,
		UnitId:                   profile.UnitId,
		RegisterMap:              registerMap,
		Clients:                  clients,
		FunctionCodeDataFrameMap: functionCodeDataFrameMap,
		PointCount:               len(pollPoints),
		modeler:                  modeler,
		leastResponseLength:      leastResponseLength,
		timeout:                  timeout,
		retryDelay:               time.Duration(profile.RetryDelay) * time.Millisecond,
		maxRetries:               profile.MaxRetries,
		connected:                atomic.NewBool(false),
		eventCh:                  make(chan generator.TransportEvent, 16),
		halted:                   true,
	}
	return mc, nil
}

// Connect primes the messenger pool. Calling it while connected is a
// no-op, calling it after the retry budget ran out re-arms reconnection.
func (c *ModbusClient) Connect(ctx context.Context) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.connected.Load() {
		return nil
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.halted = false
	c.retryCount = 0

	messenger, err := c.Clients.NewMessenger()
	if err != nil {
		return &generator.TransportError{Op: "connect", Err: fmt.Errorf("%w: %v", constant.ErrConnectController, err)}
	}
	c.Clients.ReleaseMessenger(messenger)
	c.connected.Store(true)
	c.pushEvent(generator.TransportConnected, nil)
	klog.V(1).InfoS("Succeeded to connect generator controller")
	return nil
}

// Disconnect tears the link down and cancels any pending reconnect. It is
// safe to call in any state.
func (c *ModbusClient) Disconnect(ctx context.Context) error {
	c.mux.Lock()
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.halted = true
	c.retryCount = 0
	wasConnected := c.connected.Swap(false)
	c.mux.Unlock()

	c.Clients.Destroy(ctx)
	if wasConnected {
		c.pushEvent(generator.TransportDisconnected, nil)
	}
	klog.V(1).InfoS("Disconnected generator controller")
	return nil
}

func (c *ModbusClient) Connected() bool {
	return c.connected.Load()
}

// Events exposes link state transitions. The channel is buffered, a slow
// subscriber loses events instead of stalling the data path.
func (c *ModbusClient) Events() <-chan generator.TransportEvent {
	return c.eventCh
}

// ReadRegisters sweeps every readable point once. Frame failures degrade
// to per register errors in map order, the sweep itself never aborts.
func (c *ModbusClient) ReadRegisters(ctx context.Context) *generator.RawResult {
	result := &generator.RawResult{
		Timestamp:        time.Now().UTC(),
		Raw:              make(map[string][]byte, c.PointCount),
		ConnectionStatus: generator.Connected,
	}

	if !c.connected.Load() {
		result.ConnectionStatus = generator.Disconnected
		for _, point := range c.RegisterMap.PollPoints() {
			rre := &generator.RegisterReadError{Register: point.Name, Cause: "controller not connected"}
			result.Errors = append(result.Errors, rre.Error())
		}
		return result
	}

	sw := &sync.WaitGroup{}
	frCh := make(chan *frameResult, 0)
	for _, dataFrames := range c.FunctionCodeDataFrameMap {
		for _, frame := range dataFrames {
			sw.Add(1)
			go c.message(ctx, frame, frCh, sw)
		}
	}

	failed := make(map[string]string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for fr := range frCh {
			if fr.err != nil {
				for _, pp := range fr.frame.Points {
					failed[pp.Point.Name] = fr.err.Error()
				}
			} else {
				for name, data := range fr.raw {
					result.Raw[name] = data
				}
			}
		}
	}()
	sw.Wait()
	close(frCh)
	<-done

	for _, point := range c.RegisterMap.PollPoints() {
		if cause, ok := failed[point.Name]; ok {
			rre := &generator.RegisterReadError{Register: point.Name, Cause: cause}
			result.Errors = append(result.Errors, rre.Error())
		}
	}
	if !c.connected.Load() {
		result.ConnectionStatus = generator.ConnectionError
	}
	return result
}

// WriteCoil pulses or releases one command coil and verifies the echoed
// response. The link drop path arms the reconnect timer like a failed
// read sweep does.
func (c *ModbusClient) WriteCoil(ctx context.Context, point *generator.RegisterPoint, on bool) error {
	if !c.connected.Load() {
		return &generator.TransportError{Op: "write", Err: modbus.ErrNotConnected}
	}

	dataFrame := c.modeler.GenerateWriteCoilMessage(c.UnitId, point.Address, on)
	messenger, err := c.Clients.GetMessenger(ctx)
	if err != nil {
		klog.V(2).InfoS("Failed to get messenger", "error", err)
		return &generator.TransportError{Op: "write", Err: err}
	}
	defer c.Clients.ReleaseMessenger(messenger)

	if err := c.retry(func(messenger modbus.Messenger, dataFrame *modbus.DataFrame) error {
		if c.NeedCheckTransaction {
			dataFrame.WriteTransactionId()
		}
		if _, err := messenger.AskAtLeast(dataFrame.DataFrame, dataFrame.ResponseDataFrame, c.leastResponseLength); err != nil {
			return modbus.ErrModbusBadConn
		}
		if err := c.validateWriteEcho(dataFrame); err != nil {
			return modbus.ErrModbusServerBadResp
		}
		return nil
	}, messenger, dataFrame); err != nil {
		klog.V(2).InfoS("Failed to write command coil", "register", point.Name, "error", err)
		if errors.Is(err, modbus.ErrModbusBadConn) {
			c.markDisconnected(err)
		}
		return &generator.TransportError{Op: "write", Err: err}
	}

	klog.V(2).InfoS("Succeeded to write command coil", "register", point.Name, "on", on)
	return nil
}

// Probe checks reachability with a throwaway link and a single register
// read. Monitor state and the pooled messenger stay untouched unless the
// client is already connected, then the probe rides the pool.
func (c *ModbusClient) Probe(ctx context.Context) error {
	pooled := c.connected.Load()
	var messenger modbus.Messenger
	var err error
	if pooled {
		messenger, err = c.Clients.GetMessenger(ctx)
		if err != nil {
			return &generator.TransportError{Op: "probe", Err: err}
		}
		defer c.Clients.ReleaseMessenger(messenger)
	} else {
		messenger, err = c.Clients.NewMessenger()
		if err != nil {
			return &generator.TransportError{Op: "probe", Err: err}
		}
		defer messenger.Close()
	}

	point := c.RegisterMap.PollPoints()[0]
	code := registerClassToFunctionCode[point.RegisterClass]
	quantity := point.Words()
	if code == modbus.ReadCoilStatus || code == modbus.ReadInputStatus {
		quantity = 1
	}
	dataFrame := c.modeler.GenerateReadMessage(c.UnitId, code, point.Address, quantity, []*modbus.PointParse{{Point: point, Start: 0}})
	if c.NeedCheckTransaction {
		dataFrame.WriteTransactionId()
	}
	if _, err := messenger.AskAtLeast(dataFrame.DataFrame, dataFrame.ResponseDataFrame, c.leastResponseLength); err != nil {
		return &generator.TransportError{Op: "probe", Err: err}
	}
	if _, err := c.ValidateAndExtractMessage(dataFrame); err != nil {
		return &generator.TransportError{Op: "probe", Err: err}
	}
	return nil
}

func (c *ModbusClient) message(ctx context.Context, dataFrame *modbus.DataFrame, frCh chan<- *frameResult, sw *sync.WaitGroup) {
	defer sw.Done()
	defer func() {
		if err := recover(); err != nil {
			klog.V(2).InfoS("Failed to ask controller message", "error", err)
		}
	}()
	messenger, err := c.Clients.GetMessenger(ctx)
	if err != nil {
		klog.V(2).InfoS("Failed to get messenger", "error", err)
		frCh <- &frameResult{frame: dataFrame, err: err}
		return
	}
	defer c.Clients.ReleaseMessenger(messenger)

	var buf []byte
	if err := c.retry(func(messenger modbus.Messenger, dataFrame *modbus.DataFrame) error {
		if c.NeedCheckTransaction {
			dataFrame.WriteTransactionId()
		}
		_, err := messenger.AskAtLeast(dataFrame.DataFrame, dataFrame.ResponseDataFrame, c.leastResponseLength)
		if err != nil {
			return modbus.ErrModbusBadConn
		}
		buf, err = c.ValidateAndExtractMessage(dataFrame)
		if err != nil {
			return modbus.ErrModbusServerBadResp
		}
		return nil
	}, messenger, dataFrame); err != nil {
		klog.V(2).InfoS("Failed to ask controller", "functionCode", dataFrame.FunctionCode, "startAddress", dataFrame.StartAddress, "error", err)
		if errors.Is(err, modbus.ErrModbusBadConn) {
			c.markDisconnected(err)
		}
		frCh <- &frameResult{frame: dataFrame, err: err}
		return
	}

	frCh <- &frameResult{frame: dataFrame, raw: dataFrame.ParsePointBytes(buf)}
}

// retry re-asks up to three times. A dead messenger is swapped for a
// fresh one without burning a retry, capped so a half open link cannot
// spin here forever.
func (c *ModbusClient) retry(fun func(messenger modbus.Messenger, dataFrame *modbus.DataFrame) error, messenger modbus.Messenger, dataFrame *modbus.DataFrame) error {
	resets := 0
	for i := 0; i < 3; i++ {
		err := fun(messenger, dataFrame)
		if err == nil {
			return nil
		} else if errors.Is(err, modbus.ErrModbusBadConn) {
			if resets >= 3 {
				return modbus.ErrModbusBadConn
			}
			messenger.Close()
			newMessenger, nerr := c.Clients.NewMessenger()
			if nerr != nil {
				return modbus.ErrModbusBadConn
			}
			messenger.Reset(newMessenger)
			resets++
			i = i - 1
		} else {
			klog.V(2).InfoS("Failed to ask controller", "error", err)
		}
	}
	return modbus.ErrManyRetry
}

func (c *ModbusClient) ValidateAndExtractMessage(df *modbus.DataFrame) ([]byte, error) {
	buf := df.ResponseDataFrame[:]

	if c.NeedCheckTransaction {
		transactionId := binutil.ParseUint16BigEndian(buf[:2])
		if transactionId != df.TransactionId {
			klog.V(2).InfoS("Failed to match message transaction id", "requestTransactionId", df.TransactionId, "responseTransactionId", transactionId)
			return nil, modbus.ErrMessageTransaction
		}
		buf = buf[modbus.TcpHeaderLength:]
	}

	if buf[0] != df.UnitId {
		klog.V(2).InfoS("Failed to match unit id", "requestUnitId", df.UnitId, "responseUnitId", buf[0])
		return nil, modbus.ErrMessageSlave
	}
	functionCode := buf[1]
	if functionCode&0x80 > 0 {
		klog.V(2).InfoS("Failed to parse modbus message", "errorCode", functionCode-128)
		return nil, modbus.ErrMessageFunctionCodeError
	}

	byteDataLength := buf[2]
	if c.NeedCheckCrc16Sum {
		if int(byteDataLength)+5 != len(buf) {
			klog.V(2).InfoS("Failed to get message enough length")
			return nil, modbus.ErrMessageDataLengthNotEnough
		}
		checkBufData := buf[:byteDataLength+3]
		sum := crcutil.CheckCrc16sum(checkBufData)
		crc := binutil.ParseUint16BigEndian(buf[byteDataLength+3 : byteDataLength+5])
		if sum != crc {
			klog.V(2).InfoS("Failed to check CRC16")
			return nil, modbus.ErrCRC16Error
		}
	} else {
		if int(byteDataLength)+3 != len(buf) {
			klog.V(2).InfoS("Failed to get message enough length")
			return nil, modbus.ErrMessageDataLengthNotEnough
		}
	}

	var bb []byte
	switch modbus.FunctionCode(functionCode) {
	case modbus.ReadCoilStatus, modbus.ReadInputStatus:
		// 数组解压
		bb = binutil.ExpandBool(buf[3:], int(byteDataLength))
	case modbus.ReadHoldRegister, modbus.ReadInputRegister:
		bb = binutil.Dup(buf[3 : 3+int(byteDataLength)])
	default:
		klog.V(2).InfoS("Unsupported function code", "functionCode", functionCode)
	}

	return bb, nil
}

// validateWriteEcho checks the function 05 response, which is the request
// played back.
func (c *ModbusClient) validateWriteEcho(df *modbus.DataFrame) error {
	buf := df.ResponseDataFrame[:]
	request := df.DataFrame[:]

	if c.NeedCheckTransaction {
		transactionId := binutil.ParseUint16BigEndian(buf[:2])
		if transactionId != df.TransactionId {
			klog.V(2).InfoS("Failed to match message transaction id", "requestTransactionId", df.TransactionId, "responseTransactionId", transactionId)
			return modbus.ErrMessageTransaction
		}
		buf = buf[modbus.TcpHeaderLength:]
		request = request[modbus.TcpHeaderLength:]
	}

	if buf[0] != df.UnitId {
		return modbus.ErrMessageSlave
	}
	if buf[1]&0x80 > 0 {
		klog.V(2).InfoS("Failed to write coil", "errorCode", buf[2])
		return modbus.ErrMessageFunctionCodeError
	}
	if c.NeedCheckCrc16Sum {
		sum := crcutil.CheckCrc16sum(buf[:6])
		crc := binutil.ParseUint16BigEndian(buf[6:8])
		if sum != crc {
			return modbus.ErrCRC16Error
		}
	}
	if !bytes.Equal(buf[2:6], request[2:6]) {
		klog.V(2).InfoS("Failed to match write coil echo", "request", request[2:6], "response", buf[2:6])
		return modbus.ErrMessageCoilEcho
	}
	return nil
}

func (c *ModbusClient) markDisconnected(err error) {
	if !c.connected.Swap(false) {
		return
	}
	klog.V(1).InfoS("Lost generator controller link", "error", err)
	c.pushEvent(generator.TransportFaulted, err)
	c.pushEvent(generator.TransportDisconnected, nil)
	c.scheduleReconnect()
}

// scheduleReconnect arms a single timer. Consecutive failed attempts
// count against the retry budget, a success or an explicit Connect
// resets it.
func (c *ModbusClient) scheduleReconnect() {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.halted || c.reconnectTimer != nil {
		return
	}
	if c.retryCount >= c.maxRetries {
		klog.V(1).InfoS("Stopped reconnecting generator controller, retries exhausted", "maxRetries", c.maxRetries)
		c.pushEvent(generator.TransportFaulted, modbus.ErrManyRetry)
		return
	}
	c.reconnectTimer = time.AfterFunc(c.retryDelay, c.reconnect)
}

func (c *ModbusClient) reconnect() {
	c.mux.Lock()
	c.reconnectTimer = nil
	if c.halted {
		c.mux.Unlock()
		return
	}
	c.retryCount++
	attempt := c.retryCount
	c.mux.Unlock()

	messenger, err := c.Clients.NewMessenger()
	if err != nil {
		klog.V(2).InfoS("Failed to reconnect generator controller", "attempt", attempt, "error", err)
		c.pushEvent(generator.TransportFaulted, err)
		c.scheduleReconnect()
		return
	}
	c.Clients.ReleaseMessenger(messenger)
	c.connected.Store(true)
	c.mux.Lock()
	c.retryCount = 0
	c.mux.Unlock()
	klog.V(1).InfoS("Succeeded to reconnect generator controller", "attempt", attempt)
	c.pushEvent(generator.TransportConnected, nil)
}

func (c *ModbusClient) pushEvent(t generator.TransportEventType, err error) {
	select {
	case c.eventCh <- generator.TransportEvent{Type: t, Err: err}:
	default:
		klog.V(5).InfoS("Dropped transport event, subscriber not keeping up", "type", generator.TransportEventTypeToString[t])
	}
}
