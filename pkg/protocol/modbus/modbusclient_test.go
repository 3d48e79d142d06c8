package modbus

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbrandon/mbserver"

	generator "gensetgateway/pkg/generator/runtime"
	modbus "gensetgateway/pkg/protocol/modbus/runtime"
	"gensetgateway/pkg/runtime/constant"
)

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func startServer(t *testing.T, port int) *mbserver.Server {
	serv := mbserver.NewServer()
	require.NoError(t, serv.ListenTCP(fmt.Sprintf("127.0.0.1:%d", port)))
	return serv
}

func testRegisterMap(t *testing.T) *generator.RegisterMap {
	m := &generator.RegisterMap{
		Brand:        generator.BrandCustom,
		MemoryLayout: constant.ABCD,
		Points: []*generator.RegisterPoint{
			{Name: "voltage", Address: 0, RegisterClass: generator.RegisterHolding, WireType: generator.WireUint16, Scale: 0.1},
			{Name: "rpm", Address: 2, RegisterClass: generator.RegisterHolding, WireType: generator.WireUint16},
			{Name: "runtimeHours", Address: 3, RegisterClass: generator.RegisterHolding, WireType: generator.WireUint32, Scale: 0.1},
			{Name: "coolantTemp", Address: 10, RegisterClass: generator.RegisterInput, WireType: generator.WireInt16, Scale: 0.1},
			{Name: "breakerClosed", Address: 5, RegisterClass: generator.RegisterCoil, WireType: generator.WireBool},
			{Name: "mainsPresent", Address: 7, RegisterClass: generator.RegisterDiscrete, WireType: generator.WireBool},
			{Name: "startCommand", Address: 100, RegisterClass: generator.RegisterCoil, WireType: generator.WireBool, AccessMode: constant.AccessModeReadWrite},
		},
	}
	m.Index()
	require.NoError(t, m.Validate())
	return m
}

func testProfile(port int) *generator.GeneratorProfile {
	return &generator.GeneratorProfile{
		Brand:      "custom",
		Transport:  &generator.Transport{Type: generator.TransportTcp, Host: "127.0.0.1", Port: port},
		UnitId:     1,
		Timeout:    500,
		RetryDelay: 20,
		MaxRetries: 3,
	}
}

func TestReadRegistersSweep(t *testing.T) {
	port := freePort(t)
	serv := startServer(t, port)
	defer serv.Close()

	serv.HoldingRegisters[0] = 2470 // voltage 247.0
	serv.HoldingRegisters[2] = 1800
	serv.HoldingRegisters[3] = 0x0001 // runtimeHours 123456 raw
	serv.HoldingRegisters[4] = 0xE240
	serv.InputRegisters[10] = 754 // coolantTemp 75.4
	serv.Coils[5] = 1
	serv.DiscreteInputs[7] = 1

	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(port), registerMap)
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background())

	raw := client.ReadRegisters(context.Background())
	require.Empty(t, raw.Errors)
	assert.Equal(t, generator.Connected, raw.ConnectionStatus)

	result := generator.DecodeResult(registerMap, raw)
	require.Empty(t, result.Errors)
	assert.Equal(t, 247.0, result.Values["voltage"])
	assert.Equal(t, 1800.0, result.Values["rpm"])
	assert.InDelta(t, 12345.6, result.Values["runtimeHours"].(float64), 0.01)
	assert.Equal(t, 75.4, result.Values["coolantTemp"])
	assert.Equal(t, true, result.Values["breakerClosed"])
	assert.Equal(t, true, result.Values["mainsPresent"])

	select {
	case event := <-client.Events():
		assert.Equal(t, generator.TransportConnected, event.Type)
	default:
		t.Fatal("expected a connected event")
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	port := freePort(t)
	serv := startServer(t, port)
	defer serv.Close()

	client, err := NewModbusClient(testProfile(port), testRegisterMap(t))
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background())

	assert.True(t, client.Connected())
	// a second connect must not stack another pooled messenger
	assert.Equal(t, 1, client.Clients.Idle)
}

func TestReadRegistersPartialFailure(t *testing.T) {
	port := freePort(t)
	serv := startServer(t, port)
	defer serv.Close()

	serv.HoldingRegisters[0] = 2400
	serv.RegisterFunctionHandler(4, func(s *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		return []byte{}, &mbserver.SlaveDeviceFailure
	})

	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(port), registerMap)
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background())

	raw := client.ReadRegisters(context.Background())
	assert.Equal(t, generator.Connected, raw.ConnectionStatus)
	require.Len(t, raw.Errors, 1)
	assert.Contains(t, raw.Errors[0], "coolantTemp")

	result := generator.DecodeResult(registerMap, raw)
	assert.Equal(t, 240.0, result.Values["voltage"])
	_, ok := result.Values["coolantTemp"]
	assert.False(t, ok)
}

func TestWriteCoilRoundTrip(t *testing.T) {
	port := freePort(t)
	serv := startServer(t, port)
	defer serv.Close()

	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(port), registerMap)
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background())

	point, err := registerMap.CommandPoint("startCommand")
	require.NoError(t, err)

	require.NoError(t, client.WriteCoil(context.Background(), point, true))
	assert.Equal(t, byte(1), serv.Coils[100])

	require.NoError(t, client.WriteCoil(context.Background(), point, false))
	assert.Equal(t, byte(0), serv.Coils[100])
}

func TestReadRegistersDisconnected(t *testing.T) {
	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(freePort(t)), registerMap)
	require.NoError(t, err)

	raw := client.ReadRegisters(context.Background())
	assert.Equal(t, generator.Disconnected, raw.ConnectionStatus)
	assert.Empty(t, raw.Raw)
	require.Len(t, raw.Errors, 6)
	assert.Contains(t, raw.Errors[0], "not connected")
}

func TestWriteCoilDisconnected(t *testing.T) {
	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(freePort(t)), registerMap)
	require.NoError(t, err)

	point, err := registerMap.CommandPoint("startCommand")
	require.NoError(t, err)

	var transportErr *generator.TransportError
	assert.ErrorAs(t, client.WriteCoil(context.Background(), point, true), &transportErr)
}

func TestReconnectStopsAfterRetryBudget(t *testing.T) {
	serverPort := freePort(t)
	serv := startServer(t, serverPort)
	defer serv.Close()
	serv.HoldingRegisters[0] = 2400

	proxyPort := freePort(t)
	proxyAddr := fmt.Sprintf("127.0.0.1:%d", proxyPort)
	target := fmt.Sprintf("127.0.0.1:%d", serverPort)
	proxy := startProxy(t, proxyAddr, target)

	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(proxyPort), registerMap)
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))

	proxy.Stop()
	raw := client.ReadRegisters(context.Background())
	assert.NotEmpty(t, raw.Errors)
	assert.False(t, client.Connected())

	// 3 attempts 20ms apart, let the budget burn out with the link down
	time.Sleep(300 * time.Millisecond)
	assert.False(t, client.Connected())

	proxy = startProxy(t, proxyAddr, target)
	defer proxy.Stop()
	time.Sleep(150 * time.Millisecond)
	assert.False(t, client.Connected(), "client kept retrying past its budget")

	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.Connected())
	require.NoError(t, client.Disconnect(context.Background()))
}

func TestProbe(t *testing.T) {
	port := freePort(t)
	serv := startServer(t, port)
	defer serv.Close()
	serv.HoldingRegisters[0] = 2400

	registerMap := testRegisterMap(t)
	client, err := NewModbusClient(testProfile(port), registerMap)
	require.NoError(t, err)

	require.NoError(t, client.Probe(context.Background()))
	assert.False(t, client.Connected(), "probe must not leave the client connected")

	deadClient, err := NewModbusClient(testProfile(freePort(t)), registerMap)
	require.NoError(t, err)
	var transportErr *generator.TransportError
	assert.ErrorAs(t, deadClient.Probe(context.Background()), &transportErr)
}

func rtuProfile() *generator.GeneratorProfile {
	return &generator.GeneratorProfile{
		Brand: "custom",
		Transport: &generator.Transport{
			Type:     generator.TransportRtu,
			Path:     "/dev/ttyUSB0",
			BaudRate: 9600,
			DataBits: 8,
			Parity:   constant.NoParity,
			StopBits: constant.OneStopBit,
		},
		UnitId:     1,
		Timeout:    500,
		RetryDelay: 20,
		MaxRetries: 3,
	}
}

func TestValidateAndExtractMessageRtu(t *testing.T) {
	client, err := NewModbusClient(rtuProfile(), testRegisterMap(t))
	require.NoError(t, err)

	df := client.modeler.GenerateReadMessage(1, modbus.ReadHoldRegister, 0, 2, nil)
	copy(df.ResponseDataFrame, []byte{0x01, 0x03, 0x04, 0x09, 0x60, 0x07, 0x08, 0xFA, 0x47})

	data, err := client.ValidateAndExtractMessage(df)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09, 0x60, 0x07, 0x08}, data)

	// flip one data byte, the crc check has to catch it
	df.ResponseDataFrame[4] = 0x61
	_, err = client.ValidateAndExtractMessage(df)
	assert.ErrorIs(t, err, modbus.ErrCRC16Error)
}

func TestValidateAndExtractMessageException(t *testing.T) {
	client, err := NewModbusClient(rtuProfile(), testRegisterMap(t))
	require.NoError(t, err)

	df := client.modeler.GenerateReadMessage(1, modbus.ReadHoldRegister, 0, 2, nil)
	copy(df.ResponseDataFrame, []byte{0x01, 0x83, 0x02, 0xC0, 0xF1})

	_, err = client.ValidateAndExtractMessage(df)
	assert.ErrorIs(t, err, modbus.ErrMessageFunctionCodeError)
}

func TestValidateAndExtractMessageWrongUnitId(t *testing.T) {
	client, err := NewModbusClient(rtuProfile(), testRegisterMap(t))
	require.NoError(t, err)

	df := client.modeler.GenerateReadMessage(1, modbus.ReadHoldRegister, 0, 2, nil)
	copy(df.ResponseDataFrame, []byte{0x02, 0x03, 0x04, 0x09, 0x60, 0x07, 0x08, 0xFA, 0x47})

	_, err = client.ValidateAndExtractMessage(df)
	assert.ErrorIs(t, err, modbus.ErrMessageSlave)
}

// testProxy sits between the client and mbserver so tests can sever the
// link, mbserver keeps accepted connections alive after Close.
type testProxy struct {
	listener net.Listener
	target   string
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
}

func startProxy(t *testing.T, addr string, target string) *testProxy {
	l, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	p := &testProxy{listener: l, target: target, conns: make(map[net.Conn]struct{})}
	go p.serve()
	return p
}

func (p *testProxy) serve() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		upstream, err := net.Dial("tcp", p.target)
		if err != nil {
			_ = conn.Close()
			continue
		}
		p.mu.Lock()
		p.conns[conn] = struct{}{}
		p.conns[upstream] = struct{}{}
		p.mu.Unlock()
		go func() { _, _ = io.Copy(upstream, conn) }()
		go func() { _, _ = io.Copy(conn, upstream) }()
	}
}

func (p *testProxy) Stop() {
	_ = p.listener.Close()
	p.mu.Lock()
	for conn := range p.conns {
		_ = conn.Close()
	}
	p.conns = make(map[net.Conn]struct{})
	p.mu.Unlock()
}
