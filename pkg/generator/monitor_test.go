package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/runtime/constant"
)

type coilWrite struct {
	register string
	on       bool
}

type fakeTransport struct {
	mux         sync.Mutex
	connected   bool
	connects    int
	disconnects int
	connectErr  error
	writeErr    error
	probeErr    error
	writes      []coilWrite
	raw         func() *runtime.RawResult
	events      chan runtime.TransportEvent
}

func newFakeTransport(raw func() *runtime.RawResult) *fakeTransport {
	return &fakeTransport{raw: raw, events: make(chan runtime.TransportEvent, 4)}
}

func (f *fakeTransport) Connect(ctx context.Context) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	f.connects++
	return nil
}

func (f *fakeTransport) Disconnect(ctx context.Context) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.connected = false
	f.disconnects++
	return nil
}

func (f *fakeTransport) Connected() bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.connected
}

func (f *fakeTransport) ReadRegisters(ctx context.Context) *runtime.RawResult {
	return f.raw()
}

func (f *fakeTransport) WriteCoil(ctx context.Context, point *runtime.RegisterPoint, on bool) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, coilWrite{register: point.Name, on: on})
	return nil
}

func (f *fakeTransport) Probe(ctx context.Context) error {
	return f.probeErr
}

func (f *fakeTransport) Events() <-chan runtime.TransportEvent {
	return f.events
}

func (f *fakeTransport) writeLog() []coilWrite {
	f.mux.Lock()
	defer f.mux.Unlock()
	return append([]coilWrite(nil), f.writes...)
}

func (f *fakeTransport) disconnectCount() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.disconnects
}

type fakeSink struct {
	mux     sync.Mutex
	err     error
	results []*runtime.ReadResult
}

func (f *fakeSink) Append(ctx context.Context, profileId string, result *runtime.ReadResult) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeSink) count() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return len(f.results)
}

func monitorRegisterMap(t *testing.T) *runtime.RegisterMap {
	t.Helper()
	m := &runtime.RegisterMap{
		Brand:        runtime.BrandCustom,
		MemoryLayout: constant.ABCD,
		Points: []*runtime.RegisterPoint{
			{Name: runtime.PointEngineStatus, Address: 0, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, AccessMode: constant.AccessModeReadOnly},
			{Name: runtime.PointAlarmBits, Address: 1, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, AccessMode: constant.AccessModeReadOnly},
			{Name: runtime.PointFaultBits, Address: 2, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, AccessMode: constant.AccessModeReadOnly},
			{Name: runtime.PointVoltage, Address: 3, RegisterClass: runtime.RegisterHolding, WireType: runtime.WireUint16, Scale: 0.1, AccessMode: constant.AccessModeReadOnly},
			{Name: runtime.PointStartCommand, Address: 100, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite},
			{Name: runtime.PointStopCommand, Address: 101, RegisterClass: runtime.RegisterCoil, WireType: runtime.WireBool, AccessMode: constant.AccessModeReadWrite},
		},
	}
	m.Index()
	require.NoError(t, m.Validate())
	return m
}

func monitorProfile() *runtime.GeneratorProfile {
	profile := &runtime.GeneratorProfile{
		Brand:        "custom",
		Transport:    &runtime.Transport{Type: runtime.TransportTcp, Host: "127.0.0.1", Port: 502},
		UnitId:       1,
		PollInterval: 20,
	}
	profile.Name = "site-genset"
	profile.ID = "gen-1"
	profile.SetDefaults()
	return profile
}

func rawFor(engine, alarms, faults, voltage uint16) *runtime.RawResult {
	return &runtime.RawResult{
		Timestamp: time.Now().UTC(),
		Raw: map[string][]byte{
			runtime.PointEngineStatus: {byte(engine >> 8), byte(engine)},
			runtime.PointAlarmBits:    {byte(alarms >> 8), byte(alarms)},
			runtime.PointFaultBits:    {byte(faults >> 8), byte(faults)},
			runtime.PointVoltage:      {byte(voltage >> 8), byte(voltage)},
		},
		ConnectionStatus: runtime.Connected,
	}
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "event stream closed early")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event within deadline")
	}
	return Event{}
}

func monitorWithStatus(t *testing.T, ft *fakeTransport, status *runtime.GeneratorStatus) *Monitor {
	t.Helper()
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	m.mux.Lock()
	m.lastStatus = status
	m.mux.Unlock()
	return m
}

func readyStatus() *runtime.GeneratorStatus {
	return &runtime.GeneratorStatus{
		Ready:            true,
		Alarms:           []string{},
		Faults:           []string{},
		Warnings:         []string{},
		ConnectionStatus: runtime.Connected,
		LastUpdated:      time.Now().UTC(),
	}
}

func TestMonitorLifecycle(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0b1001, 0, 0, 2400) })
	sink := &fakeSink{}
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, sink)
	assert.Equal(t, Idle, m.State())
	assert.Nil(t, m.Status())

	_, events := m.Hub().Subscribe()
	require.NoError(t, m.Collect(context.Background()))
	assert.Equal(t, Polling, m.State())

	event := waitEvent(t, events)
	require.Equal(t, EventStatusChanged, event.Type)
	require.NotNil(t, event.Status)
	assert.True(t, event.Status.Running)
	assert.True(t, event.Status.Ready)
	assert.Equal(t, 240.0, event.Status.Metrics.Voltage)

	status := m.Status()
	require.NotNil(t, status)
	assert.True(t, status.Running)
	assert.GreaterOrEqual(t, status.DataAge, 0.0)

	assert.Eventually(t, func() bool { return sink.count() >= 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Destroy(context.Background()))
	assert.Equal(t, Stopped, m.State())
	assert.Equal(t, 1, ft.disconnectCount())

	for {
		if _, open := <-events; !open {
			break
		}
	}
}

func TestMonitorCollectTwiceRejected(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	require.NoError(t, m.Collect(context.Background()))
	defer m.Destroy(context.Background())

	err := m.Collect(context.Background())
	var confErr *runtime.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestMonitorCollectConnectFailure(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	ft.connectErr = errors.New("connection refused")
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)

	require.Error(t, m.Collect(context.Background()))
	assert.Equal(t, Idle, m.State())

	ft.mux.Lock()
	ft.connectErr = nil
	ft.mux.Unlock()
	require.NoError(t, m.Collect(context.Background()))
	require.NoError(t, m.Destroy(context.Background()))
}

func TestMonitorDestroyTwiceRejected(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	require.NoError(t, m.Destroy(context.Background()))

	err := m.Destroy(context.Background())
	var confErr *runtime.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestMonitorDeadbandSuppression(t *testing.T) {
	var mux sync.Mutex
	voltages := []uint16{2400, 2410, 2530}
	call := 0
	ft := newFakeTransport(func() *runtime.RawResult {
		mux.Lock()
		defer mux.Unlock()
		voltage := voltages[call]
		if call < len(voltages)-1 {
			call++
		}
		return rawFor(0b1001, 0, 0, voltage)
	})
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	_, events := m.Hub().Subscribe()
	require.NoError(t, m.Collect(context.Background()))
	defer m.Destroy(context.Background())

	first := waitEvent(t, events)
	require.NotNil(t, first.Status)
	assert.Equal(t, 240.0, first.Status.Metrics.Voltage)

	// The 241.0V cycle sits inside the deadband, the next event is 253.0V.
	second := waitEvent(t, events)
	require.NotNil(t, second.Status)
	assert.Equal(t, 253.0, second.Status.Metrics.Voltage)
}

func TestMonitorSkipsTelemetryWhenEveryRegisterFailed(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult {
		return &runtime.RawResult{
			Timestamp:        time.Now().UTC(),
			Raw:              map[string][]byte{},
			Errors:           []string{"register voltage: request timed out"},
			ConnectionStatus: runtime.ConnectionError,
		}
	})
	sink := &fakeSink{}
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, sink)
	require.NoError(t, m.Collect(context.Background()))
	defer m.Destroy(context.Background())

	assert.Eventually(t, func() bool { return m.Status() != nil }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, sink.count())

	status := m.Status()
	assert.Equal(t, runtime.ConnectionError, status.ConnectionStatus)
	assert.Zero(t, status.Metrics.Voltage)
}

func TestMonitorDisconnectedCycleSynthesizesStatus(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult {
		return &runtime.RawResult{
			Timestamp:        time.Now().UTC(),
			Raw:              map[string][]byte{},
			Errors:           []string{"register voltage: controller not connected"},
			ConnectionStatus: runtime.Disconnected,
		}
	})
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	require.NoError(t, m.Collect(context.Background()))
	defer m.Destroy(context.Background())

	assert.Eventually(t, func() bool {
		status := m.Status()
		return status != nil && status.ConnectionStatus == runtime.Disconnected
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMonitorRelaysTransportEvents(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0b1001, 0, 0, 2400) })
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	_, events := m.Hub().Subscribe()
	require.NoError(t, m.Collect(context.Background()))
	defer m.Destroy(context.Background())

	first := waitEvent(t, events)
	require.Equal(t, EventStatusChanged, first.Type)

	ft.events <- runtime.TransportEvent{Type: runtime.TransportDisconnected}
	event := waitEvent(t, events)
	assert.Equal(t, EventDisconnected, event.Type)

	ft.events <- runtime.TransportEvent{Type: runtime.TransportFaulted, Err: errors.New("link reset by peer")}
	event = waitEvent(t, events)
	assert.Equal(t, EventError, event.Type)
	assert.Contains(t, event.Error, "link reset by peer")

	ft.events <- runtime.TransportEvent{Type: runtime.TransportConnected}
	event = waitEvent(t, events)
	assert.Equal(t, EventConnected, event.Type)
}

func TestMonitorTestConnection(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	require.NoError(t, m.TestConnection(context.Background()))

	ft.probeErr = errors.New("no route to host")
	require.Error(t, m.TestConnection(context.Background()))
}

func TestStartRejectedBeforeFirstCycle(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)

	err := m.Start(context.Background())
	var preErr *runtime.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Equal(t, "start", preErr.Command)
	assert.Empty(t, ft.writeLog())
}

func TestStartRejectedWithActiveFaults(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	status := readyStatus()
	status.Faults = []string{"Engine Fault"}
	m := monitorWithStatus(t, ft, status)

	err := m.Start(context.Background())
	var preErr *runtime.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Contains(t, preErr.Reason, "fault")
	assert.Empty(t, ft.writeLog())
}

func TestStartRejectedWhileRunning(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	status := readyStatus()
	status.Running = true
	m := monitorWithStatus(t, ft, status)

	err := m.Start(context.Background())
	var preErr *runtime.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Empty(t, ft.writeLog())
}

func TestStartRejectedWhenNotReady(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	status := readyStatus()
	status.Ready = false
	m := monitorWithStatus(t, ft, status)

	err := m.Start(context.Background())
	var preErr *runtime.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Empty(t, ft.writeLog())
}

func TestStartPulsesStartCoil(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := monitorWithStatus(t, ft, readyStatus())
	m.pulseWidth = 20 * time.Millisecond

	require.NoError(t, m.Start(context.Background()))

	log := ft.writeLog()
	require.Len(t, log, 1)
	assert.Equal(t, coilWrite{register: runtime.PointStartCommand, on: true}, log[0])

	assert.Eventually(t, func() bool { return len(ft.writeLog()) == 2 }, 2*time.Second, 5*time.Millisecond)
	log = ft.writeLog()
	assert.Equal(t, coilWrite{register: runtime.PointStartCommand, on: false}, log[1])
}

func TestStopPulsesStopCoil(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	status := readyStatus()
	status.Running = true
	m := monitorWithStatus(t, ft, status)
	m.pulseWidth = 20 * time.Millisecond

	require.NoError(t, m.Stop(context.Background()))

	assert.Eventually(t, func() bool { return len(ft.writeLog()) == 2 }, 2*time.Second, 5*time.Millisecond)
	log := ft.writeLog()
	assert.Equal(t, coilWrite{register: runtime.PointStopCommand, on: true}, log[0])
	assert.Equal(t, coilWrite{register: runtime.PointStopCommand, on: false}, log[1])
}

func TestStopRejectedWhenNotRunning(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := monitorWithStatus(t, ft, readyStatus())

	err := m.Stop(context.Background())
	var preErr *runtime.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Equal(t, "stop", preErr.Command)
	assert.Empty(t, ft.writeLog())
}

func TestStartPropagatesWriteFailure(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	ft.writeErr = &runtime.TransportError{Op: "write", Err: errors.New("broken pipe")}
	m := monitorWithStatus(t, ft, readyStatus())

	err := m.Start(context.Background())
	var transportErr *runtime.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestPulseReleaseSurvivesDestroy(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := monitorWithStatus(t, ft, readyStatus())
	m.pulseWidth = 30 * time.Millisecond

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Destroy(context.Background()))

	log := ft.writeLog()
	require.Len(t, log, 2)
	assert.True(t, log[0].on)
	assert.False(t, log[1].on)
}

func TestDestroyGivesUpOnPulseWhenContextExpires(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := monitorWithStatus(t, ft, readyStatus())
	m.pulseWidth = 500 * time.Millisecond

	require.NoError(t, m.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	started := time.Now()
	require.NoError(t, m.Destroy(ctx))
	assert.Less(t, time.Since(started), 400*time.Millisecond)
	assert.Len(t, ft.writeLog(), 1)

	// The release timer still fires after the bounded wait gave up.
	assert.Eventually(t, func() bool { return len(ft.writeLog()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestCommandPulseWidthDefault(t *testing.T) {
	ft := newFakeTransport(func() *runtime.RawResult { return rawFor(0, 0, 0, 0) })
	m := NewMonitor(monitorProfile(), monitorRegisterMap(t), ft, nil)
	assert.Equal(t, 2*time.Second, m.pulseWidth)
}
