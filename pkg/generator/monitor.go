package generator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"k8s.io/klog/v2"

	"gensetgateway/pkg/generator/runtime"
	gatewayruntime "gensetgateway/pkg/runtime"
)

var _ gatewayruntime.Collector = (*Monitor)(nil)

// Transport is the controller link the monitor drives. The modbus client is
// the production implementation.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Connected() bool
	ReadRegisters(ctx context.Context) *runtime.RawResult
	WriteCoil(ctx context.Context, point *runtime.RegisterPoint, on bool) error
	Probe(ctx context.Context) error
	Events() <-chan runtime.TransportEvent
}

// TelemetrySink persists per cycle read results. A nil sink disables
// persistence.
type TelemetrySink interface {
	Append(ctx context.Context, profileId string, result *runtime.ReadResult) error
}

// Monitor owns the acquisition loop of one generator. It connects the
// transport, sweeps the register map on a fixed cycle, synthesizes the
// status view and fans change events out through the hub.
type Monitor struct {
	profile     *runtime.GeneratorProfile
	registerMap *runtime.RegisterMap
	transport   Transport
	telemetry   TelemetrySink
	hub         *Hub

	state      *atomic.Int32
	exitCh     chan struct{}
	loopWg     sync.WaitGroup
	pulseWg    sync.WaitGroup
	pulseWidth time.Duration

	mux        sync.RWMutex
	lastStatus *runtime.GeneratorStatus
}

func NewMonitor(profile *runtime.GeneratorProfile, registerMap *runtime.RegisterMap, transport Transport, telemetry TelemetrySink) *Monitor {
	return &Monitor{
		profile:     profile,
		registerMap: registerMap,
		transport:   transport,
		telemetry:   telemetry,
		hub:         NewHub(),
		state:       atomic.NewInt32(int32(Idle)),
		exitCh:      make(chan struct{}),
		pulseWidth:  commandPulseWidth,
	}
}

// Collect connects the controller and launches the poll loop. The error of
// the initial connect surfaces here, later link failures ride the event
// stream instead.
func (m *Monitor) Collect(ctx context.Context) error {
	if !m.state.CAS(int32(Idle), int32(Polling)) {
		return &runtime.ConfigurationError{Reason: "monitor is " + MonitorStateToString[MonitorState(m.state.Load())]}
	}
	if err := m.transport.Connect(ctx); err != nil {
		m.state.Store(int32(Idle))
		return err
	}

	m.loopWg.Add(2)
	go m.relayTransportEvents()
	go m.pollLoop()
	klog.V(1).InfoS("Started generator monitor", "profile", m.profile.Name, "pollInterval", m.profile.PollInterval)
	return nil
}

// Destroy stops the poll loop, waits for in flight command pulses bounded
// by ctx, then tears the transport down and closes the hub. A monitor does
// not restart, the next session builds a fresh one.
func (m *Monitor) Destroy(ctx context.Context) error {
	if m.state.CAS(int32(Polling), int32(Stopped)) {
		close(m.exitCh)
		m.loopWg.Wait()
	} else if !m.state.CAS(int32(Idle), int32(Stopped)) {
		return &runtime.ConfigurationError{Reason: "monitor is " + MonitorStateToString[MonitorState(m.state.Load())]}
	}

	pulsesDone := make(chan struct{})
	go func() {
		m.pulseWg.Wait()
		close(pulsesDone)
	}()
	select {
	case <-pulsesDone:
	case <-ctx.Done():
		klog.V(2).InfoS("Abandoned wait for command pulse release", "profile", m.profile.Name, "err", ctx.Err())
	}

	err := m.transport.Disconnect(ctx)
	m.hub.Close()
	klog.V(1).InfoS("Stopped generator monitor", "profile", m.profile.Name)
	return err
}

// Status returns a copy of the latest synthesized view with its age
// stamped in, nil before the first completed cycle.
func (m *Monitor) Status() *runtime.GeneratorStatus {
	m.mux.RLock()
	defer m.mux.RUnlock()
	if m.lastStatus == nil {
		return nil
	}
	status := m.lastStatus.DeepCopy()
	status.DataAge = time.Since(status.LastUpdated).Seconds()
	return status
}

func (m *Monitor) State() MonitorState {
	return MonitorState(m.state.Load())
}

// Hub exposes the event stream for subscription.
func (m *Monitor) Hub() *Hub {
	return m.hub
}

// TestConnection probes the controller without disturbing the poll loop.
func (m *Monitor) TestConnection(ctx context.Context) error {
	return m.transport.Probe(ctx)
}

func (m *Monitor) pollLoop() {
	defer m.loopWg.Done()
	interval := time.Duration(m.profile.PollInterval) * time.Millisecond
	for {
		start := time.Now()
		m.pollOnce(context.Background())
		elapsed := time.Since(start)

		remaining := interval - elapsed
		if remaining < 0 {
			remaining = 0
		}
		select {
		case <-m.exitCh:
			return
		case <-time.After(remaining):
		}
	}
}

// pollOnce runs one full cycle: sweep, decode, synthesize, persist,
// compare, publish. The next cycle is not scheduled until all of it is
// done.
func (m *Monitor) pollOnce(ctx context.Context) {
	raw := m.transport.ReadRegisters(ctx)
	result := runtime.DecodeResult(m.registerMap, raw)
	status := Synthesize(m.profile, result)

	// A cycle in which every register failed writes no telemetry row.
	if m.telemetry != nil && len(result.Values) > 0 {
		if err := m.telemetry.Append(ctx, m.profile.ID, result); err != nil {
			klog.V(2).InfoS("Failed to persist telemetry", "profile", m.profile.Name, "err", err)
		}
	}

	m.mux.Lock()
	prev := m.lastStatus
	m.lastStatus = status
	m.mux.Unlock()

	if StatusChanged(prev, status) {
		klog.V(3).InfoS("Generator status changed", "profile", m.profile.Name,
			"running", status.Running, "alarms", len(status.Alarms), "faults", len(status.Faults))
		m.hub.Publish(Event{Type: EventStatusChanged, Timestamp: status.LastUpdated, Status: status})
	}
	klog.V(5).InfoS("Finished poll cycle", "profile", m.profile.Name,
		"values", len(result.Values), "errors", len(result.Errors))
}

func (m *Monitor) relayTransportEvents() {
	defer m.loopWg.Done()
	for {
		select {
		case <-m.exitCh:
			return
		case event := <-m.transport.Events():
			now := time.Now().UTC()
			switch event.Type {
			case runtime.TransportConnected:
				m.hub.Publish(Event{Type: EventConnected, Timestamp: now})
			case runtime.TransportDisconnected:
				m.hub.Publish(Event{Type: EventDisconnected, Timestamp: now})
			case runtime.TransportFaulted:
				e := Event{Type: EventError, Timestamp: now}
				if event.Err != nil {
					e.Error = event.Err.Error()
				}
				m.hub.Publish(e)
			}
		}
	}
}
