package generator

import (
	"context"
	"time"

	"k8s.io/klog/v2"

	"gensetgateway/pkg/generator/runtime"
)

// commandPulseWidth is how long a command coil stays energized before the
// automatic release write.
const commandPulseWidth = 2 * time.Second

// Start energizes the start coil once the safety gate passes. The release
// write fires from its own timer, the caller never waits on it.
func (m *Monitor) Start(ctx context.Context) error {
	status := m.Status()
	if status == nil {
		return &runtime.PreconditionError{Command: "start", Reason: "generator state not read yet"}
	}
	if len(status.Faults) > 0 {
		return &runtime.PreconditionError{Command: "start", Reason: "active faults present"}
	}
	if status.Running {
		return &runtime.PreconditionError{Command: "start", Reason: "engine already running"}
	}
	if !status.Ready {
		return &runtime.PreconditionError{Command: "start", Reason: "controller not in ready state"}
	}
	return m.pulse(ctx, runtime.PointStartCommand)
}

// Stop energizes the stop coil. Only a running engine accepts it.
func (m *Monitor) Stop(ctx context.Context) error {
	status := m.Status()
	if status == nil {
		return &runtime.PreconditionError{Command: "stop", Reason: "generator state not read yet"}
	}
	if !status.Running {
		return &runtime.PreconditionError{Command: "stop", Reason: "engine not running"}
	}
	return m.pulse(ctx, runtime.PointStopCommand)
}

// pulse writes the coil on and schedules the release write. The release is
// tracked on its own wait group so it still lands when monitoring stops
// right after the command.
func (m *Monitor) pulse(ctx context.Context, name string) error {
	point, err := m.registerMap.CommandPoint(name)
	if err != nil {
		return &runtime.ConfigurationError{Reason: err.Error()}
	}
	if err := m.transport.WriteCoil(ctx, point, true); err != nil {
		return err
	}
	klog.V(1).InfoS("Issued generator command", "profile", m.profile.Name, "register", point.Name, "pulseWidth", m.pulseWidth)

	m.pulseWg.Add(1)
	time.AfterFunc(m.pulseWidth, func() {
		defer m.pulseWg.Done()
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Duration(m.profile.Timeout)*time.Millisecond)
		defer cancel()
		if err := m.transport.WriteCoil(releaseCtx, point, false); err != nil {
			klog.V(2).InfoS("Failed to release command coil", "profile", m.profile.Name, "register", point.Name, "err", err)
		}
	})
	return nil
}
