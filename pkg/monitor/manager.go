package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"gensetgateway/pkg/apis"
	"gensetgateway/pkg/apis/response"
	"gensetgateway/pkg/generator"
	"gensetgateway/pkg/generator/model"
	generatorruntime "gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/generic"
	"gensetgateway/pkg/notifier"
	"gensetgateway/pkg/protocol/modbus"
	"gensetgateway/pkg/runtime"
	"gensetgateway/pkg/runtime/constant"
	"gensetgateway/pkg/storage"
	"gensetgateway/pkg/utils/differenceutil"
	"gensetgateway/pkg/utils/randutil"
	"gensetgateway/pkg/utils/uuidutil"
	v1 "gensetgateway/pkg/v1"
)

type Option func(*Manager)

// TransportFactory builds the controller link for one monitoring session.
type TransportFactory func(profile *generatorruntime.GeneratorProfile, registerMap *generatorruntime.RegisterMap) (generator.Transport, error)

func newModbusTransport(profile *generatorruntime.GeneratorProfile, registerMap *generatorruntime.RegisterMap) (generator.Transport, error) {
	client, err := modbus.NewModbusClient(profile, registerMap)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Manager owns the single generator profile and its monitoring session. A
// session is one Monitor instance, a stopped session keeps serving the last
// status snapshot until the profile is deleted.
type Manager struct {
	mu              *sync.Mutex
	store           *generic.Store
	telemetry       storage.TelemetryStore
	notifier        *notifier.Notifier
	transport       TransportFactory
	profile         *generatorruntime.GeneratorProfile
	registerMap     *generatorruntime.RegisterMap
	monitor         *generator.Monitor
	heartBeat       bool
	stopCh          <-chan struct{}
	monitorStatusCh chan string
	closers         []runtime.LabeledCloser
}

func NewManager(store *generic.Store, telemetry storage.TelemetryStore, stop <-chan struct{}, opts ...Option) *Manager {
	m := &Manager{
		mu:              &sync.Mutex{},
		store:           store,
		telemetry:       telemetry,
		transport:       newModbusTransport,
		stopCh:          stop,
		monitorStatusCh: make(chan string),
		closers:         make([]runtime.LabeledCloser, 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithNotifier(n *notifier.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithTransportFactory(factory TransportFactory) Option {
	return func(m *Manager) { m.transport = factory }
}

func WithCloser(closer runtime.LabeledCloser) Option {
	return func(m *Manager) { m.closers = append(m.closers, closer) }
}

func (m *Manager) Init() {
	objects, _ := m.store.LoadResource()
	if len(objects) > 0 {
		if len(objects) > 1 {
			klog.V(1).InfoS("Multiple generator profiles on disk, keeping the newest", "count", len(objects))
		}
		sort.Slice(objects, func(i, j int) bool {
			oi, _ := runtime.Accessor(objects[i])
			oj, _ := runtime.Accessor(objects[j])
			return oi.GetModTime().After(oj.GetModTime())
		})
		profile := objects[0].(*generatorruntime.GeneratorProfile)
		profile.SetDefaults()

		m.mu.Lock()
		m.profile = profile
		if err := m.readyMonitorLocked(); err != nil {
			if errors.Is(err, constant.ErrConnectController) {
				m.heartBeat = true
			} else {
				klog.V(2).InfoS("Failed to start generator monitor", "profileId", profile.ID)
			}
		}
		m.mu.Unlock()
	}

	go m.heartBeatDetection()
	go m.listeningMonitorStatusCh()
}

func (m *Manager) CreateProfile(object *v1.GeneratorProfile) (*generatorruntime.GeneratorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile != nil {
		return nil, response.ErrProfileExists
	}

	profile, err := m.buildProfile(object)
	if err != nil {
		klog.V(2).InfoS("Failed to build generator profile", "error", err)
		return nil, err
	}
	profile.ObjectMeta = runtime.ObjectMeta{
		Name:    object.Name,
		ID:      uuidutil.UUID(),
		Version: strconv.FormatUint(randutil.Uint64n(), 10),
		ModTime: time.Now(),
	}

	if _, err := model.ForBrand(profile); err != nil {
		return nil, response.ErrRegisterMapInvalid(err.Error())
	}

	created, err := m.store.Create(profile)
	if err != nil {
		klog.V(2).InfoS("Failed to store generator profile", "error", err)
		return nil, err
	}
	rp := created.(*generatorruntime.GeneratorProfile)
	m.profile = rp

	if err := m.readyMonitorLocked(); err != nil {
		if errors.Is(err, constant.ErrConnectController) {
			m.heartBeat = true
		} else {
			klog.V(2).InfoS("Failed to start generator monitor", "profileId", rp.ID)
		}
	}

	return rp, nil
}

func (m *Manager) GetProfile() (*generatorruntime.GeneratorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, os.ErrNotExist
	}
	return m.profile, nil
}

func (m *Manager) UpdateProfile(version string, object *v1.GeneratorProfile) (*generatorruntime.GeneratorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, os.ErrNotExist
	}
	if m.profile.Version != version {
		return nil, apis.ErrMismatch
	}

	newProfile, err := m.buildProfile(object)
	if err != nil {
		klog.V(2).InfoS("Failed to build generator profile", "error", err)
		return nil, err
	}
	newProfile.CustomPoints = mergeRegisterPoints(m.profile.CustomPoints, object.CustomPoints)
	newProfile.ObjectMeta = runtime.ObjectMeta{
		Name:    object.Name,
		ID:      m.profile.ID,
		Version: m.profile.Version,
		ModTime: time.Now(),
	}

	if _, err := model.ForBrand(newProfile); err != nil {
		return nil, response.ErrRegisterMapInvalid(err.Error())
	}

	updated, err := m.store.Update(newProfile)
	if err != nil {
		klog.V(2).InfoS("Failed to update generator profile", "error", err)
		return nil, err
	}
	rp := updated.(*generatorruntime.GeneratorProfile)

	restart := restartNeeded(m.profile, rp)
	wasActive := m.heartBeat || (m.monitor != nil && m.monitor.State() == generator.Polling)
	m.profile = rp

	if restart && wasActive {
		m.cancelMonitorLocked()
		if err := m.readyMonitorLocked(); err != nil {
			if errors.Is(err, constant.ErrConnectController) {
				m.heartBeat = true
			} else {
				klog.V(2).InfoS("Failed to start generator monitor", "profileId", rp.ID)
			}
		}
	}

	return rp, nil
}

func (m *Manager) DeleteProfile(version string) (*generatorruntime.GeneratorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, os.ErrNotExist
	}
	if m.profile.Version != version {
		return nil, apis.ErrMismatch
	}

	profile := m.profile
	if _, err := m.store.Delete(profile); err != nil {
		klog.V(2).InfoS("Failed to delete generator profile", "profileId", profile.ID)
	}
	klog.V(2).InfoS("Deleted generator profile", "profileId", profile.ID)

	monitor := m.monitor
	if monitor != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), destroyTimeout)
			defer cancel()
			if err := monitor.Destroy(ctx); err != nil {
				klog.V(2).InfoS("Failed to cancel generator monitor", "profileId", profile.ID)
			}
		}()
	}

	m.profile = nil
	m.registerMap = nil
	m.monitor = nil
	m.heartBeat = false
	return profile, nil
}

// Status serves the latest synthesized snapshot. After an operator stop the
// last snapshot stays available, its data age keeps growing.
func (m *Manager) Status() (*generatorruntime.GeneratorStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, os.ErrNotExist
	}
	if m.monitor == nil {
		return nil, &generatorruntime.ConfigurationError{Reason: "monitoring not running"}
	}
	status := m.monitor.Status()
	if status == nil {
		return nil, &generatorruntime.ConfigurationError{Reason: "generator state not read yet"}
	}
	return status, nil
}

// EffectiveConfig merges the stored profile with the register map in use.
func (m *Manager) EffectiveConfig() (*v1.EffectiveConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, os.ErrNotExist
	}
	registerMap := m.registerMap
	if registerMap == nil {
		rm, err := model.ForBrand(m.profile)
		if err != nil {
			return nil, response.ErrRegisterMapInvalid(err.Error())
		}
		registerMap = rm
	}

	state := generator.Uninitialized
	if m.monitor != nil {
		state = m.monitor.State()
	}

	transport := &v1.Transport{
		Type:     generatorruntime.TransportTypeToString[m.profile.Transport.Type],
		Host:     m.profile.Transport.Host,
		Port:     m.profile.Transport.Port,
		Path:     m.profile.Transport.Path,
		BaudRate: m.profile.Transport.BaudRate,
		DataBits: m.profile.Transport.DataBits,
		Parity:   constant.ParityToString[m.profile.Transport.Parity],
		StopBits: constant.StopBitsToString[m.profile.Transport.StopBits],
	}

	return &v1.EffectiveConfig{
		ProfileId:                m.profile.ID,
		Name:                     m.profile.Name,
		Brand:                    m.profile.Brand,
		MapBrand:                 generatorruntime.BrandToString[registerMap.Brand],
		Model:                    m.profile.Model,
		Transport:                transport,
		UnitId:                   m.profile.UnitId,
		Timeout:                  m.profile.Timeout,
		RetryDelay:               m.profile.RetryDelay,
		MaxRetries:               m.profile.MaxRetries,
		PollInterval:             m.profile.PollInterval,
		MaintenanceIntervalHours: m.profile.MaintenanceIntervalHours,
		FuelCapacityGallons:      m.profile.FuelCapacityGallons,
		RatedPowerKW:             m.profile.RatedPowerKW,
		MemoryLayout:             constant.MemoryLayoutToString[registerMap.MemoryLayout],
		MonitorState:             generator.MonitorStateToString[state],
		Points:                   len(registerMap.Points),
	}, nil
}

// Control forwards a start or stop pulse to the running session. The
// command gate inside the monitor decides whether the generator state
// admits it.
func (m *Manager) Control(ctx context.Context, command string) error {
	m.mu.Lock()
	profile := m.profile
	monitor := m.monitor
	m.mu.Unlock()
	if profile == nil {
		return os.ErrNotExist
	}
	if monitor == nil || monitor.State() != generator.Polling {
		klog.V(2).InfoS("Rejected control command, monitoring not running", "command", command)
		return response.ErrControllerUnreachable(fmt.Errorf("monitoring not running"))
	}

	var err error
	switch command {
	case "start":
		err = monitor.Start(ctx)
	case "stop":
		err = monitor.Stop(ctx)
	default:
		return response.ErrCommandRejected(fmt.Sprintf("unknown command %s", command))
	}
	if err != nil {
		var precondition *generatorruntime.PreconditionError
		if errors.As(err, &precondition) {
			klog.V(2).InfoS("Rejected control command", "command", command, "reason", precondition.Reason)
			return response.ErrCommandRejected(precondition.Reason)
		}
		var transportErr *generatorruntime.TransportError
		if errors.As(err, &transportErr) {
			return response.ErrControllerUnreachable(err)
		}
		return err
	}
	return nil
}

// TestConnection probes the configured endpoint. A running session probes
// through its own transport, otherwise a throwaway client dials once.
func (m *Manager) TestConnection(ctx context.Context) (*v1.ConnectionTestResult, error) {
	m.mu.Lock()
	profile := m.profile
	registerMap := m.registerMap
	monitor := m.monitor
	m.mu.Unlock()
	if profile == nil {
		return nil, os.ErrNotExist
	}

	if monitor != nil && monitor.State() == generator.Polling {
		if err := monitor.TestConnection(ctx); err != nil {
			return &v1.ConnectionTestResult{Reachable: false, Error: err.Error()}, nil
		}
		return &v1.ConnectionTestResult{Reachable: true}, nil
	}

	if registerMap == nil {
		rm, err := model.ForBrand(profile)
		if err != nil {
			return &v1.ConnectionTestResult{Reachable: false, Error: err.Error()}, nil
		}
		registerMap = rm
	}
	transport, err := m.transport(profile, registerMap)
	if err != nil {
		return &v1.ConnectionTestResult{Reachable: false, Error: err.Error()}, nil
	}
	if err := transport.Probe(ctx); err != nil {
		return &v1.ConnectionTestResult{Reachable: false, Error: err.Error()}, nil
	}
	return &v1.ConnectionTestResult{Reachable: true}, nil
}

// History answers a telemetry window query, rows ordered ascending.
func (m *Manager) History(ctx context.Context, start, end time.Time, limit int, filter *runtime.MetricFilter) (*v1.HistoryResponse, error) {
	m.mu.Lock()
	profile := m.profile
	m.mu.Unlock()
	if profile == nil {
		return nil, os.ErrNotExist
	}
	if m.telemetry == nil {
		return nil, &generatorruntime.ConfigurationError{Reason: "telemetry store not configured"}
	}

	rows, err := m.telemetry.Query(ctx, profile.ID, storage.TelemetryQuery{Start: start, End: end, Limit: limit})
	if err != nil {
		klog.V(2).InfoS("Failed to query telemetry", "profileId", profile.ID, "err", err)
		return nil, err
	}

	// stores answer newest first, the wire orders ascending
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	predicates := runtime.ParseMetricFilter(filter)
	if len(predicates) > 0 {
		for _, row := range rows {
			values := make(map[string]interface{}, len(row.Values))
			for metric, value := range row.Values {
				isMatch := true
				for _, p := range predicates {
					if !p(metric) {
						isMatch = false
						break
					}
				}
				if isMatch {
					values[metric] = value
				}
			}
			row.Values = values
		}
	}

	return &v1.HistoryResponse{
		ProfileId: profile.ID,
		Start:     start.UTC().Format(time.RFC3339),
		End:       end.UTC().Format(time.RFC3339),
		Rows:      rows,
	}, nil
}

func (m *Manager) SwitchMonitor(status string) error {
	m.mu.Lock()
	profile := m.profile
	m.mu.Unlock()
	if profile == nil {
		klog.V(2).InfoS("Failed to find generator profile")
		return os.ErrNotExist
	}
	if !switchStatuses.Has(status) {
		klog.V(2).InfoS("Unsupported monitor operator", "operator", status)
		return response.ErrMonitorOperatorUnSupported(status)
	}
	m.monitorStatusCh <- status
	return nil
}

func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	monitor := m.monitor
	m.monitor = nil
	m.mu.Unlock()
	if monitor != nil && monitor.State() != generator.Stopped {
		if err := monitor.Destroy(ctx); err != nil {
			klog.V(2).InfoS("Failed to stop generator monitor", "err", err)
		}
	}

	if m.notifier != nil {
		m.notifier.Close()
	}

	var errs []string
	for i := len(m.closers); i > 0; i-- {
		lc := m.closers[i-1]
		if err := lc.Closer(ctx); err != nil {
			klog.V(2).InfoS("Failed to stopped Dependencies service", "service", lc.Label)
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("Failed to shutdown server: [%s]\n", strings.Join(errs, ","))
	}
	return nil
}

// readyMonitorLocked builds and starts a fresh session for the current
// profile. Callers hold m.mu and classify the returned error.
func (m *Manager) readyMonitorLocked() error {
	if m.monitor != nil && m.monitor.State() == generator.Polling {
		return nil
	}
	registerMap, err := model.ForBrand(m.profile)
	if err != nil {
		return err
	}
	transport, err := m.transport(m.profile, registerMap)
	if err != nil {
		return err
	}
	monitor := generator.NewMonitor(m.profile, registerMap, transport, m.telemetry)
	if err := monitor.Collect(context.Background()); err != nil {
		return err
	}

	m.registerMap = registerMap
	m.monitor = monitor
	m.heartBeat = false
	if m.notifier != nil {
		m.notifier.Pump(monitor.Hub())
	}
	klog.V(2).InfoS("Succeed to start generator monitor", "profileId", m.profile.ID)
	return nil
}

// cancelMonitorLocked stops the running session. The stopped monitor stays
// referenced so the last snapshot remains readable.
func (m *Manager) cancelMonitorLocked() {
	m.heartBeat = false
	if m.monitor == nil || m.monitor.State() == generator.Stopped {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), destroyTimeout)
	defer cancel()
	if err := m.monitor.Destroy(ctx); err != nil {
		klog.V(2).InfoS("Failed to stop generator monitor", "profileId", m.profile.ID, "err", err)
	}
}

func (m *Manager) heartBeatDetection() {
	tick := time.Tick(heartBeatTimeInterval)
	for {
		select {
		case _, ok := <-m.stopCh:
			if !ok {
				return
			}
		case <-tick:
			m.mu.Lock()
			if m.heartBeat && m.profile != nil {
				if err := m.readyMonitorLocked(); err == nil {
					klog.V(1).InfoS("Reconnected generator controller", "profileId", m.profile.ID)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *Manager) listeningMonitorStatusCh() {
	for {
		select {
		case _, ok := <-m.stopCh:
			if !ok {
				return
			}
		case status, ok := <-m.monitorStatusCh:
			if !ok {
				return
			}
			m.switchMonitorStatus(status)
		}
	}
}

func (m *Manager) switchMonitorStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		klog.V(2).InfoS("Failed to find generator profile")
		return
	}

	polling := m.monitor != nil && m.monitor.State() == generator.Polling
	switch status {
	case SwitchStart:
		if polling {
			return
		}
		if err := m.readyMonitorLocked(); err != nil {
			if errors.Is(err, constant.ErrConnectController) {
				m.heartBeat = true
			} else {
				klog.V(2).InfoS("Failed to start generator monitor", "profileId", m.profile.ID)
			}
		}
	case SwitchStop:
		m.cancelMonitorLocked()
	case SwitchRestart:
		m.cancelMonitorLocked()
		if err := m.readyMonitorLocked(); err != nil {
			if errors.Is(err, constant.ErrConnectController) {
				m.heartBeat = true
			} else {
				klog.V(2).InfoS("Failed to start generator monitor", "profileId", m.profile.ID)
			}
		}
	}
}

func (m *Manager) buildProfile(object *v1.GeneratorProfile) (*generatorruntime.GeneratorProfile, error) {
	if errs := runtime.Validate(object.Name, validateProfileName); len(errs) > 0 {
		klog.V(2).InfoS("Invalid generator profile name", "name", object.Name, "errs", errs.ToAggregate())
		return nil, response.ErrRequestBody
	}
	if err := validateTransport(object.Transport); err != nil {
		return nil, response.ErrTransportInvalid(err.Error())
	}
	if object.UnitId == 0 {
		return nil, response.ErrRequestBody
	}
	if object.Brand == generatorruntime.BrandToString[generatorruntime.BrandCustom] && len(object.CustomPoints) == 0 {
		return nil, response.ErrRegisterMapInvalid("custom brand requires customPoints")
	}

	transport := &generatorruntime.Transport{
		Type:     generatorruntime.StringToTransportType[object.Transport.Type],
		Host:     object.Transport.Host,
		Port:     object.Transport.Port,
		Path:     object.Transport.Path,
		BaudRate: object.Transport.BaudRate,
		DataBits: object.Transport.DataBits,
		Parity:   constant.StringToParity[object.Transport.Parity],
		StopBits: constant.StringToStopBits[object.Transport.StopBits],
	}
	if transport.Type == generatorruntime.TransportRtu && transport.DataBits == 0 {
		transport.DataBits = 8
	}

	profile := &generatorruntime.GeneratorProfile{
		Brand:                    object.Brand,
		Model:                    object.Model,
		Transport:                transport,
		UnitId:                   object.UnitId,
		Timeout:                  object.Timeout,
		RetryDelay:               object.RetryDelay,
		MaxRetries:               object.MaxRetries,
		PollInterval:             object.PollInterval,
		MaintenanceIntervalHours: object.MaintenanceIntervalHours,
		FuelCapacityGallons:      object.FuelCapacityGallons,
		RatedPowerKW:             object.RatedPowerKW,
		MemoryLayout:             constant.StringToMemoryLayout[object.MemoryLayout],
		CustomPoints:             buildRegisterPoints(object.CustomPoints),
	}
	profile.SetDefaults()
	return profile, nil
}

var validateProfileName = func(name string) error {
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("name must not contain '/' or '\\'")
	}
	return nil
}

func validateTransport(transport *v1.Transport) error {
	if transport == nil {
		return fmt.Errorf("transport is required")
	}
	switch generatorruntime.StringToTransportType[transport.Type] {
	case generatorruntime.TransportTcp:
		if len(transport.Host) == 0 {
			return fmt.Errorf("host is required for tcp transport")
		}
		if transport.Port == 0 {
			return fmt.Errorf("port is required for tcp transport")
		}
	case generatorruntime.TransportRtu:
		if len(transport.Path) == 0 {
			return fmt.Errorf("path is required for rtu transport")
		}
		if transport.BaudRate == 0 {
			return fmt.Errorf("baudRate is required for rtu transport")
		}
	}
	return nil
}

func buildRegisterPoints(points []*v1.RegisterPoint) []*generatorruntime.RegisterPoint {
	if len(points) == 0 {
		return nil
	}
	built := make([]*generatorruntime.RegisterPoint, 0, len(points))
	for _, point := range points {
		built = append(built, buildRegisterPoint(point))
	}
	return built
}

func buildRegisterPoint(point *v1.RegisterPoint) *generatorruntime.RegisterPoint {
	return &generatorruntime.RegisterPoint{
		Name:          strings.TrimSpace(point.Name),
		Address:       *point.Address,
		RegisterClass: generatorruntime.StringToRegisterClass[point.RegisterClass],
		WireType:      generatorruntime.StringToWireType[point.WireType],
		Scale:         point.Scale,
		Offset:        point.Offset,
		Unit:          point.Unit,
		Description:   point.Description,
		AccessMode:    constant.StringToReadWriteProperty[point.AccessMode],
	}
}

// mergeRegisterPoints reconciles the stored custom points against the
// payload: absent points drop, matching names update in place, new names
// append.
func mergeRegisterPoints(stored []*generatorruntime.RegisterPoint, payload []*v1.RegisterPoint) []*generatorruntime.RegisterPoint {
	points := make([]*generatorruntime.RegisterPoint, 0, len(stored))
	pointsByName := make(map[string]*generatorruntime.RegisterPoint, len(stored))
	for _, point := range stored {
		p := *point
		points = append(points, &p)
		pointsByName[p.Name] = &p
	}

	delPoints, _, _ := differenceutil.DifferenceAndIntersectionObjects(points, payload,
		func(value interface{}) string { return value.(*generatorruntime.RegisterPoint).Name },
		func(value interface{}) string { return value.(*v1.RegisterPoint).Name })

	i := 0
	delPointSet := sets.NewString(delPoints...)
	for _, point := range points {
		if !delPointSet.Has(point.Name) {
			points[i] = point
			i++
		} else {
			delete(pointsByName, point.Name)
		}
	}
	for j := i; j < len(points); j++ {
		points[j] = nil
	}
	points = points[:i]

	// upsert
	for _, np := range payload {
		name := strings.TrimSpace(np.Name)
		if point, ok := pointsByName[name]; ok {
			point.Address = *np.Address
			point.RegisterClass = generatorruntime.StringToRegisterClass[np.RegisterClass]
			point.WireType = generatorruntime.StringToWireType[np.WireType]
			point.Scale = np.Scale
			point.Offset = np.Offset
			point.Unit = np.Unit
			point.Description = np.Description
			point.AccessMode = constant.StringToReadWriteProperty[np.AccessMode]
		} else {
			point := buildRegisterPoint(np)
			points = append(points, point)
			pointsByName[point.Name] = point
		}
	}

	if len(points) == 0 {
		return nil
	}
	return points
}

// restartNeeded reports whether a changed field feeds the running session.
// Display fields swap in place without one.
func restartNeeded(old, updated *generatorruntime.GeneratorProfile) bool {
	if !reflect.DeepEqual(old.Transport, updated.Transport) {
		return true
	}
	if old.UnitId != updated.UnitId || old.Brand != updated.Brand {
		return true
	}
	if old.Timeout != updated.Timeout || old.RetryDelay != updated.RetryDelay || old.MaxRetries != updated.MaxRetries {
		return true
	}
	if old.PollInterval != updated.PollInterval {
		return true
	}
	if old.MaintenanceIntervalHours != updated.MaintenanceIntervalHours {
		return true
	}
	if old.MemoryLayout != updated.MemoryLayout {
		return true
	}
	if !reflect.DeepEqual(old.CustomPoints, updated.CustomPoints) {
		return true
	}
	return false
}
