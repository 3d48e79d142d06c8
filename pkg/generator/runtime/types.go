package runtime

import (
	"fmt"
	"time"

	"gensetgateway/pkg/runtime"
	"gensetgateway/pkg/runtime/constant"
)

var _ runtime.Object = (*GeneratorProfile)(nil)

const (
	DefaultTimeout                  = 5000 // ms
	DefaultRetryDelay               = 5000 // ms
	DefaultMaxRetries               = 3
	DefaultPollInterval             = 1000 // ms
	DefaultMaintenanceIntervalHours = 200
)

// RegisterPoint maps one semantic telemetry name onto a controller register.
type RegisterPoint struct {
	Name          string              `json:"name"`
	Address       uint16              `json:"address"`
	RegisterClass RegisterClass       `json:"registerClass"`
	WireType      WireType            `json:"wireType"`
	Scale         float64             `json:"scale,omitempty"`
	Offset        float64             `json:"offset,omitempty"`
	Unit          string              `json:"unit,omitempty"`
	Description   string              `json:"description,omitempty"`
	AccessMode    constant.AccessMode `json:"accessMode"`
}

// Words is the number of consecutive registers the point occupies.
func (p *RegisterPoint) Words() uint16 {
	return WireTypeWords[p.WireType]
}

// RegisterMap is the immutable register layout of one controller family.
type RegisterMap struct {
	Brand        Brand
	MemoryLayout constant.MemoryLayout
	Points       []*RegisterPoint
	pointsByName map[string]*RegisterPoint
}

// Index builds the name lookup and applies the scale default.
func (m *RegisterMap) Index() {
	m.pointsByName = make(map[string]*RegisterPoint, len(m.Points))
	for _, point := range m.Points {
		if point.Scale == 0 {
			point.Scale = 1
		}
		m.pointsByName[point.Name] = point
	}
}

func (m *RegisterMap) PointByName(name string) (*RegisterPoint, bool) {
	point, ok := m.pointsByName[name]
	return point, ok
}

// PollPoints returns the points read by the poll cycle. Writable command
// coils are excluded, they are only ever pulsed.
func (m *RegisterMap) PollPoints() []*RegisterPoint {
	points := make([]*RegisterPoint, 0, len(m.Points))
	for _, point := range m.Points {
		if point.AccessMode == constant.AccessModeReadOnly {
			points = append(points, point)
		}
	}
	return points
}

// CommandPoint returns the writable coil registered under name.
func (m *RegisterMap) CommandPoint(name string) (*RegisterPoint, error) {
	point, ok := m.pointsByName[name]
	if !ok {
		return nil, fmt.Errorf("command coil %s not present in %s register map", name, BrandToString[m.Brand])
	}
	if point.RegisterClass != RegisterCoil || point.AccessMode != constant.AccessModeReadWrite {
		return nil, fmt.Errorf("point %s is not a writable coil", name)
	}
	return point, nil
}

// Validate enforces the register map invariants.
func (m *RegisterMap) Validate() error {
	if len(m.Points) == 0 {
		return constant.ErrRegisterMapEmptied
	}
	names := make(map[string]struct{}, len(m.Points))
	for _, point := range m.Points {
		if len(point.Name) == 0 {
			return fmt.Errorf("register point at address %d has no name", point.Address)
		}
		if _, ok := names[point.Name]; ok {
			return fmt.Errorf("duplicated register point name %s", point.Name)
		}
		names[point.Name] = struct{}{}

		switch point.RegisterClass {
		case RegisterCoil, RegisterDiscrete:
			if point.WireType != WireBool {
				return fmt.Errorf("point %s: %s register requires bool wire type", point.Name, RegisterClassToString[point.RegisterClass])
			}
		case RegisterHolding, RegisterInput:
		default:
			return fmt.Errorf("point %s: unknown register class %d", point.Name, point.RegisterClass)
		}

		if WireTypeWords[point.WireType] == 2 {
			if point.RegisterClass != RegisterHolding && point.RegisterClass != RegisterInput {
				return fmt.Errorf("point %s: two word wire type %s requires a holding or input register", point.Name, WireTypeToString[point.WireType])
			}
		}
	}
	return nil
}

// Clone returns a deep copy, used to rebrand the fallback map.
func (m *RegisterMap) Clone() *RegisterMap {
	points := make([]*RegisterPoint, 0, len(m.Points))
	for _, point := range m.Points {
		p := *point
		points = append(points, &p)
	}
	c := &RegisterMap{
		Brand:        m.Brand,
		MemoryLayout: m.MemoryLayout,
		Points:       points,
	}
	c.Index()
	return c
}

type Transport struct {
	Type TransportType `json:"type"`
	// tcp
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
	// rtu
	Path     string            `json:"path,omitempty"`
	BaudRate int               `json:"baudRate,omitempty"`
	DataBits int               `json:"dataBits,omitempty"`
	Parity   constant.Parity   `json:"parity,omitempty"`
	StopBits constant.StopBits `json:"stopBits,omitempty"`
}

// GeneratorProfile is the stored configuration of the monitored genset.
// Brand stays a free string so an unrecognized controller family can still
// run on the generic fallback map.
type GeneratorProfile struct {
	runtime.ObjectMeta
	Brand                    string                `json:"brand"` // generac kohler cummins mebay custom
	Model                    string                `json:"model,omitempty"`
	Transport                *Transport            `json:"transport"`
	UnitId                   byte                  `json:"unitId"`
	Timeout                  uint                  `json:"timeout"`    // ms
	RetryDelay               uint                  `json:"retryDelay"` // ms
	MaxRetries               int                   `json:"maxRetries"`
	PollInterval             uint                  `json:"pollIntervalMs"` // ms
	MaintenanceIntervalHours float64               `json:"maintenanceIntervalHours"`
	FuelCapacityGallons      float64               `json:"fuelCapacityGallons,omitempty"`
	RatedPowerKW             float64               `json:"ratedPowerKW,omitempty"`
	MemoryLayout             constant.MemoryLayout `json:"memoryLayout"`           // DCBA CDAB BADC ABCD, custom brand only
	CustomPoints             []*RegisterPoint      `json:"customPoints,omitempty"` // custom brand only
}

// SetDefaults fills the optional tuning knobs the caller left zero.
func (p *GeneratorProfile) SetDefaults() {
	if p.Timeout == 0 {
		p.Timeout = DefaultTimeout
	}
	if p.RetryDelay == 0 {
		p.RetryDelay = DefaultRetryDelay
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.PollInterval == 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.MaintenanceIntervalHours == 0 {
		p.MaintenanceIntervalHours = DefaultMaintenanceIntervalHours
	}
}

// RawResult is one transport sweep over the register map, still undecoded.
type RawResult struct {
	Timestamp        time.Time
	Raw              map[string][]byte
	Errors           []string
	ConnectionStatus ConnectionStatus
}

// ReadResult carries the decoded values of one poll cycle.
type ReadResult struct {
	Timestamp        time.Time              `json:"timestamp"`
	Values           map[string]interface{} `json:"values"`
	Errors           []string               `json:"errors,omitempty"`
	ConnectionStatus ConnectionStatus       `json:"connectionStatus"`
}

type StatusMetrics struct {
	Voltage            float64 `json:"voltage"`
	Current            float64 `json:"current"`
	Frequency          float64 `json:"frequency"`
	PowerKW            float64 `json:"powerKW"`
	PowerFactor        float64 `json:"powerFactor"`
	OilTemperature     float64 `json:"oilTemperature"`
	CoolantTemperature float64 `json:"coolantTemperature"`
	ExhaustTemperature float64 `json:"exhaustTemperature"`
	Rpm                float64 `json:"rpm"`
	OilPressure        float64 `json:"oilPressure"`
	FuelPressure       float64 `json:"fuelPressure"`
	MainsVoltage       float64 `json:"mainsVoltage"`
	RuntimeHours       float64 `json:"runtimeHours"`
	FuelLevel          float64 `json:"fuelLevel"`
	BatteryVoltage     float64 `json:"batteryVoltage"`
}

// GeneratorStatus is the synthesized view of one poll cycle.
type GeneratorStatus struct {
	Running  bool `json:"running"`
	Loaded   bool `json:"loaded"`
	Cooldown bool `json:"cooldown"`
	Ready    bool `json:"ready"`
	Starting bool `json:"starting"`
	Stopping bool `json:"stopping"`

	MainsAvailable  bool           `json:"mainsAvailable"`
	GeneratorOnline bool           `json:"generatorOnline"`
	TransferSwitch  TransferSwitch `json:"transferSwitch"`

	Metrics StatusMetrics `json:"metrics"`

	Alarms   []string `json:"alarms"`
	Faults   []string `json:"faults"`
	Warnings []string `json:"warnings"`

	MaintenanceDueInHours float64 `json:"maintenanceDueInHours"`

	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
	LastUpdated      time.Time        `json:"lastUpdated"`
	DataAge          float64          `json:"dataAge"` // seconds, computed on read
}

func (s *GeneratorStatus) DeepCopy() *GeneratorStatus {
	if s == nil {
		return nil
	}
	c := *s
	c.Alarms = append([]string(nil), s.Alarms...)
	c.Faults = append([]string(nil), s.Faults...)
	c.Warnings = append([]string(nil), s.Warnings...)
	return &c
}
