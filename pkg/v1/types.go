package v1

// ControlCommand requests a pulsed start or stop on the controller.
type ControlCommand struct {
	Command string `json:"command" binding:"required,oneof=start stop"`
}

// ConnectionTestResult reports one probe of the configured endpoint.
type ConnectionTestResult struct {
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// EffectiveConfig is the merged view of the stored profile and the
// register map actually driving the poll loop. MapBrand differs from
// Brand when an unrecognized family fell back to the generic map.
type EffectiveConfig struct {
	ProfileId                string     `json:"profileId"`
	Name                     string     `json:"name"`
	Brand                    string     `json:"brand"`
	MapBrand                 string     `json:"mapBrand"`
	Model                    string     `json:"model,omitempty"`
	Transport                *Transport `json:"transport"`
	UnitId                   byte       `json:"unitId"`
	Timeout                  uint       `json:"timeout"`
	RetryDelay               uint       `json:"retryDelay"`
	MaxRetries               int        `json:"maxRetries"`
	PollInterval             uint       `json:"pollIntervalMs"`
	MaintenanceIntervalHours float64    `json:"maintenanceIntervalHours"`
	FuelCapacityGallons      float64    `json:"fuelCapacityGallons,omitempty"`
	RatedPowerKW             float64    `json:"ratedPowerKW,omitempty"`
	MemoryLayout             string     `json:"memoryLayout"`
	MonitorState             string     `json:"monitorState"`
	Points                   int        `json:"points"`
}

// HistoryResponse wraps one telemetry window query.
type HistoryResponse struct {
	ProfileId string      `json:"profileId"`
	Start     string      `json:"start"`
	End       string      `json:"end"`
	Rows      interface{} `json:"rows"`
}
