package v1

// GeneratorProfile is the inbound configuration payload.
type GeneratorProfile struct {
	Name                     string           `json:"name" binding:"required,min=1,max=64,excludesall=/0x22"`               // display name
	Brand                    string           `json:"brand" binding:"required,oneof=generac kohler cummins mebay custom"`   // controller family
	Model                    string           `json:"model,omitempty" binding:"omitempty,max=64"`                           // controller model
	Transport                *Transport       `json:"transport" binding:"required"`                                         // tcp or rtu endpoint
	UnitId                   byte             `json:"unitId" binding:"required,gte=1,lte=247"`                              // modbus unit id
	Timeout                  uint             `json:"timeout,omitempty" binding:"omitempty,gte=100"`                        // request timeout ms
	RetryDelay               uint             `json:"retryDelay,omitempty" binding:"omitempty,gte=100"`                     // reconnect delay ms
	MaxRetries               int              `json:"maxRetries,omitempty" binding:"omitempty,gte=1,lte=10"`                // retries per request
	PollInterval             uint             `json:"pollIntervalMs,omitempty" binding:"omitempty,gte=100"`                 // poll cycle ms
	MaintenanceIntervalHours float64          `json:"maintenanceIntervalHours,omitempty" binding:"omitempty,gt=0"`          // service interval
	FuelCapacityGallons      float64          `json:"fuelCapacityGallons,omitempty" binding:"omitempty,gt=0"`               // tank size
	RatedPowerKW             float64          `json:"ratedPowerKW,omitempty" binding:"omitempty,gt=0"`                      // nameplate power
	MemoryLayout             string           `json:"memoryLayout,omitempty" binding:"omitempty,oneof=ABCD BADC CDAB DCBA"` // custom brand only
	CustomPoints             []*RegisterPoint `json:"customPoints,omitempty" binding:"omitempty,dive"`                      // custom brand only
}

// RegisterPoint maps one telemetry name onto a controller register.
type RegisterPoint struct {
	Name          string  `json:"name" binding:"required,min=1,max=64,excludesall=/0x22"`
	Address       *uint16 `json:"address" binding:"required,number,gte=0"`
	RegisterClass string  `json:"registerClass" binding:"required,oneof=holding input coil discrete"`
	WireType      string  `json:"wireType" binding:"required,oneof=uint16 int16 uint32 int32 float32 bool"`
	Scale         float64 `json:"scale,omitempty"`
	Offset        float64 `json:"offset,omitempty"`
	Unit          string  `json:"unit,omitempty"`
	Description   string  `json:"description,omitempty" binding:"omitempty,max=128"`
	AccessMode    string  `json:"accessMode" binding:"required,oneof=r rw"`
}

type Transport struct {
	Type string `json:"type" binding:"required,oneof=tcp rtu"`
	// tcp
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty" binding:"omitempty,gte=1,lte=65535"`
	// rtu
	Path     string `json:"path,omitempty"`
	BaudRate int    `json:"baudRate,omitempty" binding:"omitempty,gte=1200,lte=115200"`
	DataBits int    `json:"dataBits,omitempty" binding:"omitempty,oneof=5 6 7 8"`
	Parity   string `json:"parity,omitempty" binding:"omitempty,oneof=noParity oddParity evenParity markParity spaceParity"`
	StopBits string `json:"stopBits,omitempty" binding:"omitempty,oneof=1 1.5 2"`
}
