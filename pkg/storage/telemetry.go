package storage

import (
	"context"
	"time"

	generator "gensetgateway/pkg/generator/runtime"
)

// TelemetryRow is one persisted poll cycle.
type TelemetryRow struct {
	ProfileId        string                 `json:"profileId"`
	Timestamp        time.Time              `json:"timestamp"`
	Values           map[string]interface{} `json:"values"`
	Errors           []string               `json:"errors,omitempty"`
	ConnectionStatus string                 `json:"connectionStatus"`
}

// TelemetryQuery bounds a history read. Zero Start or End leaves that side
// open, Limit zero falls back to the store default.
type TelemetryQuery struct {
	Start time.Time
	End   time.Time
	Limit int
}

const DefaultTelemetryLimit = 500

// TelemetryStore persists poll cycles and serves the history queries. The
// monitor writes through the same Append the sink interface declares.
type TelemetryStore interface {
	Append(ctx context.Context, profileId string, result *generator.ReadResult) error
	Query(ctx context.Context, profileId string, query TelemetryQuery) ([]*TelemetryRow, error)
	Close(ctx context.Context) error
}
