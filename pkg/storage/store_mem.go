package storage

import (
	"context"
	"sync"

	generator "gensetgateway/pkg/generator/runtime"
)

var _ TelemetryStore = (*MemTelemetryStore)(nil)

const DefaultMemTelemetryCapacity = 10000

// MemTelemetryStore keeps the most recent cycles per profile in a fixed
// size ring. It backs deployments that run without a database.
type MemTelemetryStore struct {
	mux      sync.RWMutex
	capacity int
	rings    map[string]*telemetryRing
}

type telemetryRing struct {
	rows []*TelemetryRow
	next int
	full bool
}

func newTelemetryRing(capacity int) *telemetryRing {
	return &telemetryRing{rows: make([]*TelemetryRow, capacity)}
}

func (r *telemetryRing) push(row *TelemetryRow) {
	r.rows[r.next] = row
	r.next++
	if r.next == len(r.rows) {
		r.next = 0
		r.full = true
	}
}

func (r *telemetryRing) size() int {
	if r.full {
		return len(r.rows)
	}
	return r.next
}

// at returns the i-th oldest row, i in [0, size).
func (r *telemetryRing) at(i int) *TelemetryRow {
	if r.full {
		return r.rows[(r.next+i)%len(r.rows)]
	}
	return r.rows[i]
}

func NewMemTelemetryStore(capacity int) *MemTelemetryStore {
	if capacity <= 0 {
		capacity = DefaultMemTelemetryCapacity
	}
	return &MemTelemetryStore{capacity: capacity, rings: make(map[string]*telemetryRing)}
}

func (s *MemTelemetryStore) Append(ctx context.Context, profileId string, result *generator.ReadResult) error {
	values := make(map[string]interface{}, len(result.Values))
	for name, value := range result.Values {
		values[name] = value
	}
	row := &TelemetryRow{
		ProfileId:        profileId,
		Timestamp:        result.Timestamp,
		Values:           values,
		Errors:           append([]string(nil), result.Errors...),
		ConnectionStatus: generator.ConnectionStatusToString[result.ConnectionStatus],
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	ring, ok := s.rings[profileId]
	if !ok {
		ring = newTelemetryRing(s.capacity)
		s.rings[profileId] = ring
	}
	ring.push(row)
	return nil
}

// Query walks newest to oldest so the result order matches the database
// store.
func (s *MemTelemetryStore) Query(ctx context.Context, profileId string, query TelemetryQuery) ([]*TelemetryRow, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultTelemetryLimit
	}

	s.mux.RLock()
	defer s.mux.RUnlock()
	ring, ok := s.rings[profileId]
	if !ok {
		return []*TelemetryRow{}, nil
	}

	history := make([]*TelemetryRow, 0)
	for i := ring.size() - 1; i >= 0 && len(history) < limit; i-- {
		row := ring.at(i)
		if !query.Start.IsZero() && row.Timestamp.Before(query.Start) {
			continue
		}
		if !query.End.IsZero() && row.Timestamp.After(query.End) {
			continue
		}
		history = append(history, row)
	}
	return history, nil
}

func (s *MemTelemetryStore) Close(ctx context.Context) error {
	s.mux.Lock()
	s.rings = make(map[string]*telemetryRing)
	s.mux.Unlock()
	return nil
}
