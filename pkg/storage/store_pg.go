package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	generator "gensetgateway/pkg/generator/runtime"
)

var _ TelemetryStore = (*PgTelemetryStore)(nil)

const telemetrySchema = `
CREATE TABLE IF NOT EXISTS telemetry (
    profile_id        TEXT        NOT NULL,
    ts                TIMESTAMPTZ NOT NULL,
    values            JSONB       NOT NULL,
    errors            TEXT[],
    connection_status TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS telemetry_profile_ts ON telemetry (profile_id, ts DESC);
`

// PgTelemetryStore keeps poll cycles in a postgres table, one row per
// cycle with the decoded values as jsonb.
type PgTelemetryStore struct {
	pool *pgxpool.Pool
}

func NewPgTelemetryStore(ctx context.Context, dsn string) (*PgTelemetryStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create telemetry pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping telemetry database")
	}
	if _, err := pool.Exec(ctx, telemetrySchema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ensure telemetry schema")
	}
	klog.V(1).InfoS("Connected telemetry database")
	return &PgTelemetryStore{pool: pool}, nil
}

func (s *PgTelemetryStore) Append(ctx context.Context, profileId string, result *generator.ReadResult) error {
	values, err := json.Marshal(result.Values)
	if err != nil {
		return errors.Wrap(err, "marshal telemetry values")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO telemetry (profile_id, ts, values, errors, connection_status) VALUES ($1, $2, $3, $4, $5)`,
		profileId, result.Timestamp, values, result.Errors,
		generator.ConnectionStatusToString[result.ConnectionStatus])
	if err != nil {
		return errors.Wrap(err, "insert telemetry row")
	}
	return nil
}

func (s *PgTelemetryStore) Query(ctx context.Context, profileId string, query TelemetryQuery) ([]*TelemetryRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT ts, values, errors, connection_status FROM telemetry WHERE profile_id = $1`)
	args := []interface{}{profileId}

	if !query.Start.IsZero() {
		args = append(args, query.Start)
		builder.WriteString(` AND ts >= $` + strconv.Itoa(len(args)))
	}
	if !query.End.IsZero() {
		args = append(args, query.End)
		builder.WriteString(` AND ts <= $` + strconv.Itoa(len(args)))
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultTelemetryLimit
	}
	args = append(args, limit)
	builder.WriteString(` ORDER BY ts DESC LIMIT $` + strconv.Itoa(len(args)))

	rows, err := s.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "query telemetry history")
	}
	defer rows.Close()

	history := []*TelemetryRow{}
	for rows.Next() {
		row := &TelemetryRow{ProfileId: profileId}
		var values []byte
		if err := rows.Scan(&row.Timestamp, &values, &row.Errors, &row.ConnectionStatus); err != nil {
			return nil, errors.Wrap(err, "scan telemetry row")
		}
		if err := json.Unmarshal(values, &row.Values); err != nil {
			return nil, errors.Wrap(err, "unmarshal telemetry values")
		}
		history = append(history, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate telemetry rows")
	}
	return history, nil
}

func (s *PgTelemetryStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
