// Package sqlite persists rounds and telemetry in a single SQLite file.
// Round payloads are JSON marshaled and zstd-compressed into a BLOB column;
// telemetry events are small and stored as flat columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/lunargale/voidtable/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	round      INTEGER NOT NULL,
	sealed_at  INTEGER NOT NULL,
	payload    BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS rounds_session ON rounds (session_id, round);

CREATE TABLE IF NOT EXISTS telemetry_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	round      INTEGER NOT NULL,
	kind       TEXT    NOT NULL,
	actor_id   TEXT    NOT NULL DEFAULT '',
	detail     TEXT    NOT NULL DEFAULT '',
	at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS telemetry_session ON telemetry_events (session_id, id);
`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is a SQLite-backed RoundStore and TelemetryStore.
type Store struct {
	sqlDB   *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens (creating if needed) the store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Store{sqlDB: sqlDB, encoder: encoder, decoder: decoder}, nil
}

// Close closes the database. Nil-safe so callers can defer it in all startup
// paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendRound stores one sealed round.
func (s *Store) AppendRound(ctx context.Context, record storage.RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if record.SealedAt.IsZero() {
		record.SealedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal round record: %w", err)
	}
	blob := s.encoder.EncodeAll(payload, nil)

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO rounds (session_id, round, sealed_at, payload) VALUES (?, ?, ?, ?)`,
		record.SessionID, record.Round, toMillis(record.SealedAt), blob)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// ListRounds returns the session's rounds in round order.
func (s *Store) ListRounds(ctx context.Context, sessionID string) ([]storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT payload FROM rounds WHERE session_id = ? ORDER BY round, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []storage.RoundRecord
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		payload, err := s.decoder.DecodeAll(blob, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress round: %w", err)
		}
		var record storage.RoundRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("unmarshal round: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return out, nil
}

// AppendTelemetryEvent records one advisory event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.Kind) == "" {
		return fmt.Errorf("event kind is required")
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO telemetry_events (session_id, round, kind, actor_id, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		evt.SessionID, evt.Round, evt.Kind, evt.ActorID, evt.Detail, toMillis(evt.At))
	if err != nil {
		return fmt.Errorf("insert telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents returns the session's events in append order.
func (s *Store) ListTelemetryEvents(ctx context.Context, sessionID string) ([]storage.TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT session_id, round, kind, actor_id, detail, at FROM telemetry_events WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query telemetry events: %w", err)
	}
	defer rows.Close()

	var out []storage.TelemetryEvent
	for rows.Next() {
		var evt storage.TelemetryEvent
		var at int64
		if err := rows.Scan(&evt.SessionID, &evt.Round, &evt.Kind, &evt.ActorID, &evt.Detail, &at); err != nil {
			return nil, fmt.Errorf("scan telemetry event: %w", err)
		}
		evt.At = fromMillis(at)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry events: %w", err)
	}
	return out, nil
}
