// Package sqlite keeps a temperature history so the bridge can answer
// trend queries without depending on the host's recorder.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mrverrall/philips-heater-coap/internal/domain/model"
)

type ReadingStore struct {
	db  *sql.DB
	log *slog.Logger
}

// Open initializes the database and runs migrations.
func Open(ctx context.Context, dbPath string, log *slog.Logger) (*ReadingStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	store := &ReadingStore{db: db, log: log}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *ReadingStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *ReadingStore) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			temperature REAL NOT NULL,
			target_temperature REAL,
			heating_status INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_readings_recorded_at ON readings(recorded_at);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

func (s *ReadingStore) Record(ctx context.Context, r model.Reading) error {
	var target any
	if r.TargetTemp != nil {
		target = *r.TargetTemp
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (recorded_at, temperature, target_temperature, heating_status) VALUES (?, ?, ?, ?)`,
		r.Time.UTC().Format(time.RFC3339Nano), r.Temperature, target, r.HeatingStatus,
	)
	return err
}

// Recent returns up to limit samples, newest first.
func (s *ReadingStore) Recent(ctx context.Context, limit int) ([]model.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recorded_at, temperature, target_temperature, heating_status
		 FROM readings ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reading
	for rows.Next() {
		var recordedAt string
		var target sql.NullFloat64
		var r model.Reading
		if err := rows.Scan(&recordedAt, &r.Temperature, &target, &r.HeatingStatus); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("bad recorded_at %q: %w", recordedAt, err)
		}
		r.Time = t.UTC()
		if target.Valid {
			v := target.Float64
			r.TargetTemp = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune removes samples older than the cutoff and returns how many went.
func (s *ReadingStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM readings WHERE recorded_at < ?`,
		olderThan.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
