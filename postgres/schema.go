package postgres

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS timeline_ingests (
    id         TEXT PRIMARY KEY,
    records    INTEGER NOT NULL,
    failures   INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS timeline_records (
    kind       TEXT NOT NULL,
    id         TEXT NOT NULL,
    owner_id   TEXT NOT NULL DEFAULT '',
    ingest_id  TEXT REFERENCES timeline_ingests(id) ON DELETE SET NULL,
    data       JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_timeline_records_owner  ON timeline_records(kind, owner_id);
CREATE INDEX IF NOT EXISTS idx_timeline_records_ingest ON timeline_records(ingest_id);
`

// CreateSchema creates the timeline_records and timeline_ingests tables if
// they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("timeline: create schema: %w", err)
	}
	return nil
}

// DropSchema drops the timeline_records and timeline_ingests tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS timeline_records, timeline_ingests CASCADE;`); err != nil {
		return fmt.Errorf("timeline: drop schema: %w", err)
	}
	return nil
}
