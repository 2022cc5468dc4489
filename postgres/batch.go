package postgres

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/meikuraledutech/timeline"
)

// SaveBatch upserts every record of b in one transaction and tags them with
// a fresh ingest id. For each parent that owns counters the counter groups
// and counters stored for it are deleted first, and likewise the configs of
// an application and the inputs of a vertex with their configs, so a newer
// payload replaces them wholesale.
func (s *PGStore) SaveBatch(ctx context.Context, b *timeline.Batch) (string, error) {
	ingestID := uuid.NewString()
	records := b.Records()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("timeline: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO timeline_ingests (id, records, failures) VALUES ($1, $2, $3)`,
		ingestID, len(records), len(b.Failures),
	); err != nil {
		return "", fmt.Errorf("timeline: insert ingest: %w", err)
	}

	// Delete side tables of the stored version of every parent (replace semantics).
	for _, r := range records {
		if _, ok := timeline.CounterGroupsOf(r); !ok {
			continue
		}
		parent := timeline.ParentRef{Kind: r.EntityKind(), ID: r.EntityID()}
		if _, err := tx.Exec(ctx,
			`DELETE FROM timeline_records WHERE kind = $1 AND owner_id IN (
				SELECT id FROM timeline_records WHERE kind = $2 AND owner_id = $3)`,
			timeline.KindCounter.String(), timeline.KindCounterGroup.String(), parent.String(),
		); err != nil {
			return "", fmt.Errorf("timeline: delete counters of %s: %w", parent, err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM timeline_records WHERE kind = $1 AND owner_id = $2`,
			timeline.KindCounterGroup.String(), parent.String(),
		); err != nil {
			return "", fmt.Errorf("timeline: delete counter groups of %s: %w", parent, err)
		}
		if parent.Kind == timeline.KindApplication {
			if _, err := tx.Exec(ctx,
				`DELETE FROM timeline_records WHERE kind = $1 AND owner_id = $2`,
				timeline.KindConfig.String(), parent.ID,
			); err != nil {
				return "", fmt.Errorf("timeline: delete configs of %s: %w", parent, err)
			}
		}
		if parent.Kind == timeline.KindVertex {
			if _, err := tx.Exec(ctx,
				`DELETE FROM timeline_records WHERE kind = $1 AND owner_id IN (
					SELECT id FROM timeline_records WHERE kind = $2 AND owner_id = $3)`,
				timeline.KindConfig.String(), timeline.KindVertexInput.String(), parent.ID,
			); err != nil {
				return "", fmt.Errorf("timeline: delete input configs of %s: %w", parent, err)
			}
			if _, err := tx.Exec(ctx,
				`DELETE FROM timeline_records WHERE kind = $1 AND owner_id = $2`,
				timeline.KindVertexInput.String(), parent.ID,
			); err != nil {
				return "", fmt.Errorf("timeline: delete inputs of %s: %w", parent, err)
			}
		}
	}

	// Upsert records.
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("timeline: encode %s %s: %w", r.EntityKind(), r.EntityID(), err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO timeline_records (kind, id, owner_id, ingest_id, data) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (kind, id) DO UPDATE SET
				owner_id = EXCLUDED.owner_id,
				ingest_id = EXCLUDED.ingest_id,
				data = EXCLUDED.data,
				updated_at = NOW()`,
			r.EntityKind().String(), r.EntityID(), r.OwnerID(), ingestID, data,
		); err != nil {
			return "", fmt.Errorf("timeline: upsert %s %s: %w", r.EntityKind(), r.EntityID(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("timeline: commit: %w", err)
	}
	return ingestID, nil
}

// DeleteIngest removes every record last written by ingestID along with the
// ingest itself. No error if the ingest doesn't exist.
func (s *PGStore) DeleteIngest(ctx context.Context, ingestID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("timeline: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM timeline_records WHERE ingest_id = $1`, ingestID); err != nil {
		return fmt.Errorf("timeline: delete records of ingest: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM timeline_ingests WHERE id = $1`, ingestID); err != nil {
		return fmt.Errorf("timeline: delete ingest: %w", err)
	}

	return tx.Commit(ctx)
}
