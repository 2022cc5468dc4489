package postgres

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/meikuraledutech/timeline"
)

// listRecords returns every record of kind owned by ownerID, ordered by id.
// Returns an empty slice (not nil) if none found.
func listRecords[T any](ctx context.Context, s *PGStore, kind timeline.Kind, ownerID string) ([]T, error) {
	rows, err := s.db.Query(ctx,
		`SELECT data FROM timeline_records WHERE kind = $1 AND owner_id = $2 ORDER BY id`,
		kind.String(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("timeline: list %s: %w", kind.Plural(), err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("timeline: scan %s: %w", kind, err)
		}
		var r T
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("timeline: decode %s: %w", kind, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("timeline: rows %s: %w", kind.Plural(), err)
	}

	return out, nil
}

func (s *PGStore) ListVertices(ctx context.Context, dagID string) ([]timeline.Vertex, error) {
	return listRecords[timeline.Vertex](ctx, s, timeline.KindVertex, dagID)
}

func (s *PGStore) ListVertexInputs(ctx context.Context, vertexID string) ([]timeline.VertexInput, error) {
	return listRecords[timeline.VertexInput](ctx, s, timeline.KindVertexInput, vertexID)
}

func (s *PGStore) ListTasks(ctx context.Context, vertexID string) ([]timeline.Task, error) {
	return listRecords[timeline.Task](ctx, s, timeline.KindTask, vertexID)
}

func (s *PGStore) ListTaskAttempts(ctx context.Context, taskID string) ([]timeline.TaskAttempt, error) {
	return listRecords[timeline.TaskAttempt](ctx, s, timeline.KindTaskAttempt, taskID)
}

// ListCounterGroups returns the counter groups of parent. Groups are owned
// by the "kind:id" form of their parent so equal ids of different kinds do
// not collide.
func (s *PGStore) ListCounterGroups(ctx context.Context, parent timeline.ParentRef) ([]timeline.CounterGroup, error) {
	return listRecords[timeline.CounterGroup](ctx, s, timeline.KindCounterGroup, parent.String())
}

func (s *PGStore) ListCounters(ctx context.Context, groupID string) ([]timeline.Counter, error) {
	return listRecords[timeline.Counter](ctx, s, timeline.KindCounter, groupID)
}

// ListConfigs lists the configs owned by an application or a vertex input.
func (s *PGStore) ListConfigs(ctx context.Context, ownerID string) ([]timeline.Config, error) {
	return listRecords[timeline.Config](ctx, s, timeline.KindConfig, ownerID)
}
