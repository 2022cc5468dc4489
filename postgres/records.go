package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/timeline"
)

// getRecord fetches a single record by kind and id.
// Returns nil, nil if not found.
func getRecord[T any](ctx context.Context, s *PGStore, kind timeline.Kind, id string) (*T, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM timeline_records WHERE kind = $1 AND id = $2`, kind.String(), id,
	).Scan(&data)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("timeline: get %s: %w", kind, err)
	}

	var r T
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("timeline: decode %s %s: %w", kind, id, err)
	}
	return &r, nil
}

func (s *PGStore) GetDag(ctx context.Context, id string) (*timeline.Dag, error) {
	return getRecord[timeline.Dag](ctx, s, timeline.KindDag, id)
}

func (s *PGStore) GetVertex(ctx context.Context, id string) (*timeline.Vertex, error) {
	return getRecord[timeline.Vertex](ctx, s, timeline.KindVertex, id)
}

func (s *PGStore) GetTask(ctx context.Context, id string) (*timeline.Task, error) {
	return getRecord[timeline.Task](ctx, s, timeline.KindTask, id)
}

func (s *PGStore) GetTaskAttempt(ctx context.Context, id string) (*timeline.TaskAttempt, error) {
	return getRecord[timeline.TaskAttempt](ctx, s, timeline.KindTaskAttempt, id)
}

func (s *PGStore) GetApplication(ctx context.Context, id string) (*timeline.Application, error) {
	return getRecord[timeline.Application](ctx, s, timeline.KindApplication, id)
}

func (s *PGStore) GetApplicationDetail(ctx context.Context, appID string) (*timeline.ApplicationDetail, error) {
	return getRecord[timeline.ApplicationDetail](ctx, s, timeline.KindApplicationDetail, appID)
}

func (s *PGStore) GetCounterGroup(ctx context.Context, id string) (*timeline.CounterGroup, error) {
	return getRecord[timeline.CounterGroup](ctx, s, timeline.KindCounterGroup, id)
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
