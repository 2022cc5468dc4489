package timeline_test

import (
	"context"
	"testing"

	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/memstore"
	"github.com/stretchr/testify/require"
)

func TestCounterValue(t *testing.T) {
	ctx := context.Background()
	s, err := memstore.New(0)
	require.NoError(t, err)

	dag := timeline.ParentRef{Kind: timeline.KindDag, ID: "dag_1"}
	_, err = s.SaveBatch(ctx, &timeline.Batch{
		Dags: []timeline.Dag{{ID: "dag_1", CounterGroups: []string{"dag_1/TaskCounter"}}},
		CounterGroups: []timeline.CounterGroup{{
			ID:       "dag_1/TaskCounter",
			Name:     "TaskCounter",
			Parent:   dag,
			Counters: []string{"dag_1/TaskCounter/INPUT_RECORDS"},
		}},
		Counters: []timeline.Counter{{
			ID:            "dag_1/TaskCounter/INPUT_RECORDS",
			Name:          "INPUT_RECORDS",
			Value:         42,
			ParentGroupID: "dag_1/TaskCounter",
		}},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		parent  timeline.ParentRef
		group   string
		counter string
		want    int64
	}{
		{"found", dag, "TaskCounter", "INPUT_RECORDS", 42},
		{"missing counter", dag, "TaskCounter", "OUTPUT_RECORDS", 0},
		{"missing group", dag, "FileSystemCounters", "INPUT_RECORDS", 0},
		{"other parent kind", timeline.ParentRef{Kind: timeline.KindVertex, ID: "dag_1"}, "TaskCounter", "INPUT_RECORDS", 0},
		{"missing parent", timeline.ParentRef{Kind: timeline.KindDag, ID: "dag_2"}, "TaskCounter", "INPUT_RECORDS", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timeline.CounterValue(ctx, s, tt.parent, tt.group, tt.counter)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
