package timeline

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)

		parsed, err = ParseKind(k.Plural())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	k, err := ParseKind("TaskAttempts")
	require.NoError(t, err)
	require.Equal(t, KindTaskAttempt, k)

	_, err = ParseKind("edge")
	require.True(t, ErrUnknownKind.Equal(err), "unexpected error %v", err)
}

func TestKindText(t *testing.T) {
	var out struct {
		Kind Kind `json:"kind"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"kind": "vertices"}`), &out))
	require.Equal(t, KindVertex, out.Kind)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	require.JSONEq(t, `{"kind": "vertex"}`, string(data))

	require.Error(t, json.Unmarshal([]byte(`{"kind": "edges"}`), &out))
}

func TestKindInfo(t *testing.T) {
	require.Equal(t, "TEZ_TASK_ATTEMPT_ID", KindTaskAttempt.TimelineEntityType())
	require.Equal(t, "appId", KindApplicationDetail.IDField())
	require.Equal(t, "", KindApplicationDetail.TimelineEntityType())
	require.True(t, KindApplication.HasCounters())
	require.False(t, KindApplicationDetail.HasCounters())
	require.False(t, KindCounter.HasCounters())
	require.Equal(t, "unknown", Kind(42).String())
}

func TestSynthesizedIDs(t *testing.T) {
	group := CounterGroupID("vertex_1_00", "FileSystemCounters")
	require.Equal(t, "vertex_1_00/FileSystemCounters", group)
	require.Equal(t, "vertex_1_00/FileSystemCounters/HDFS_BYTES_READ", CounterID(group, "HDFS_BYTES_READ"))
	require.Equal(t, "application_1_1tez.queue.name", ConfigID("application_1_1", "tez.queue.name"))

	input := VertexInputID("vertex_1_00", "src")
	require.Equal(t, "vertex_1_00/src", input)
	require.Equal(t, "vertex_1_00/src/split.count", InputConfigID(input, "split.count"))
	require.Equal(t, input, Config{ID: "c", VertexInputID: input}.OwnerID())
	require.Equal(t, "tez_application_1_1", Config{ID: "c", ApplicationID: "tez_application_1_1"}.OwnerID())
}

func TestCounterGroupsOf(t *testing.T) {
	groups, ok := CounterGroupsOf(Task{ID: "task_1", CounterGroups: []string{"task_1/g"}})
	require.True(t, ok)
	require.Equal(t, []string{"task_1/g"}, groups)

	_, ok = CounterGroupsOf(Config{ID: "c"})
	require.False(t, ok)
}

func TestBatchMerge(t *testing.T) {
	b := &Batch{Dags: []Dag{{ID: "dag_1"}}}
	b.Merge(&Batch{
		Dags:          []Dag{{ID: "dag_2"}},
		CounterGroups: []CounterGroup{{ID: "dag_2/g"}},
		Failures:      []EntityFailure{{Kind: KindDag, Index: 3, Err: ErrShapeMismatch.GenWithStackByArgs("x")}},
	})
	b.Merge(nil)

	require.Equal(t, []Dag{{ID: "dag_1"}, {ID: "dag_2"}}, b.Dags)
	require.Equal(t, 2, b.Len(KindDag))
	require.Equal(t, 1, b.Len(KindCounterGroup))
	require.Equal(t, 0, b.Len(KindUnknown))
	require.Len(t, b.Failures, 1)
}

func TestBatchRecords(t *testing.T) {
	b := &Batch{
		Counters:     []Counter{{ID: "dag_1/g/c"}},
		Dags:         []Dag{{ID: "dag_1"}},
		Applications: []Application{{ID: "tez_application_1_1"}},
	}
	b.Merge(&Batch{
		Configs:      []Config{{ID: "vertex_1/src/a", VertexInputID: "vertex_1/src"}},
		VertexInputs: []VertexInput{{ID: "vertex_1/src", VertexID: "vertex_1"}},
	})
	records := b.Records()
	require.Len(t, records, 5)
	require.Equal(t, KindApplication, records[0].EntityKind())
	require.Equal(t, KindDag, records[1].EntityKind())
	require.Equal(t, KindVertexInput, records[2].EntityKind())
	require.Equal(t, KindCounter, records[3].EntityKind())
	require.Equal(t, KindConfig, records[4].EntityKind())
	require.Equal(t, 1, b.Len(KindVertexInput))
}

func TestBatchMarshalJSON(t *testing.T) {
	b := &Batch{Vertices: []Vertex{{ID: "vertex_1", DagID: "dag_1", Inputs: []string{}, CounterGroups: []string{}}}}
	b.AddFailure(KindVertex, 1, "vertex_2", ErrPatternMismatch.GenWithStackByArgs("p", "u"))

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	for _, k := range Kinds {
		require.Contains(t, out, k.Plural())
	}
	require.JSONEq(t, `[]`, string(out["dags"]))
	require.JSONEq(t, `[{"id": "vertex_1", "dagId": "dag_1", "numTasks": 0, "failedTasks": 0,
		"succeededTasks": 0, "killedTasks": 0, "inputs": [], "counterGroups": []}]`, string(out["vertices"]))

	var failures []map[string]any
	require.NoError(t, json.Unmarshal(out["failures"], &failures))
	require.Len(t, failures, 1)
	require.Equal(t, "vertex", failures[0]["kind"])
	require.Equal(t, "vertex_2", failures[0]["entity"])
	require.Contains(t, failures[0]["error"], "pattern p not found")
}

func TestBatchErr(t *testing.T) {
	b := &Batch{}
	require.NoError(t, b.Err())

	b.AddFailure(KindDag, 0, "dag_1", ErrShapeMismatch.GenWithStackByArgs("a"))
	b.AddFailure(KindDag, 2, "", ErrShapeMismatch.GenWithStackByArgs("b"))
	err := b.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "dag #0 (dag_1)")
	require.Contains(t, err.Error(), "dag #2: ")
	require.True(t, ErrShapeMismatch.Equal(b.Failures[1].Err))
}
