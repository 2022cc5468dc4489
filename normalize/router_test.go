package normalize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/meikuraledutech/timeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func dagEntities(ids ...string) string {
	items := make([]string, 0, len(ids))
	for _, id := range ids {
		items = append(items, fmt.Sprintf(`{
			"entity": %q,
			"primaryfilters": {"dagName": ["dag %s"]},
			"otherinfo": {"status": "SUCCEEDED", "counters": {"counterGroups": [
				{"counterGroupName": "g1", "counters": [{"counterName": "c1", "counterValue": 1}]}
			]}}
		}`, id, id))
	}
	return strings.Join(items, ",")
}

func TestRouterCollectionEnvelopes(t *testing.T) {
	r := NewDefaultRouter()

	for _, payload := range []string{
		`{"dags": [` + dagEntities("dag_1", "dag_2", "dag_3") + `]}`,
		`{"entities": [` + dagEntities("dag_1", "dag_2", "dag_3") + `]}`,
	} {
		b, err := r.Normalize([]byte(payload), timeline.KindDag)
		require.NoError(t, err)
		require.Len(t, b.Dags, 3)
		for i, id := range []string{"dag_1", "dag_2", "dag_3"} {
			require.Equal(t, id, b.Dags[i].ID)
			require.Equal(t, "dag "+id, b.Dags[i].Name)
		}
		require.Len(t, b.CounterGroups, 3)
		require.Len(t, b.Counters, 3)
		require.Empty(t, b.Failures)
	}
}

func TestRouterPluralTakesPrecedence(t *testing.T) {
	payload := `{"entities": [` + dagEntities("dag_9") + `], "dags": [` + dagEntities("dag_1") + `]}`
	b, err := NewDefaultRouter().Normalize([]byte(payload), timeline.KindDag)
	require.NoError(t, err)
	require.Len(t, b.Dags, 1)
	require.Equal(t, "dag_1", b.Dags[0].ID)

	// a null collection does not hide the populated one
	payload = `{"dags": null, "entities": [` + dagEntities("dag_1") + `]}`
	b, err = NewDefaultRouter().Normalize([]byte(payload), timeline.KindDag)
	require.NoError(t, err)
	require.Len(t, b.Dags, 1)
	require.Equal(t, "dag_1", b.Dags[0].ID)
}

func TestRouterSingleEnvelopes(t *testing.T) {
	r := NewDefaultRouter()

	b, err := r.Normalize([]byte(`{"dag": `+rawDagEntity+`}`), timeline.KindDag)
	require.NoError(t, err)
	require.Len(t, b.Dags, 1)
	require.Equal(t, "dag_1", b.Dags[0].ID)

	bare, err := r.Normalize([]byte(rawDagEntity), timeline.KindDag)
	require.NoError(t, err)
	require.Equal(t, b, bare)

	detail, err := r.Normalize([]byte(`{"appId": "application_1_1", "appState": "RUNNING"}`), timeline.KindApplicationDetail)
	require.NoError(t, err)
	require.Len(t, detail.ApplicationDetails, 1)
	require.Equal(t, "RUNNING", detail.ApplicationDetails[0].AppState)
}

func TestRouterEmptyCollection(t *testing.T) {
	b, err := NewDefaultRouter().Normalize([]byte(`{"entities": []}`), timeline.KindVertex)
	require.NoError(t, err)
	for _, k := range timeline.Kinds {
		require.Zero(t, b.Len(k), k.String())
	}
}

func TestRouterShapeMismatch(t *testing.T) {
	r := NewDefaultRouter()

	for _, payload := range []string{
		`[{"entity": "dag_1"}]`,
		`"dag_1"`,
		`null`,
		`not json`,
		`{"vertices": []}`,
		`{"entities": {"entity": "dag_1"}}`,
		`{"dags": "dag_1"}`,
		`{"dag": ["dag_1"]}`,
		`{"entities": null}`,
		`{"dags": null}`,
		`{"dags": null, "entities": null}`,
		`{"dag": null}`,
		`{"entity": null}`,
	} {
		_, err := r.Normalize([]byte(payload), timeline.KindDag)
		require.True(t, timeline.ErrShapeMismatch.Equal(err), "payload %s: unexpected error %v", payload, err)
	}
}

func TestRouterNoNormalizer(t *testing.T) {
	_, err := NewDefaultRouter().Normalize([]byte(`{"counters": []}`), timeline.KindCounter)
	require.True(t, timeline.ErrNoNormalizer.Equal(err), "unexpected error %v", err)

	_, err = NewRouter(NewDagNormalizer()).Normalize([]byte(`{"entities": []}`), timeline.KindVertex)
	require.True(t, timeline.ErrNoNormalizer.Equal(err), "unexpected error %v", err)
}

func TestRouterIsolatesFailures(t *testing.T) {
	payload := `{"taskAttempts": [
		{"entity": "attempt_1", "otherinfo": {"inProgressLogsURL": "node1/container_1_01/logs"}},
		{"entity": "attempt_2", "otherinfo": {"inProgressLogsURL": "node2/stdout"}},
		{"otherinfo": {"status": "FAILED"}},
		{"entity": "attempt_4"}
	]}`

	patternFailures := testutil.ToFloat64(entityFailures.WithLabelValues("taskAttempt", "pattern_mismatch"))
	shapeFailures := testutil.ToFloat64(entityFailures.WithLabelValues("taskAttempt", "shape_mismatch"))
	normalized := testutil.ToFloat64(entitiesNormalized.WithLabelValues("taskAttempt"))

	b, err := NewDefaultRouter().Normalize([]byte(payload), timeline.KindTaskAttempt)
	require.NoError(t, err)

	require.Len(t, b.TaskAttempts, 2)
	require.Equal(t, "attempt_1", b.TaskAttempts[0].ID)
	require.Equal(t, "container_1_01", b.TaskAttempts[0].ContainerID)
	require.Equal(t, "attempt_4", b.TaskAttempts[1].ID)

	require.Len(t, b.Failures, 2)
	require.Equal(t, 1, b.Failures[0].Index)
	require.Equal(t, "attempt_2", b.Failures[0].EntityID)
	require.True(t, timeline.ErrPatternMismatch.Equal(b.Failures[0].Err))
	require.Equal(t, 2, b.Failures[1].Index)
	require.Equal(t, "", b.Failures[1].EntityID)
	require.True(t, timeline.ErrShapeMismatch.Equal(b.Failures[1].Err))
	require.Error(t, b.Err())

	require.Equal(t, patternFailures+1, testutil.ToFloat64(entityFailures.WithLabelValues("taskAttempt", "pattern_mismatch")))
	require.Equal(t, shapeFailures+1, testutil.ToFloat64(entityFailures.WithLabelValues("taskAttempt", "shape_mismatch")))
	require.Equal(t, normalized+2, testutil.ToFloat64(entitiesNormalized.WithLabelValues("taskAttempt")))
}

func TestRouterSingleEntityFailure(t *testing.T) {
	b, err := NewDefaultRouter().Normalize([]byte(`{"application": {"entity": "application_1_1"}}`), timeline.KindApplication)
	require.NoError(t, err)
	require.Empty(t, b.Applications)
	require.Len(t, b.Failures, 1)
	require.Equal(t, "application_1_1", b.Failures[0].EntityID)
}

func TestRouterIdempotent(t *testing.T) {
	payload := []byte(`{"entities": [` + dagEntities("dag_1", "dag_2") + `]}`)
	r := NewDefaultRouter()

	first, err := r.Normalize(payload, timeline.KindDag)
	require.NoError(t, err)
	second, err := r.Normalize(payload, timeline.KindDag)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRouterReferentialCompleteness(t *testing.T) {
	payload := `{"applications": [{
		"entity": "tez_application_1_1",
		"otherinfo": {
			"config": {"a": "1", "b": "2"},
			"counters": {"counterGroups": [
				{"counterGroupName": "g1", "counters": [{"counterName": "c1", "counterValue": 3}, {"counterName": "c2"}]},
				{"counterGroupName": "g2", "counters": [{"counterName": "c1", "counterValue": 4}]}
			]}
		}
	}]}`
	b, err := NewDefaultRouter().Normalize([]byte(payload), timeline.KindApplication)
	require.NoError(t, err)

	groups := make(map[string]timeline.CounterGroup)
	for _, g := range b.CounterGroups {
		groups[g.ID] = g
	}
	counters := make(map[string]timeline.Counter)
	for _, c := range b.Counters {
		counters[c.ID] = c
	}
	configs := make(map[string]timeline.Config)
	for _, c := range b.Configs {
		configs[c.ID] = c
	}

	require.Len(t, b.Applications, 1)
	app := b.Applications[0]
	for _, id := range app.CounterGroups {
		g, ok := groups[id]
		require.True(t, ok, id)
		require.Equal(t, timeline.ParentRef{Kind: timeline.KindApplication, ID: app.ID}, g.Parent)
		for _, cid := range g.Counters {
			c, ok := counters[cid]
			require.True(t, ok, cid)
			require.Equal(t, g.ID, c.ParentGroupID)
		}
	}
	for _, id := range app.Configs {
		c, ok := configs[id]
		require.True(t, ok, id)
		require.Equal(t, app.ID, c.ApplicationID)
	}
	require.Len(t, groups, 2)
	require.Len(t, counters, 3)
	require.Len(t, configs, 2)
}

func TestInitMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	InitMetrics(registry)

	_, err := NewDefaultRouter().Normalize([]byte(rawDagEntity), timeline.KindDag)
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "timeline_normalize_entities_total")
	require.Contains(t, names, "timeline_normalize_payload_duration_seconds")
}
