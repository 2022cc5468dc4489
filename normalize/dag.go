package normalize

import (
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/tidwall/gjson"
)

const vertexNameIDMappingPath = "otherinfo.vertexNameIdMapping"

// DagFields is the field table of a TEZ_DAG_ID entity.
func DagFields() *fieldmap.Spec {
	return fieldmap.MustSpec(
		fieldmap.FromPath("id", "entity"),
		fieldmap.FromPath("submittedTime", "starttime"),
		fieldmap.FromPath("startTime", "otherinfo.startTime"),
		fieldmap.FromPath("endTime", "otherinfo.endTime"),
		fieldmap.FromPath("name", "primaryfilters.dagName.0"),
		fieldmap.FromPath("user", "primaryfilters.user.0"),
		fieldmap.FromPath("applicationId", "otherinfo.applicationId"),
		fieldmap.FromPath("status", "otherinfo.status"),
		fieldmap.FromPath("diagnostics", "otherinfo.diagnostics"),
		fieldmap.FromPath("domain", "domain"),
		fieldmap.Custom("vertexNameIdMap", vertexNameIDMap),
	)
}

// vertexNameIDMap reads otherinfo.vertexNameIdMapping. Entries whose id is
// not a string are skipped.
func vertexNameIDMap(raw gjson.Result) (any, error) {
	mapping := raw.Get(vertexNameIDMappingPath)
	if !mapping.Exists() || mapping.Type == gjson.Null {
		return nil, nil
	}
	if !mapping.IsObject() {
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(vertexNameIDMappingPath + " is not an object")
	}

	out := make(map[string]string)
	mapping.ForEach(func(name, id gjson.Result) bool {
		if id.Type == gjson.String {
			out[strings.Clone(name.String())] = strings.Clone(id.String())
		}
		return true
	})
	return out, nil
}

// NewDagNormalizer normalizes DAGs.
func NewDagNormalizer() *EntityNormalizer {
	return newEntityNormalizer(timeline.KindDag, DagFields(), func(rec fieldmap.Record, counters *CounterSet) (*timeline.Batch, error) {
		names, _ := rec["vertexNameIdMap"].(map[string]string)
		return &timeline.Batch{Dags: []timeline.Dag{{
			ID:              rec.String("id"),
			Name:            rec.String("name"),
			User:            rec.String("user"),
			SubmittedTime:   rec.Int64("submittedTime"),
			StartTime:       rec.Int64("startTime"),
			EndTime:         rec.Int64("endTime"),
			Status:          rec.String("status"),
			Diagnostics:     rec.String("diagnostics"),
			ApplicationID:   rec.String("applicationId"),
			Domain:          rec.String("domain"),
			VertexNameIDMap: names,
			CounterGroups:   counters.GroupIDs,
		}}}, nil
	})
}
