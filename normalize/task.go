package normalize

import (
	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/tidwall/gjson"
)

// TaskFields is the field table of a TEZ_TASK_ID entity.
func TaskFields() *fieldmap.Spec {
	return fieldmap.MustSpec(
		fieldmap.FromPath("id", "entity"),
		fieldmap.FromPath("dagId", "primaryfilters.TEZ_DAG_ID.0"),
		fieldmap.FromPath("vertexId", "primaryfilters.TEZ_VERTEX_ID.0"),
		fieldmap.FromPath("startTime", "otherinfo.startTime"),
		fieldmap.FromPath("endTime", "otherinfo.endTime"),
		fieldmap.FromPath("status", "otherinfo.status"),
		fieldmap.FromPath("diagnostics", "otherinfo.diagnostics"),
		fieldmap.FromPath("successfulAttemptId", "otherinfo.successfulAttemptId"),
		fieldmap.Custom("numAttempts", countAttempts),
	)
}

func countAttempts(raw gjson.Result) (any, error) {
	return len(raw.Get("relatedentities." + timeline.KindTaskAttempt.TimelineEntityType()).Array()), nil
}

// NewTaskNormalizer normalizes tasks.
func NewTaskNormalizer() *EntityNormalizer {
	return newEntityNormalizer(timeline.KindTask, TaskFields(), func(rec fieldmap.Record, counters *CounterSet) (*timeline.Batch, error) {
		return &timeline.Batch{Tasks: []timeline.Task{{
			ID:                  rec.String("id"),
			DagID:               rec.String("dagId"),
			VertexID:            rec.String("vertexId"),
			StartTime:           rec.Int64("startTime"),
			EndTime:             rec.Int64("endTime"),
			Status:              rec.String("status"),
			Diagnostics:         rec.String("diagnostics"),
			NumAttempts:         rec.Int("numAttempts"),
			SuccessfulAttemptID: rec.String("successfulAttemptId"),
			CounterGroups:       counters.GroupIDs,
		}}}, nil
	})
}
