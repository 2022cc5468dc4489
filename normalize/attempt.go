package normalize

import (
	"regexp"
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/tidwall/gjson"
)

const logsURLPath = "otherinfo.inProgressLogsURL"

var (
	containerIDPattern = regexp.MustCompile(`.*(container_.*?)/.*`)
	nodeIDPattern      = regexp.MustCompile(`([^/]*)/`)
)

// TaskAttemptFields is the field table of a TEZ_TASK_ATTEMPT_ID entity.
func TaskAttemptFields() *fieldmap.Spec {
	return fieldmap.MustSpec(
		fieldmap.FromPath("id", "entity"),
		fieldmap.FromPath("dagId", "primaryfilters.TEZ_DAG_ID.0"),
		fieldmap.FromPath("vertexId", "primaryfilters.TEZ_VERTEX_ID.0"),
		fieldmap.FromPath("taskId", "primaryfilters.TEZ_TASK_ID.0"),
		fieldmap.FromPath("startTime", "otherinfo.startTime"),
		fieldmap.FromPath("endTime", "otherinfo.endTime"),
		fieldmap.FromPath("status", "otherinfo.status"),
		fieldmap.FromPath("diagnostics", "otherinfo.diagnostics"),
		fieldmap.Custom("containerId", logsURLToken(containerIDPattern)),
		fieldmap.Custom("nodeId", logsURLToken(nodeIDPattern)),
	)
}

// logsURLToken extracts the first capture group of pattern from the
// in-progress logs URL. No URL means no value; a URL the pattern does not
// match fails the entity.
func logsURLToken(pattern *regexp.Regexp) fieldmap.Extractor {
	return func(raw gjson.Result) (any, error) {
		url := raw.Get(logsURLPath).String()
		if url == "" {
			return nil, nil
		}
		m := pattern.FindStringSubmatch(url)
		if m == nil {
			return nil, timeline.ErrPatternMismatch.GenWithStackByArgs(pattern.String(), url)
		}
		return strings.Clone(m[1]), nil
	}
}

// NewTaskAttemptNormalizer normalizes task attempts. The container and node
// ids are recovered from the in-progress logs URL when one is present.
func NewTaskAttemptNormalizer() *EntityNormalizer {
	return newEntityNormalizer(timeline.KindTaskAttempt, TaskAttemptFields(), func(rec fieldmap.Record, counters *CounterSet) (*timeline.Batch, error) {
		return &timeline.Batch{TaskAttempts: []timeline.TaskAttempt{{
			ID:            rec.String("id"),
			DagID:         rec.String("dagId"),
			VertexID:      rec.String("vertexId"),
			TaskID:        rec.String("taskId"),
			StartTime:     rec.Int64("startTime"),
			EndTime:       rec.Int64("endTime"),
			Status:        rec.String("status"),
			Diagnostics:   rec.String("diagnostics"),
			ContainerID:   rec.String("containerId"),
			NodeID:        rec.String("nodeId"),
			CounterGroups: counters.GroupIDs,
		}}}, nil
	})
}
