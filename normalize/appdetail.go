package normalize

import (
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/tidwall/gjson"
)

// ApplicationDetailFields is the field table of an application history
// record. It has no counters.
func ApplicationDetailFields() *fieldmap.Spec {
	return fieldmap.MustSpec(
		fieldmap.FromPath("id", "appId"),
		fieldmap.FromPath("attemptId", "currentAppAttemptId"),
		fieldmap.FromPath("name", "name"),
		fieldmap.FromPath("queue", "queue"),
		fieldmap.FromPath("user", "user"),
		fieldmap.FromPath("type", "type"),
		fieldmap.FromPath("startedTime", "startedTime"),
		fieldmap.FromPath("elapsedTime", "elapsedTime"),
		fieldmap.FromPath("finishedTime", "finishedTime"),
		fieldmap.FromPath("submittedTime", "submittedTime"),
		fieldmap.FromPath("appState", "appState"),
		fieldmap.FromPath("finalAppStatus", "finalAppStatus"),
		fieldmap.Custom("diagnostics", firstOf("otherinfo.diagnostics", "diagnosticsInfo")),
	)
}

// firstOf reads the first of paths holding a non-empty value.
func firstOf(paths ...string) fieldmap.Extractor {
	compiled := make([]fieldmap.Path, len(paths))
	for i, p := range paths {
		compiled[i] = fieldmap.MustParsePath(p)
	}
	return func(raw gjson.Result) (any, error) {
		for _, p := range compiled {
			if v := p.Resolve(raw).String(); v != "" {
				return strings.Clone(v), nil
			}
		}
		return nil, nil
	}
}

// NewApplicationDetailNormalizer normalizes YARN application history
// records. They carry no counters.
func NewApplicationDetailNormalizer() *EntityNormalizer {
	return newEntityNormalizer(timeline.KindApplicationDetail, ApplicationDetailFields(), func(rec fieldmap.Record, _ *CounterSet) (*timeline.Batch, error) {
		return &timeline.Batch{ApplicationDetails: []timeline.ApplicationDetail{{
			ID:             rec.String("id"),
			AttemptID:      rec.String("attemptId"),
			Name:           rec.String("name"),
			Queue:          rec.String("queue"),
			User:           rec.String("user"),
			Type:           rec.String("type"),
			StartedTime:    rec.Int64("startedTime"),
			ElapsedTime:    rec.Int64("elapsedTime"),
			FinishedTime:   rec.Int64("finishedTime"),
			SubmittedTime:  rec.Int64("submittedTime"),
			AppState:       rec.String("appState"),
			FinalAppStatus: rec.String("finalAppStatus"),
			Diagnostics:    rec.String("diagnostics"),
		}}}, nil
	})
}
