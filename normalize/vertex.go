package normalize

import (
	"sort"
	"strconv"
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/tidwall/gjson"
)

const additionalInputsPath = "otherinfo.additionalInputs"

// inputEntry is one raw element of otherinfo.additionalInputs.
type inputEntry struct {
	name        string
	class       string
	initializer string
	configs     []configEntry
}

// VertexFields is the field table of a TEZ_VERTEX_ID entity.
func VertexFields() *fieldmap.Spec {
	return fieldmap.MustSpec(
		fieldmap.FromPath("id", "entity"),
		fieldmap.FromPath("name", "otherinfo.vertexName"),
		fieldmap.FromPath("dagId", "primaryfilters.TEZ_DAG_ID.0"),
		fieldmap.FromPath("startTime", "otherinfo.startTime"),
		fieldmap.FromPath("endTime", "otherinfo.endTime"),
		fieldmap.FromPath("status", "otherinfo.status"),
		fieldmap.FromPath("diagnostics", "otherinfo.diagnostics"),
		fieldmap.FromPath("numTasks", "otherinfo.numTasks"),
		fieldmap.FromPath("failedTasks", "otherinfo.numFailedTasks"),
		fieldmap.FromPath("succeededTasks", "otherinfo.numSucceededTasks"),
		fieldmap.FromPath("killedTasks", "otherinfo.numKilledTasks"),
		fieldmap.Custom("inputs", inputEntries),
	)
}

// inputEntries reads otherinfo.additionalInputs in source order. Every
// input must be named; its configs are sorted by key.
func inputEntries(raw gjson.Result) (any, error) {
	inputs := raw.Get(additionalInputsPath)
	if !inputs.Exists() || inputs.Type == gjson.Null {
		return nil, nil
	}
	if !inputs.IsArray() {
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(additionalInputsPath + " is not an array")
	}

	var entries []inputEntry
	for i, in := range inputs.Array() {
		name := strings.Clone(in.Get("name").String())
		if name == "" {
			return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(
				"additional input #" + strconv.Itoa(i) + " has no name")
		}
		entries = append(entries, inputEntry{
			name:        name,
			class:       strings.Clone(in.Get("class").String()),
			initializer: strings.Clone(in.Get("initializer").String()),
			configs:     objectEntries(in.Get("configs")),
		})
	}
	return entries, nil
}

// objectEntries reads the key/value pairs of obj sorted by key. Non-string
// values keep their raw JSON text.
func objectEntries(obj gjson.Result) []configEntry {
	if !obj.IsObject() {
		return nil
	}

	var entries []configEntry
	obj.ForEach(func(key, value gjson.Result) bool {
		v := value.Raw
		if value.Type == gjson.String {
			v = value.String()
		}
		entries = append(entries, configEntry{key: strings.Clone(key.String()), value: strings.Clone(v)})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	return entries
}

// NewVertexNormalizer normalizes vertices. Additional inputs become
// VertexInput records whose configs are exploded into Config records.
func NewVertexNormalizer() *EntityNormalizer {
	return newEntityNormalizer(timeline.KindVertex, VertexFields(), func(rec fieldmap.Record, counters *CounterSet) (*timeline.Batch, error) {
		v := timeline.Vertex{
			ID:             rec.String("id"),
			Name:           rec.String("name"),
			DagID:          rec.String("dagId"),
			StartTime:      rec.Int64("startTime"),
			EndTime:        rec.Int64("endTime"),
			Status:         rec.String("status"),
			Diagnostics:    rec.String("diagnostics"),
			NumTasks:       rec.Int64("numTasks"),
			FailedTasks:    rec.Int64("failedTasks"),
			SucceededTasks: rec.Int64("succeededTasks"),
			KilledTasks:    rec.Int64("killedTasks"),
			Inputs:         []string{},
			CounterGroups:  counters.GroupIDs,
		}

		entries, _ := rec["inputs"].([]inputEntry)
		b := &timeline.Batch{}
		for _, e := range entries {
			in := timeline.VertexInput{
				ID:          timeline.VertexInputID(v.ID, e.name),
				Name:        e.name,
				Class:       e.class,
				Initializer: e.initializer,
				VertexID:    v.ID,
				Configs:     make([]string, 0, len(e.configs)),
			}
			for _, c := range e.configs {
				cfg := timeline.Config{
					ID:            timeline.InputConfigID(in.ID, c.key),
					Key:           c.key,
					Value:         c.value,
					VertexInputID: in.ID,
				}
				in.Configs = append(in.Configs, cfg.ID)
				b.Configs = append(b.Configs, cfg)
			}
			v.Inputs = append(v.Inputs, in.ID)
			b.VertexInputs = append(b.VertexInputs, in)
		}

		b.Vertices = []timeline.Vertex{v}
		return b, nil
	})
}
