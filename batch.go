package timeline

import (
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"
)

// Batch is a normalized payload: disjoint flat collections, one per kind,
// with every cross reference expressed as an id.
type Batch struct {
	Dags               []Dag
	Vertices           []Vertex
	VertexInputs       []VertexInput
	Tasks              []Task
	TaskAttempts       []TaskAttempt
	Applications       []Application
	ApplicationDetails []ApplicationDetail
	CounterGroups      []CounterGroup
	Counters           []Counter
	Configs            []Config

	// Failures lists raw entities that could not be normalized.
	Failures []EntityFailure
}

// EntityFailure reports one raw entity of a payload that failed to normalize.
// Index is the position of the entity in its envelope; EntityID is filled in
// when the raw entity carried a readable id.
type EntityFailure struct {
	Kind     Kind
	Index    int
	EntityID string
	Err      error
}

func (f EntityFailure) Error() string {
	if f.EntityID == "" {
		return fmt.Sprintf("%s #%d: %s", f.Kind, f.Index, f.Err)
	}
	return fmt.Sprintf("%s #%d (%s): %s", f.Kind, f.Index, f.EntityID, f.Err)
}

func (f EntityFailure) Unwrap() error {
	return f.Err
}

func (f EntityFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   Kind   `json:"kind"`
		Index  int    `json:"index"`
		Entity string `json:"entity,omitempty"`
		Error  string `json:"error"`
	}{f.Kind, f.Index, f.EntityID, f.Err.Error()})
}

// Merge appends every collection of o to b, keeping order.
func (b *Batch) Merge(o *Batch) {
	if o == nil {
		return
	}
	b.Dags = append(b.Dags, o.Dags...)
	b.Vertices = append(b.Vertices, o.Vertices...)
	b.VertexInputs = append(b.VertexInputs, o.VertexInputs...)
	b.Tasks = append(b.Tasks, o.Tasks...)
	b.TaskAttempts = append(b.TaskAttempts, o.TaskAttempts...)
	b.Applications = append(b.Applications, o.Applications...)
	b.ApplicationDetails = append(b.ApplicationDetails, o.ApplicationDetails...)
	b.CounterGroups = append(b.CounterGroups, o.CounterGroups...)
	b.Counters = append(b.Counters, o.Counters...)
	b.Configs = append(b.Configs, o.Configs...)
	b.Failures = append(b.Failures, o.Failures...)
}

// AddFailure records a failed raw entity.
func (b *Batch) AddFailure(kind Kind, index int, entityID string, err error) {
	b.Failures = append(b.Failures, EntityFailure{Kind: kind, Index: index, EntityID: entityID, Err: err})
}

// Len returns the number of records of kind in the batch.
func (b *Batch) Len(kind Kind) int {
	switch kind {
	case KindDag:
		return len(b.Dags)
	case KindVertex:
		return len(b.Vertices)
	case KindVertexInput:
		return len(b.VertexInputs)
	case KindTask:
		return len(b.Tasks)
	case KindTaskAttempt:
		return len(b.TaskAttempts)
	case KindApplication:
		return len(b.Applications)
	case KindApplicationDetail:
		return len(b.ApplicationDetails)
	case KindCounterGroup:
		return len(b.CounterGroups)
	case KindCounter:
		return len(b.Counters)
	case KindConfig:
		return len(b.Configs)
	}
	return 0
}

// Records flattens the batch, parents before children, in Kinds order.
func (b *Batch) Records() []Record {
	out := make([]Record, 0, b.size())
	for _, a := range b.Applications {
		out = append(out, a)
	}
	for _, d := range b.ApplicationDetails {
		out = append(out, d)
	}
	for _, d := range b.Dags {
		out = append(out, d)
	}
	for _, v := range b.Vertices {
		out = append(out, v)
	}
	for _, i := range b.VertexInputs {
		out = append(out, i)
	}
	for _, t := range b.Tasks {
		out = append(out, t)
	}
	for _, a := range b.TaskAttempts {
		out = append(out, a)
	}
	for _, g := range b.CounterGroups {
		out = append(out, g)
	}
	for _, c := range b.Counters {
		out = append(out, c)
	}
	for _, c := range b.Configs {
		out = append(out, c)
	}
	return out
}

func (b *Batch) size() int {
	n := 0
	for _, k := range Kinds {
		n += b.Len(k)
	}
	return n
}

// Collections maps every plural collection key to its records. Empty
// collections are present as empty slices.
func (b *Batch) Collections() map[string]any {
	return map[string]any{
		KindDag.Plural():               nonNil(b.Dags),
		KindVertex.Plural():            nonNil(b.Vertices),
		KindVertexInput.Plural():       nonNil(b.VertexInputs),
		KindTask.Plural():              nonNil(b.Tasks),
		KindTaskAttempt.Plural():       nonNil(b.TaskAttempts),
		KindApplication.Plural():       nonNil(b.Applications),
		KindApplicationDetail.Plural(): nonNil(b.ApplicationDetails),
		KindCounterGroup.Plural():      nonNil(b.CounterGroups),
		KindCounter.Plural():           nonNil(b.Counters),
		KindConfig.Plural():            nonNil(b.Configs),
	}
}

func (b *Batch) MarshalJSON() ([]byte, error) {
	out := b.Collections()
	out["failures"] = nonNil(b.Failures)
	return json.Marshal(out)
}

// Err combines all entity failures, nil when there are none.
func (b *Batch) Err() error {
	var err error
	for _, f := range b.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
