package normalize

import (
	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/pingcap/errors"
	"github.com/tidwall/gjson"
)

// Normalizer turns one raw entity of its kind into a batch holding the
// entity record and the side tables synthesized from it.
type Normalizer interface {
	Kind() timeline.Kind
	Normalize(raw gjson.Result) (*timeline.Batch, error)
}

// assembleFunc builds the kind specific batch out of the mapped record and
// the counters extracted for it.
type assembleFunc func(rec fieldmap.Record, counters *CounterSet) (*timeline.Batch, error)

// EntityNormalizer composes the field mapper and the counter extractor for
// one entity kind. Its field spec is fixed at construction.
type EntityNormalizer struct {
	kind     timeline.Kind
	fields   *fieldmap.Spec
	assemble assembleFunc
}

func newEntityNormalizer(kind timeline.Kind, fields *fieldmap.Spec, assemble assembleFunc) *EntityNormalizer {
	return &EntityNormalizer{kind: kind, fields: fields, assemble: assemble}
}

func (n *EntityNormalizer) Kind() timeline.Kind {
	return n.kind
}

// Fields returns the output field names of the kind.
func (n *EntityNormalizer) Fields() []string {
	return n.fields.Names()
}

// Normalize maps raw, hoists its counters and returns a singleton batch.
func (n *EntityNormalizer) Normalize(raw gjson.Result) (*timeline.Batch, error) {
	if !raw.IsObject() {
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(n.kind.String() + " entity is not a JSON object")
	}

	rec, err := fieldmap.Map(raw, n.fields)
	if err != nil {
		return nil, errors.Trace(err)
	}
	id := rec.String("id")
	if id == "" {
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(n.kind.String() + " entity has no " + n.kind.IDField())
	}

	counters := &CounterSet{GroupIDs: []string{}}
	if n.kind.HasCounters() {
		counters, err = ExtractCounters(timeline.ParentRef{Kind: n.kind, ID: id}, raw)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}

	b, err := n.assemble(rec, counters)
	if err != nil {
		return nil, errors.Trace(err)
	}
	b.CounterGroups = append(b.CounterGroups, counters.Groups...)
	b.Counters = append(b.Counters, counters.Counters...)
	return b, nil
}
