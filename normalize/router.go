package normalize

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/meikuraledutech/timeline"
	"github.com/pingcap/log"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// timelineWrapperKey is where the timeline server nests every query result,
// whatever entity type was asked for.
const timelineWrapperKey = "entities"

const (
	envelopeCollection = "collection"
	envelopeSingle     = "single"
)

// Router detects the envelope of a raw payload and dispatches every entity
// in it to the normalizer of the requested kind. It holds no mutable state
// and is safe for concurrent use.
type Router struct {
	normalizers map[timeline.Kind]Normalizer
}

// NewRouter builds a router over normalizers. A later normalizer of the
// same kind replaces an earlier one.
func NewRouter(normalizers ...Normalizer) *Router {
	r := &Router{normalizers: make(map[timeline.Kind]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.normalizers[n.Kind()] = n
	}
	return r
}

// NewDefaultRouter routes every timeline entity kind.
func NewDefaultRouter() *Router {
	return NewRouter(
		NewDagNormalizer(),
		NewVertexNormalizer(),
		NewTaskNormalizer(),
		NewTaskAttemptNormalizer(),
		NewApplicationNormalizer(),
		NewApplicationDetailNormalizer(),
	)
}

// Normalize turns payload into a batch of kind records plus their side
// tables. Accepted envelopes, in order of precedence:
//
//	{"<plural>": [...]}     collection keyed by the client's plural key
//	{"entities": [...]}     collection as returned by the timeline server
//	{"<kind>": {...}}       single entity
//	{"entity": ..., ...}    bare single entity (id field of the kind)
//
// A payload matching none of them fails with ErrShapeMismatch. Entities that
// fail individually are reported in Batch.Failures; their siblings still
// normalize.
func (r *Router) Normalize(payload []byte, kind timeline.Kind) (*timeline.Batch, error) {
	n, ok := r.normalizers[kind]
	if !ok {
		return nil, timeline.ErrNoNormalizer.GenWithStackByArgs(kind)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(payload, &env); err != nil || env == nil {
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs("payload is not a JSON object")
	}

	start := time.Now()
	b := &timeline.Batch{}
	envelope := envelopeCollection

	plural := present(env, kind.Plural())
	wrapped := present(env, timelineWrapperKey)
	single := present(env, kind.String())

	switch {
	case plural != nil:
		if err := r.normalizeCollection(n, kind.Plural(), plural, b); err != nil {
			return nil, err
		}
	case wrapped != nil:
		if err := r.normalizeCollection(n, timelineWrapperKey, wrapped, b); err != nil {
			return nil, err
		}
	case single != nil:
		envelope = envelopeSingle
		if !gjson.ParseBytes(single).IsObject() {
			return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(kind.String() + " is not an object")
		}
		r.normalizeEntity(n, 0, single, b)
	case kind.IDField() != "" && present(env, kind.IDField()) != nil:
		envelope = envelopeSingle
		r.normalizeEntity(n, 0, payload, b)
	default:
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(
			"expected one of " + strings.Join(expectedKeys(kind), ", "))
	}

	payloadDuration.WithLabelValues(kind.String(), envelope).Observe(time.Since(start).Seconds())
	return b, nil
}

func (r *Router) normalizeCollection(n Normalizer, key string, raw json.RawMessage, b *timeline.Batch) error {
	var items []json.RawMessage
	if !gjson.ParseBytes(raw).IsArray() {
		return timeline.ErrShapeMismatch.GenWithStackByArgs(key + " is not an array")
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return timeline.ErrShapeMismatch.GenWithStackByArgs(key + " is not an array")
	}
	for i := range items {
		r.normalizeEntity(n, i, items[i], b)
		// release the raw entity once it has been consumed
		items[i] = nil
	}
	return nil
}

func (r *Router) normalizeEntity(n Normalizer, index int, item []byte, b *timeline.Batch) {
	kind := n.Kind()
	raw := gjson.ParseBytes(item)

	part, err := n.Normalize(raw)
	if err != nil {
		entityID := ""
		if raw.IsObject() {
			entityID = strings.Clone(raw.Get(kind.IDField()).String())
		}
		b.AddFailure(kind, index, entityID, err)
		entityFailures.WithLabelValues(kind.String(), failureReason(err)).Inc()
		log.Warn("normalize entity failed",
			zap.Stringer("kind", kind),
			zap.Int("index", index),
			zap.String("entity", entityID),
			zap.Error(err))
		return
	}

	b.Merge(part)
	entitiesNormalized.WithLabelValues(kind.String()).Inc()
}

// present returns the value of key in env, nil when the key is missing or
// holds JSON null.
func present(env map[string]json.RawMessage, key string) json.RawMessage {
	v, ok := env[key]
	if !ok || gjson.ParseBytes(v).Type == gjson.Null {
		return nil
	}
	return v
}

func expectedKeys(kind timeline.Kind) []string {
	keys := []string{kind.Plural(), timelineWrapperKey, kind.String()}
	if kind.IDField() != "" {
		keys = append(keys, kind.IDField())
	}
	return keys
}
