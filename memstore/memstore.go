// Package memstore is an in-process timeline.Store backed by a bounded LRU
// cache. Records evicted from the cache are gone; callers that need
// durability use the postgres store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/meikuraledutech/timeline"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// DefaultSize is the record capacity used when New is given a non-positive
// size.
const DefaultSize = 100000

type key struct {
	kind timeline.Kind
	id   string
}

// Store keeps the most recently saved or read records.
type Store struct {
	// mu serializes SaveBatch so replacing a parent's side tables is atomic
	// with respect to readers.
	mu      sync.RWMutex
	records *lru.Cache
}

var _ timeline.Store = (*Store)(nil)

// New creates a store holding at most size records.
func New(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	records, err := lru.NewWithEvict(size, func(k, _ interface{}) {
		rk := k.(key)
		log.Debug("timeline record evicted",
			zap.Stringer("kind", rk.kind), zap.String("id", rk.id))
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Store{records: records}, nil
}

// CreateSchema is a no-op; the cache needs no schema.
func (s *Store) CreateSchema(context.Context) error {
	return nil
}

// DropSchema forgets every record.
func (s *Store) DropSchema(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.Purge()
	return nil
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	return s.records.Len()
}

// SaveBatch caches every record of b, parents first. Counter groups,
// counters, configs and vertex inputs previously attached to a saved parent
// are dropped before the new ones are added.
func (s *Store) SaveBatch(ctx context.Context, b *timeline.Batch) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Trace(err)
	}
	ingestID := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	records := b.Records()
	for _, r := range records {
		if _, ok := timeline.CounterGroupsOf(r); ok {
			s.dropSideTables(r.EntityKind(), r.EntityID())
		}
	}
	for _, r := range records {
		s.records.Add(key{kind: r.EntityKind(), id: r.EntityID()}, r)
	}

	log.Debug("timeline batch saved",
		zap.String("ingest", ingestID), zap.Int("records", len(records)))
	return ingestID, nil
}

// dropSideTables removes whatever the stored version of a parent points at.
func (s *Store) dropSideTables(kind timeline.Kind, id string) {
	v, ok := s.records.Peek(key{kind: kind, id: id})
	if !ok {
		return
	}
	prev := v.(timeline.Record)

	groups, _ := timeline.CounterGroupsOf(prev)
	for _, gid := range groups {
		gk := key{kind: timeline.KindCounterGroup, id: gid}
		if gv, ok := s.records.Peek(gk); ok {
			for _, cid := range gv.(timeline.CounterGroup).Counters {
				s.records.Remove(key{kind: timeline.KindCounter, id: cid})
			}
		}
		s.records.Remove(gk)
	}
	switch p := prev.(type) {
	case timeline.Application:
		for _, cid := range p.Configs {
			s.records.Remove(key{kind: timeline.KindConfig, id: cid})
		}
	case timeline.Vertex:
		for _, iid := range p.Inputs {
			ik := key{kind: timeline.KindVertexInput, id: iid}
			if iv, ok := s.records.Peek(ik); ok {
				for _, cid := range iv.(timeline.VertexInput).Configs {
					s.records.Remove(key{kind: timeline.KindConfig, id: cid})
				}
			}
			s.records.Remove(ik)
		}
	}
}

func get[T timeline.Record](s *Store, kind timeline.Kind, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records.Get(key{kind: kind, id: id})
	if !ok {
		return nil, nil
	}
	r := v.(T)
	return &r, nil
}

func list[T timeline.Record](s *Store, kind timeline.Kind, ownerID string) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []T{}
	for _, k := range s.records.Keys() {
		rk := k.(key)
		if rk.kind != kind {
			continue
		}
		v, ok := s.records.Peek(rk)
		if !ok {
			continue
		}
		r := v.(T)
		if r.OwnerID() == ownerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out, nil
}

func (s *Store) GetDag(_ context.Context, id string) (*timeline.Dag, error) {
	return get[timeline.Dag](s, timeline.KindDag, id)
}

func (s *Store) GetVertex(_ context.Context, id string) (*timeline.Vertex, error) {
	return get[timeline.Vertex](s, timeline.KindVertex, id)
}

func (s *Store) GetTask(_ context.Context, id string) (*timeline.Task, error) {
	return get[timeline.Task](s, timeline.KindTask, id)
}

func (s *Store) GetTaskAttempt(_ context.Context, id string) (*timeline.TaskAttempt, error) {
	return get[timeline.TaskAttempt](s, timeline.KindTaskAttempt, id)
}

func (s *Store) GetApplication(_ context.Context, id string) (*timeline.Application, error) {
	return get[timeline.Application](s, timeline.KindApplication, id)
}

func (s *Store) GetApplicationDetail(_ context.Context, appID string) (*timeline.ApplicationDetail, error) {
	return get[timeline.ApplicationDetail](s, timeline.KindApplicationDetail, appID)
}

func (s *Store) GetCounterGroup(_ context.Context, id string) (*timeline.CounterGroup, error) {
	return get[timeline.CounterGroup](s, timeline.KindCounterGroup, id)
}

func (s *Store) ListVertices(_ context.Context, dagID string) ([]timeline.Vertex, error) {
	return list[timeline.Vertex](s, timeline.KindVertex, dagID)
}

func (s *Store) ListVertexInputs(_ context.Context, vertexID string) ([]timeline.VertexInput, error) {
	return list[timeline.VertexInput](s, timeline.KindVertexInput, vertexID)
}

func (s *Store) ListTasks(_ context.Context, vertexID string) ([]timeline.Task, error) {
	return list[timeline.Task](s, timeline.KindTask, vertexID)
}

func (s *Store) ListTaskAttempts(_ context.Context, taskID string) ([]timeline.TaskAttempt, error) {
	return list[timeline.TaskAttempt](s, timeline.KindTaskAttempt, taskID)
}

func (s *Store) ListCounterGroups(_ context.Context, parent timeline.ParentRef) ([]timeline.CounterGroup, error) {
	return list[timeline.CounterGroup](s, timeline.KindCounterGroup, parent.String())
}

func (s *Store) ListCounters(_ context.Context, groupID string) ([]timeline.Counter, error) {
	return list[timeline.Counter](s, timeline.KindCounter, groupID)
}

func (s *Store) ListConfigs(_ context.Context, ownerID string) ([]timeline.Config, error) {
	return list[timeline.Config](s, timeline.KindConfig, ownerID)
}
