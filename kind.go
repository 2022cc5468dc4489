package timeline

import (
	"strings"
)

// Kind identifies an entity kind produced by normalization.
type Kind int

const (
	KindUnknown Kind = iota
	KindDag
	KindVertex
	KindTask
	KindTaskAttempt
	KindApplication
	KindApplicationDetail
	KindCounterGroup
	KindCounter
	KindConfig
	KindVertexInput
)

type kindInfo struct {
	name         string
	plural       string
	timelineType string
	idField      string
	hasCounters  bool
}

var kindInfos = [...]kindInfo{
	KindUnknown:           {name: "unknown", plural: "unknowns"},
	KindDag:               {name: "dag", plural: "dags", timelineType: "TEZ_DAG_ID", idField: "entity", hasCounters: true},
	KindVertex:            {name: "vertex", plural: "vertices", timelineType: "TEZ_VERTEX_ID", idField: "entity", hasCounters: true},
	KindTask:              {name: "task", plural: "tasks", timelineType: "TEZ_TASK_ID", idField: "entity", hasCounters: true},
	KindTaskAttempt:       {name: "taskAttempt", plural: "taskAttempts", timelineType: "TEZ_TASK_ATTEMPT_ID", idField: "entity", hasCounters: true},
	KindApplication:       {name: "application", plural: "applications", timelineType: "TEZ_APPLICATION", idField: "entity", hasCounters: true},
	KindApplicationDetail: {name: "applicationDetail", plural: "applicationDetails", idField: "appId"},
	KindCounterGroup:      {name: "counterGroup", plural: "counterGroups"},
	KindCounter:           {name: "counter", plural: "counters"},
	KindConfig:            {name: "config", plural: "configs"},
	KindVertexInput:       {name: "vertexInput", plural: "vertexInputs"},
}

// Kinds lists every known kind in collection order: parents before children.
var Kinds = []Kind{
	KindApplication,
	KindApplicationDetail,
	KindDag,
	KindVertex,
	KindVertexInput,
	KindTask,
	KindTaskAttempt,
	KindCounterGroup,
	KindCounter,
	KindConfig,
}

func (k Kind) info() kindInfo {
	if k < 0 || int(k) >= len(kindInfos) {
		return kindInfos[KindUnknown]
	}
	return kindInfos[k]
}

func (k Kind) String() string {
	return k.info().name
}

// Plural is the collection key of the kind in a normalized batch.
func (k Kind) Plural() string {
	return k.info().plural
}

// TimelineEntityType is the entity type the timeline server files the kind
// under. Empty for kinds that have no timeline endpoint.
func (k Kind) TimelineEntityType() string {
	return k.info().timelineType
}

// IDField is the key carrying the entity id in a raw payload of this kind.
func (k Kind) IDField() string {
	return k.info().idField
}

// HasCounters reports whether records of this kind own counter groups.
func (k Kind) HasCounters() bool {
	return k.info().hasCounters
}

// ParseKind accepts both the singular and the plural name of a kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		info := k.info()
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.plural) {
			return k, nil
		}
	}
	return KindUnknown, ErrUnknownKind.GenWithStackByArgs(s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
