package timeline

import (
	"context"
)

// Store defines the contract of the object-graph store that receives
// normalized batches and answers identity-keyed lookups.
//
// Get methods return nil, nil when the record does not exist.
// List methods return an empty slice (not nil), ordered by id.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// SaveBatch stores every record of b and returns the ingest id of the
	// save. Records owning counters, configs or vertex inputs replace the
	// ones previously stored for them.
	SaveBatch(ctx context.Context, b *Batch) (string, error)

	// Entities
	GetDag(ctx context.Context, id string) (*Dag, error)
	GetVertex(ctx context.Context, id string) (*Vertex, error)
	GetTask(ctx context.Context, id string) (*Task, error)
	GetTaskAttempt(ctx context.Context, id string) (*TaskAttempt, error)
	GetApplication(ctx context.Context, id string) (*Application, error)
	GetApplicationDetail(ctx context.Context, appID string) (*ApplicationDetail, error)
	GetCounterGroup(ctx context.Context, id string) (*CounterGroup, error)

	// Relations
	ListVertices(ctx context.Context, dagID string) ([]Vertex, error)
	ListVertexInputs(ctx context.Context, vertexID string) ([]VertexInput, error)
	ListTasks(ctx context.Context, vertexID string) ([]Task, error)
	ListTaskAttempts(ctx context.Context, taskID string) ([]TaskAttempt, error)
	ListCounterGroups(ctx context.Context, parent ParentRef) ([]CounterGroup, error)
	ListCounters(ctx context.Context, groupID string) ([]Counter, error)
	// ListConfigs lists the configs of an application or of a vertex input.
	ListConfigs(ctx context.Context, ownerID string) ([]Config, error)
}
