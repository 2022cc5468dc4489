package timeline

// Record is implemented by every normalized entity.
// OwnerID is the parent link stores index for relational lookups; it is
// empty for records that hang off nothing.
type Record interface {
	EntityKind() Kind
	EntityID() string
	OwnerID() string
}

// ParentRef points at the entity owning a counter group.
// Kind is one of the kinds for which Kind.HasCounters is true.
type ParentRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (p ParentRef) String() string {
	return p.Kind.String() + ":" + p.ID
}

// Dag is a submitted DAG as reported by the timeline server.
type Dag struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	User          string `json:"user,omitempty"`
	SubmittedTime int64  `json:"submittedTime,omitempty"`
	StartTime     int64  `json:"startTime,omitempty"`
	EndTime       int64  `json:"endTime,omitempty"`
	Status        string `json:"status,omitempty"`
	Diagnostics   string `json:"diagnostics,omitempty"`
	ApplicationID string `json:"applicationId,omitempty"`
	Domain        string `json:"domain,omitempty"`

	// VertexNameIDMap maps every vertex name of the dag to its vertex id.
	VertexNameIDMap map[string]string `json:"vertexNameIdMap,omitempty"`
	CounterGroups   []string          `json:"counterGroups"`
}

// Vertex belongs to a Dag.
type Vertex struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	DagID          string   `json:"dagId,omitempty"`
	StartTime      int64    `json:"startTime,omitempty"`
	EndTime        int64    `json:"endTime,omitempty"`
	Status         string   `json:"status,omitempty"`
	Diagnostics    string   `json:"diagnostics,omitempty"`
	NumTasks       int64    `json:"numTasks"`
	FailedTasks    int64    `json:"failedTasks"`
	SucceededTasks int64    `json:"succeededTasks"`
	KilledTasks    int64    `json:"killedTasks"`
	Inputs         []string `json:"inputs"`
	CounterGroups  []string `json:"counterGroups"`
}

// VertexInput is an additional (root) input of a Vertex, such as a table
// or file source with its initializer.
type VertexInput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Class       string   `json:"class,omitempty"`
	Initializer string   `json:"initializer,omitempty"`
	VertexID    string   `json:"vertexId"`
	Configs     []string `json:"configs"`
}

// Task belongs to a Vertex.
type Task struct {
	ID                  string   `json:"id"`
	DagID               string   `json:"dagId,omitempty"`
	VertexID            string   `json:"vertexId,omitempty"`
	StartTime           int64    `json:"startTime,omitempty"`
	EndTime             int64    `json:"endTime,omitempty"`
	Status              string   `json:"status,omitempty"`
	Diagnostics         string   `json:"diagnostics,omitempty"`
	NumAttempts         int      `json:"numAttempts"`
	SuccessfulAttemptID string   `json:"successfulAttemptId,omitempty"`
	CounterGroups       []string `json:"counterGroups"`
}

// TaskAttempt belongs to a Task.
// ContainerID and NodeID are recovered from the in-progress logs URL.
type TaskAttempt struct {
	ID            string   `json:"id"`
	DagID         string   `json:"dagId,omitempty"`
	VertexID      string   `json:"vertexId,omitempty"`
	TaskID        string   `json:"taskId,omitempty"`
	StartTime     int64    `json:"startTime,omitempty"`
	EndTime       int64    `json:"endTime,omitempty"`
	Status        string   `json:"status,omitempty"`
	Diagnostics   string   `json:"diagnostics,omitempty"`
	ContainerID   string   `json:"containerId,omitempty"`
	NodeID        string   `json:"nodeId,omitempty"`
	CounterGroups []string `json:"counterGroups"`
}

// Application is the Tez application entity. ID is the raw entity id
// (tez_application_...), AppID the bare YARN application id.
type Application struct {
	ID            string   `json:"id"`
	AppID         string   `json:"appId"`
	EntityType    string   `json:"entityType,omitempty"`
	StartedTime   int64    `json:"startedTime,omitempty"`
	Domain        string   `json:"domain,omitempty"`
	Dags          []string `json:"dags"`
	Configs       []string `json:"configs"`
	CounterGroups []string `json:"counterGroups"`
}

// ApplicationDetail is the YARN application history record, keyed by app id.
type ApplicationDetail struct {
	ID             string `json:"id"`
	AttemptID      string `json:"attemptId,omitempty"`
	Name           string `json:"name,omitempty"`
	Queue          string `json:"queue,omitempty"`
	User           string `json:"user,omitempty"`
	Type           string `json:"type,omitempty"`
	StartedTime    int64  `json:"startedTime,omitempty"`
	ElapsedTime    int64  `json:"elapsedTime,omitempty"`
	FinishedTime   int64  `json:"finishedTime,omitempty"`
	SubmittedTime  int64  `json:"submittedTime,omitempty"`
	AppState       string `json:"appState,omitempty"`
	FinalAppStatus string `json:"finalAppStatus,omitempty"`
	Diagnostics    string `json:"diagnostics,omitempty"`
}

// CounterGroup is synthesized from the counters blob of its parent.
type CounterGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName,omitempty"`
	Parent      ParentRef `json:"parent"`
	Counters    []string  `json:"counters"`
}

// Counter is a single named value inside a CounterGroup.
type Counter struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName,omitempty"`
	Value         int64  `json:"value"`
	ParentGroupID string `json:"parentGroupId"`
}

// Config is one key/value pair of the configuration of an application or
// of a vertex input. Exactly one of ApplicationID and VertexInputID is set.
type Config struct {
	ID            string `json:"id"`
	Key           string `json:"key"`
	Value         string `json:"value"`
	ApplicationID string `json:"applicationId,omitempty"`
	VertexInputID string `json:"vertexInputId,omitempty"`
}

func (d Dag) EntityKind() Kind { return KindDag }
func (d Dag) EntityID() string { return d.ID }
func (d Dag) OwnerID() string  { return d.ApplicationID }

func (v Vertex) EntityKind() Kind { return KindVertex }
func (v Vertex) EntityID() string { return v.ID }
func (v Vertex) OwnerID() string  { return v.DagID }

func (i VertexInput) EntityKind() Kind { return KindVertexInput }
func (i VertexInput) EntityID() string { return i.ID }
func (i VertexInput) OwnerID() string  { return i.VertexID }

func (t Task) EntityKind() Kind { return KindTask }
func (t Task) EntityID() string { return t.ID }
func (t Task) OwnerID() string  { return t.VertexID }

func (a TaskAttempt) EntityKind() Kind { return KindTaskAttempt }
func (a TaskAttempt) EntityID() string { return a.ID }
func (a TaskAttempt) OwnerID() string  { return a.TaskID }

func (a Application) EntityKind() Kind { return KindApplication }
func (a Application) EntityID() string { return a.ID }
func (a Application) OwnerID() string  { return "" }

func (a ApplicationDetail) EntityKind() Kind { return KindApplicationDetail }
func (a ApplicationDetail) EntityID() string { return a.ID }
func (a ApplicationDetail) OwnerID() string  { return "" }

func (g CounterGroup) EntityKind() Kind { return KindCounterGroup }
func (g CounterGroup) EntityID() string { return g.ID }
func (g CounterGroup) OwnerID() string  { return g.Parent.String() }

func (c Counter) EntityKind() Kind { return KindCounter }
func (c Counter) EntityID() string { return c.ID }
func (c Counter) OwnerID() string  { return c.ParentGroupID }

func (c Config) EntityKind() Kind { return KindConfig }
func (c Config) EntityID() string { return c.ID }
func (c Config) OwnerID() string {
	if c.ApplicationID != "" {
		return c.ApplicationID
	}
	return c.VertexInputID
}

// CounterGroupID synthesizes the id of a counter group owned by parentID.
func CounterGroupID(parentID, groupName string) string {
	return parentID + "/" + groupName
}

// CounterID synthesizes the id of a counter inside groupID.
func CounterID(groupID, counterName string) string {
	return groupID + "/" + counterName
}

// ConfigID synthesizes the id of a configuration entry of appID.
func ConfigID(appID, key string) string {
	return appID + key
}

// VertexInputID synthesizes the id of the input name of vertexID.
func VertexInputID(vertexID, name string) string {
	return vertexID + "/" + name
}

// InputConfigID synthesizes the id of a configuration entry of a vertex
// input.
func InputConfigID(inputID, key string) string {
	return inputID + "/" + key
}

// CounterGroupsOf returns the counter group ids attached to r and whether r
// is a kind that owns counters at all.
func CounterGroupsOf(r Record) ([]string, bool) {
	switch v := r.(type) {
	case Dag:
		return v.CounterGroups, true
	case Vertex:
		return v.CounterGroups, true
	case Task:
		return v.CounterGroups, true
	case TaskAttempt:
		return v.CounterGroups, true
	case Application:
		return v.CounterGroups, true
	}
	return nil, false
}
