package entry

import (
	"time"

	"github.com/viant/gridstore/service/dao"
)

// Entity names used in errors and events.
const (
	EntityTask        = "task"
	EntityContext     = "context"
	EntityCheckPoint  = "check-point"
	EntityHostRuntime = "host runtime"
)

// TaskKey is the composite task identity.
type TaskKey struct {
	ContextID string `json:"contextId"`
	TaskID    string `json:"taskId"`
}

func (k TaskKey) String() string { return k.ContextID + "/" + k.TaskID }

// Directories are the per-task working directories assigned by the host
// runtime agent. Each is settable exactly once.
type Directories struct {
	WorkingDir string `json:"workingDir,omitempty"`
	ResultDir  string `json:"resultDir,omitempty"`
	LogDir     string `json:"logDir,omitempty"`
}

// Task is a unit of scheduled work.
type Task struct {
	TaskID      string `json:"taskId"`
	ContextID   string `json:"contextId"`
	PackageName string `json:"packageName,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	// TreeAddress is the immutable hierarchical display location, e.g. "suite/run-1/server".
	TreeAddress string `json:"treeAddress"`
	// Descriptor and ResolvedDescriptor are opaque to the store.
	Descriptor         []byte `json:"descriptor,omitempty"`
	ResolvedDescriptor []byte `json:"resolvedDescriptor,omitempty"`
	HostName           string `json:"hostName,omitempty"`
	Directories
	Properties  map[string]string `json:"properties,omitempty"`
	Exclusivity Exclusivity       `json:"exclusivity"`
	Service     bool              `json:"service"`
	State       State             `json:"state"`
	// Lifecycle stamps in unix milliseconds; 0 means not reached.
	TimeSubmitted int64         `json:"timeSubmitted"`
	TimeScheduled int64         `json:"timeScheduled"`
	TimeStarted   int64         `json:"timeStarted"`
	TimeFinished  int64         `json:"timeFinished"`
	RestartCount  int           `json:"restartCount"`
	RestartMax    int           `json:"restartMax"`
	RunTimeout    time.Duration `json:"runTimeout"`
	// TimeUpdated is bookkeeping, refreshed on every mutation and on recovery.
	TimeUpdated int64 `json:"timeUpdated"`
}

// Key returns the task identity.
func (t *Task) Key() TaskKey {
	return TaskKey{ContextID: t.ContextID, TaskID: t.TaskID}
}

// Validate checks the submission fields.
func (t *Task) Validate() error {
	key := t.Key()
	if err := ValidateKey(key); err != nil {
		return err
	}
	if !validTreeAddress(t.TreeAddress) {
		return dao.Invalid(EntityTask, key.String(), "treeAddress", t.TreeAddress)
	}
	if ParseExclusivity(string(t.Exclusivity)) == "" {
		return dao.Invalid(EntityTask, key.String(), "exclusivity", t.Exclusivity)
	}
	if t.RestartMax < 0 {
		return dao.Invalid(EntityTask, key.String(), "restartMax", t.RestartMax)
	}
	if t.RestartCount < 0 {
		return dao.Invalid(EntityTask, key.String(), "restartCount", t.RestartCount)
	}
	if t.RunTimeout < 0 {
		return dao.Invalid(EntityTask, key.String(), "runTimeout", t.RunTimeout)
	}
	if t.HostName != "" && !IsValidHostName(t.HostName) {
		return dao.Invalid(EntityTask, key.String(), "hostName", t.HostName)
	}
	return nil
}

// Transition applies a lifecycle edge, stamping the edge's timestamp with
// now (raised where needed so that submitted <= scheduled <= started <=
// finished). It returns false without error for the accepted no-op
// FINISHED -> ABORTED; an illegal edge leaves the task unchanged.
func (t *Task) Transition(to State, now int64) (bool, error) {
	s, noop, ok := edge(t.State, to)
	if !ok {
		return false, &dao.TransitionError{Entity: EntityTask, Key: t.Key().String(), From: string(t.State), To: string(to)}
	}
	if noop {
		return false, nil
	}
	switch s {
	case stampScheduled:
		t.TimeScheduled = maxStamp(now, t.TimeSubmitted)
	case stampStarted:
		t.TimeStarted = maxStamp(now, t.TimeSubmitted, t.TimeScheduled)
	case stampFinished:
		t.TimeFinished = maxStamp(now, t.TimeSubmitted, t.TimeScheduled, t.TimeStarted)
	}
	t.State = to
	t.TimeUpdated = now
	return true, nil
}

// SetDirectories assigns the non-empty directories of d. Assigning a
// directory that is already set fails with dao.ErrAlreadySet and leaves all
// directories unchanged.
func (t *Task) SetDirectories(d Directories) error {
	key := t.Key().String()
	check := func(field, current, next string) error {
		if next != "" && current != "" {
			return dao.NewError(dao.ErrAlreadySet, EntityTask, key, "%s is %q", field, current)
		}
		return nil
	}
	if err := check("workingDir", t.WorkingDir, d.WorkingDir); err != nil {
		return err
	}
	if err := check("resultDir", t.ResultDir, d.ResultDir); err != nil {
		return err
	}
	if err := check("logDir", t.LogDir, d.LogDir); err != nil {
		return err
	}
	if d.WorkingDir != "" {
		t.WorkingDir = d.WorkingDir
	}
	if d.ResultDir != "" {
		t.ResultDir = d.ResultDir
	}
	if d.LogDir != "" {
		t.LogDir = d.LogDir
	}
	return nil
}

// CanRestart reports whether the restart counter may be incremented.
func (t *Task) CanRestart() bool {
	return t.RestartMax == 0 || t.RestartCount < t.RestartMax
}

// Clone returns a deep copy.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Descriptor = cloneBytes(t.Descriptor)
	clone.ResolvedDescriptor = cloneBytes(t.ResolvedDescriptor)
	if t.Properties != nil {
		clone.Properties = make(map[string]string, len(t.Properties))
		for k, v := range t.Properties {
			clone.Properties[k] = v
		}
	}
	return &clone
}

func maxStamp(values ...int64) int64 {
	var result int64
	for _, v := range values {
		if v > result {
			result = v
		}
	}
	return result
}

func cloneBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	return append([]byte(nil), data...)
}
