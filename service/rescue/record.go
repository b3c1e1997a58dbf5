package rescue

import (
	"fmt"
	"time"

	"github.com/viant/gridstore/internal/yml"
	"github.com/viant/gridstore/model/entry"
)

// Version is the record format version written by this package. Readers
// accept any version and ignore fields they do not know.
const Version = 1

// Record kinds.
const (
	KindHostRuntime = "HostRuntime"
	KindContext     = "Context"
	KindTask        = "Task"
	KindCheckPoint  = "CheckPoint"
)

// Required record fields per kind.
var (
	hostRuntimeFields = []string{"kind", "hostName"}
	contextFields     = []string{"kind", "contextId", "open", "maxFinishedTasks", "timeCreated"}
	taskFields        = []string{"kind", "taskId", "contextId", "treeAddress", "state", "timeSubmitted"}
	checkPointFields  = []string{"kind", "id", "name", "taskId", "contextId", "timeReached", "seq"}
)

// HostRuntimeRecord is the persisted form of entry.HostRuntime.
type HostRuntimeRecord struct {
	Kind           string `yaml:"kind"`
	Version        int    `yaml:"version"`
	HostName       string `yaml:"hostName"`
	Reservation    string `yaml:"reservation,omitempty"`
	TimeRegistered int64  `yaml:"timeRegistered"`
}

func newHostRuntimeRecord(h *entry.HostRuntime) *HostRuntimeRecord {
	return &HostRuntimeRecord{
		Kind:           KindHostRuntime,
		Version:        Version,
		HostName:       h.HostName,
		Reservation:    h.Reservation,
		TimeRegistered: h.TimeRegistered,
	}
}

// HostRuntime converts the record back to an entry.
func (r *HostRuntimeRecord) HostRuntime() *entry.HostRuntime {
	return &entry.HostRuntime{HostName: r.HostName, Reservation: r.Reservation, TimeRegistered: r.TimeRegistered}
}

// ContextRecord is the persisted form of entry.Context; the payload lives in
// a sibling blob file.
type ContextRecord struct {
	Kind             string `yaml:"kind"`
	Version          int    `yaml:"version"`
	ContextID        string `yaml:"contextId"`
	Name             string `yaml:"name,omitempty"`
	Description      string `yaml:"description,omitempty"`
	Open             bool   `yaml:"open"`
	MaxFinishedTasks int    `yaml:"maxFinishedTasks"`
	HasPayload       bool   `yaml:"hasPayload,omitempty"`
	TimeCreated      int64  `yaml:"timeCreated"`
	TimeUpdated      int64  `yaml:"timeUpdated"`
}

func newContextRecord(c *entry.Context) *ContextRecord {
	return &ContextRecord{
		Kind:             KindContext,
		Version:          Version,
		ContextID:        c.ContextID,
		Name:             c.Name,
		Description:      c.Description,
		Open:             c.Open,
		MaxFinishedTasks: c.MaxFinishedTasks,
		HasPayload:       c.Payload != nil,
		TimeCreated:      c.TimeCreated,
		TimeUpdated:      c.TimeUpdated,
	}
}

// Context converts the record back to an entry.
func (r *ContextRecord) Context(payload []byte) *entry.Context {
	return &entry.Context{
		ContextID:        r.ContextID,
		Name:             r.Name,
		Description:      r.Description,
		Open:             r.Open,
		MaxFinishedTasks: r.MaxFinishedTasks,
		Payload:          payload,
		TimeCreated:      r.TimeCreated,
		TimeUpdated:      r.TimeUpdated,
	}
}

// TaskRecord is the persisted form of entry.Task; descriptors live in
// sibling blob files.
type TaskRecord struct {
	Kind          string            `yaml:"kind"`
	Version       int               `yaml:"version"`
	TaskID        string            `yaml:"taskId"`
	ContextID     string            `yaml:"contextId"`
	PackageName   string            `yaml:"packageName,omitempty"`
	Name          string            `yaml:"name,omitempty"`
	Description   string            `yaml:"description,omitempty"`
	TreeAddress   string            `yaml:"treeAddress"`
	HostName      string            `yaml:"hostName,omitempty"`
	WorkingDir    string            `yaml:"workingDir,omitempty"`
	ResultDir     string            `yaml:"resultDir,omitempty"`
	LogDir        string            `yaml:"logDir,omitempty"`
	Properties    map[string]string `yaml:"properties,omitempty"`
	Exclusivity   string            `yaml:"exclusivity"`
	Service       bool              `yaml:"service"`
	State         string            `yaml:"state"`
	TimeSubmitted int64             `yaml:"timeSubmitted"`
	TimeScheduled int64             `yaml:"timeScheduled"`
	TimeStarted   int64             `yaml:"timeStarted"`
	TimeFinished  int64             `yaml:"timeFinished"`
	RestartCount  int               `yaml:"restartCount"`
	RestartMax    int               `yaml:"restartMax"`
	RunTimeout    string            `yaml:"runTimeout,omitempty"`
	TimeUpdated   int64             `yaml:"timeUpdated"`
}

func newTaskRecord(t *entry.Task) *TaskRecord {
	ret := &TaskRecord{
		Kind:          KindTask,
		Version:       Version,
		TaskID:        t.TaskID,
		ContextID:     t.ContextID,
		PackageName:   t.PackageName,
		Name:          t.Name,
		Description:   t.Description,
		TreeAddress:   t.TreeAddress,
		HostName:      t.HostName,
		WorkingDir:    t.WorkingDir,
		ResultDir:     t.ResultDir,
		LogDir:        t.LogDir,
		Properties:    t.Properties,
		Exclusivity:   string(t.Exclusivity),
		Service:       t.Service,
		State:         string(t.State),
		TimeSubmitted: t.TimeSubmitted,
		TimeScheduled: t.TimeScheduled,
		TimeStarted:   t.TimeStarted,
		TimeFinished:  t.TimeFinished,
		RestartCount:  t.RestartCount,
		RestartMax:    t.RestartMax,
		TimeUpdated:   t.TimeUpdated,
	}
	if t.RunTimeout != 0 {
		ret.RunTimeout = t.RunTimeout.String()
	}
	return ret
}

// Task converts the record back to an entry.
func (r *TaskRecord) Task(descriptor, resolved []byte) (*entry.Task, error) {
	state := entry.ParseState(r.State)
	if state == "" {
		return nil, fmt.Errorf("unknown state %q", r.State)
	}
	exclusivity := entry.ParseExclusivity(r.Exclusivity)
	if exclusivity == "" {
		return nil, fmt.Errorf("unknown exclusivity %q", r.Exclusivity)
	}
	var runTimeout time.Duration
	if r.RunTimeout != "" {
		var err error
		if runTimeout, err = time.ParseDuration(r.RunTimeout); err != nil {
			return nil, fmt.Errorf("invalid runTimeout %q: %w", r.RunTimeout, err)
		}
	}
	return &entry.Task{
		TaskID:             r.TaskID,
		ContextID:          r.ContextID,
		PackageName:        r.PackageName,
		Name:               r.Name,
		Description:        r.Description,
		TreeAddress:        r.TreeAddress,
		Descriptor:         descriptor,
		ResolvedDescriptor: resolved,
		HostName:           r.HostName,
		Directories:        entry.Directories{WorkingDir: r.WorkingDir, ResultDir: r.ResultDir, LogDir: r.LogDir},
		Properties:         r.Properties,
		Exclusivity:        exclusivity,
		Service:            r.Service,
		State:              state,
		TimeSubmitted:      r.TimeSubmitted,
		TimeScheduled:      r.TimeScheduled,
		TimeStarted:        r.TimeStarted,
		TimeFinished:       r.TimeFinished,
		RestartCount:       r.RestartCount,
		RestartMax:         r.RestartMax,
		RunTimeout:         runTimeout,
		TimeUpdated:        r.TimeUpdated,
	}, nil
}

// CheckPointRecord is the persisted form of entry.CheckPoint; the payload
// lives in a sibling blob file.
type CheckPointRecord struct {
	Kind        string `yaml:"kind"`
	Version     int    `yaml:"version"`
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	TaskID      string `yaml:"taskId"`
	ContextID   string `yaml:"contextId"`
	HostName    string `yaml:"hostName,omitempty"`
	HasPayload  bool   `yaml:"hasPayload,omitempty"`
	TimeReached int64  `yaml:"timeReached"`
	Seq         uint64 `yaml:"seq"`
}

func newCheckPointRecord(cp *entry.CheckPoint) *CheckPointRecord {
	return &CheckPointRecord{
		Kind:        KindCheckPoint,
		Version:     Version,
		ID:          cp.ID,
		Name:        cp.Name,
		TaskID:      cp.TaskID,
		ContextID:   cp.ContextID,
		HostName:    cp.HostName,
		HasPayload:  cp.Payload != nil,
		TimeReached: cp.TimeReached,
		Seq:         cp.Seq,
	}
}

// CheckPoint converts the record back to an entry.
func (r *CheckPointRecord) CheckPoint(payload []byte) *entry.CheckPoint {
	return &entry.CheckPoint{
		CheckPointKey: entry.CheckPointKey{Name: r.Name, TaskID: r.TaskID, ContextID: r.ContextID},
		ID:            r.ID,
		HostName:      r.HostName,
		Payload:       payload,
		TimeReached:   r.TimeReached,
		Seq:           r.Seq,
	}
}

// decodeRecord parses a record document, checks the kind and the required
// fields and decodes it into target. It returns the first missing field
// name, or an error for malformed content.
func decodeRecord(data []byte, kind string, required []string, target interface{}) (string, error) {
	node, err := yml.Parse(data)
	if err != nil {
		return "", err
	}
	if missing := node.Missing(required...); len(missing) > 0 {
		return missing[0], nil
	}
	if actual := node.Lookup("kind").Value; actual != kind {
		return "", fmt.Errorf("expected kind %s, found %s", kind, actual)
	}
	return "", node.Decode(target)
}
