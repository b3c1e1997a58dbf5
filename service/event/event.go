package event

import (
	"time"

	"github.com/viant/gridstore/internal/clock"
	"github.com/viant/gridstore/model/entry"
)

// Event types emitted by the lifecycle engine.
const (
	TypeTaskSubmitted    = "taskSubmitted"
	TypeTaskTransitioned = "taskTransitioned"
	TypeTaskRemoved      = "taskRemoved"
	TypeHostDeregistered = "hostDeregistered"
)

// Context identifies the entry an event is about.
type Context struct {
	Kind      string `json:"kind"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	HostName  string `json:"hostName,omitempty"`
	Type      string `json:"type"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Change is the payload of lifecycle events.
type Change struct {
	// Task is a copy of the task after the change; for removals, the last
	// stored version.
	Task *entry.Task `json:"task,omitempty"`
	From entry.State `json:"from,omitempty"`
	To   entry.State `json:"to,omitempty"`
	// Unlinked lists the tasks detached from a deregistered host.
	Unlinked []entry.TaskKey `json:"unlinked,omitempty"`
}

// TaskSubmitted creates a submission event.
func TaskSubmitted(task *entry.Task) *Event[Change] {
	return NewEvent(&Context{
		Kind:      entry.EntityTask,
		ContextID: task.ContextID,
		TaskID:    task.TaskID,
		Type:      TypeTaskSubmitted,
	}, Change{Task: task, To: task.State})
}

// TaskTransitioned creates a state change event.
func TaskTransitioned(task *entry.Task, from entry.State) *Event[Change] {
	return NewEvent(&Context{
		Kind:      entry.EntityTask,
		ContextID: task.ContextID,
		TaskID:    task.TaskID,
		HostName:  task.HostName,
		Type:      TypeTaskTransitioned,
	}, Change{Task: task, From: from, To: task.State})
}

// TaskRemoved creates a removal event.
func TaskRemoved(task *entry.Task) *Event[Change] {
	return NewEvent(&Context{
		Kind:      entry.EntityTask,
		ContextID: task.ContextID,
		TaskID:    task.TaskID,
		HostName:  task.HostName,
		Type:      TypeTaskRemoved,
	}, Change{Task: task, From: task.State})
}

// HostDeregistered creates a host removal event.
func HostDeregistered(hostName string, unlinked []entry.TaskKey) *Event[Change] {
	return NewEvent(&Context{
		Kind:     entry.EntityHostRuntime,
		HostName: hostName,
		Type:     TypeHostDeregistered,
	}, Change{Unlinked: unlinked})
}
