package rescue

import (
	"github.com/viant/afs/url"
	"github.com/viant/gridstore/model/entry"
)

// Top level folders of a rescue directory.
const (
	HostRuntimesFolder = "host-runtimes"
	ContextsFolder     = "contexts"
	TasksFolder        = "tasks"
	CheckPointsFolder  = "check-points"
)

// File names inside an entry folder.
const (
	RecordFile             = "record.yaml"
	PayloadFile            = "payload.bin"
	DescriptorFile         = "descriptor.bin"
	ResolvedDescriptorFile = "resolved-descriptor.bin"
)

// Layout maps entries to locations under a base URL.
type Layout struct {
	BaseURL string
}

func (l Layout) HostRuntimeURL(hostName string) string {
	return url.Join(l.BaseURL, HostRuntimesFolder, hostName)
}

func (l Layout) ContextURL(contextID string) string {
	return url.Join(l.BaseURL, ContextsFolder, contextID)
}

// ContextTasksURL returns the folder holding all tasks of a context.
func (l Layout) ContextTasksURL(contextID string) string {
	return url.Join(l.BaseURL, TasksFolder, contextID)
}

func (l Layout) TaskURL(key entry.TaskKey) string {
	return url.Join(l.BaseURL, TasksFolder, key.ContextID, key.TaskID)
}

// ContextCheckPointsURL returns the folder holding all check points of a context.
func (l Layout) ContextCheckPointsURL(contextID string) string {
	return url.Join(l.BaseURL, CheckPointsFolder, contextID)
}

// TaskCheckPointsURL returns the folder holding all check points of a task.
func (l Layout) TaskCheckPointsURL(key entry.TaskKey) string {
	return url.Join(l.BaseURL, CheckPointsFolder, key.ContextID, key.TaskID)
}

func (l Layout) CheckPointURL(cp *entry.CheckPoint) string {
	return url.Join(l.BaseURL, CheckPointsFolder, cp.ContextID, cp.TaskID, cp.Name, cp.ID)
}

// Folders returns the top level folders in load order.
func (l Layout) Folders() []string {
	return []string{
		url.Join(l.BaseURL, HostRuntimesFolder),
		url.Join(l.BaseURL, ContextsFolder),
		url.Join(l.BaseURL, TasksFolder),
		url.Join(l.BaseURL, CheckPointsFolder),
	}
}
