package entry

import "github.com/viant/gridstore/service/dao"

// CheckPointKey is the (non-unique) checkpoint identity.
type CheckPointKey struct {
	Name      string `json:"name"`
	TaskID    string `json:"taskId"`
	ContextID string `json:"contextId"`
}

func (k CheckPointKey) String() string { return k.ContextID + "/" + k.TaskID + "/" + k.Name }

// TaskKey returns the key of the task that raised the checkpoint.
func (k CheckPointKey) TaskKey() TaskKey {
	return TaskKey{ContextID: k.ContextID, TaskID: k.TaskID}
}

// CheckPoint is a named synchronization marker raised by a task.
type CheckPoint struct {
	CheckPointKey
	// ID distinguishes checkpoints sharing the same key; assigned by the store.
	ID       string `json:"id"`
	HostName string `json:"hostName,omitempty"`
	Payload  []byte `json:"payload,omitempty"`
	// TimeReached is stamped by the store.
	TimeReached int64 `json:"timeReached"`
	// Seq orders checkpoints by insertion.
	Seq uint64 `json:"seq"`
}

// Key returns the checkpoint identity.
func (c *CheckPoint) Key() CheckPointKey { return c.CheckPointKey }

// Validate checks the caller supplied fields.
func (c *CheckPoint) Validate() error {
	key := c.Key().String()
	if !IsValidID(c.Name) {
		return dao.Invalid(EntityCheckPoint, key, "name", c.Name)
	}
	if err := ValidateKey(c.Key().TaskKey()); err != nil {
		return err
	}
	if c.HostName != "" && !IsValidHostName(c.HostName) {
		return dao.Invalid(EntityCheckPoint, key, "hostName", c.HostName)
	}
	return nil
}

// Clone returns a deep copy.
func (c *CheckPoint) Clone() *CheckPoint {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Payload = cloneBytes(c.Payload)
	return &clone
}
