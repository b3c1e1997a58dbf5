package entry

import "github.com/viant/gridstore/service/dao"

// Unbounded disables the finished-task retention cap of a context.
const Unbounded = -1

// Context is a logical group of tasks (a job).
type Context struct {
	ContextID   string `json:"contextId"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Open        bool   `json:"open"`
	// MaxFinishedTasks caps retained FINISHED/ABORTED tasks; Unbounded keeps all.
	MaxFinishedTasks int `json:"maxFinishedTasks"`
	// Payload is the caller's opaque object.
	Payload     []byte `json:"payload,omitempty"`
	TimeCreated int64  `json:"timeCreated"`
	TimeUpdated int64  `json:"timeUpdated"`
}

// Validate checks the context fields.
func (c *Context) Validate() error {
	if err := ValidateContextID(c.ContextID); err != nil {
		return err
	}
	if c.MaxFinishedTasks < Unbounded {
		return dao.Invalid(EntityContext, c.ContextID, "maxFinishedTasks", c.MaxFinishedTasks)
	}
	return nil
}

// Close marks the context closed; closing a closed context is an illegal
// edge.
func (c *Context) Close(now int64) error {
	if !c.Open {
		return &dao.TransitionError{Entity: EntityContext, Key: c.ContextID, From: "CLOSED", To: "CLOSED"}
	}
	c.Open = false
	c.TimeUpdated = now
	return nil
}

// Clone returns a deep copy.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Payload = cloneBytes(c.Payload)
	return &clone
}
