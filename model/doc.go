// Package model contains the in-memory representation of the grid state.
//
// The entry sub-package defines the four kinds of entries the store keeps:
// tasks, contexts, check points and host runtimes, together with the task
// lifecycle table.
package model
