// Package progress keeps aggregated task counters per context (tasks total,
// pending, running, finished, aborted) built from the lifecycle event stream.
// A tree display typically runs a Tracker as the handler of an
// event.Listener.
package progress
