// Package engine implements the task lifecycle engine: the synchronized API
// over the indexed store.
//
// Every operation holds a single engine lock while it validates the request,
// mutates the store, writes the affected rescue records and emits events. A
// rejected operation leaves the store and the rescue directory unchanged. When
// a rescue write fails the in-memory change is rolled back and the error
// wraps dao.ErrPersistence.
package engine
