// Package entry defines the value types held by the control-plane store:
// tasks, contexts (job groups), checkpoints and host runtimes.
//
// Entries are plain structs. The store keeps its own copies and hands out
// Clone results, so an entry obtained from a query can be inspected or
// modified freely without affecting stored state. Methods on the entries
// implement the field-level rules (lifecycle edges, one-shot fields,
// reservations); they never touch storage.
package entry
