package store

import (
	"sort"

	"github.com/viant/gridstore/service/dao"
)

// MemoryStore is a generic keyed collection of *T entries. Reads hand out
// copies produced by the clone function so that callers never hold a
// reference into the collection.
//
// MemoryStore is not synchronized: its owner serializes access (the
// lifecycle engine holds a single lock around every store operation).
type MemoryStore[K comparable, T any] struct {
	entity      string
	records     map[K]*T
	keySelector func(*T) K
	keyText     func(K) string
	clone       func(*T) *T
}

// NewMemoryStore creates a new MemoryStore.
// keySelector extracts the entry key, keyText renders it for error messages,
// clone deep-copies an entry.
func NewMemoryStore[K comparable, T any](entity string, keySelector func(*T) K, keyText func(K) string, clone func(*T) *T) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		entity:      entity,
		records:     make(map[K]*T),
		keySelector: keySelector,
		keyText:     keyText,
		clone:       clone,
	}
}

// Insert stores a copy of v; an existing key fails with dao.ErrDuplicateEntry.
func (s *MemoryStore[K, T]) Insert(v *T) error {
	if v == nil {
		return dao.NewError(dao.ErrValidation, s.entity, "", "nil entry")
	}
	key := s.keySelector(v)
	if _, ok := s.records[key]; ok {
		return dao.Duplicate(s.entity, s.keyText(key))
	}
	s.records[key] = s.clone(v)
	return nil
}

// Put stores a copy of v, replacing any entry under the same key.
func (s *MemoryStore[K, T]) Put(v *T) {
	s.records[s.keySelector(v)] = s.clone(v)
}

// Load returns a copy of the entry or dao.ErrNotFound.
func (s *MemoryStore[K, T]) Load(key K) (*T, error) {
	v, ok := s.records[key]
	if !ok {
		return nil, dao.NotFound(s.entity, s.keyText(key))
	}
	return s.clone(v), nil
}

// Has reports whether key is present.
func (s *MemoryStore[K, T]) Has(key K) bool {
	_, ok := s.records[key]
	return ok
}

// Update applies fn to the stored entry in place.
func (s *MemoryStore[K, T]) Update(key K, fn func(v *T)) error {
	v, ok := s.records[key]
	if !ok {
		return dao.NotFound(s.entity, s.keyText(key))
	}
	fn(v)
	return nil
}

// Delete removes an entry and returns it; a missing key fails with
// dao.ErrNotFound.
func (s *MemoryStore[K, T]) Delete(key K) (*T, error) {
	v, ok := s.records[key]
	if !ok {
		return nil, dao.NotFound(s.entity, s.keyText(key))
	}
	delete(s.records, key)
	return v, nil
}

// List returns copies of the entries accepted by filter (nil accepts all),
// ordered by rendered key.
func (s *MemoryStore[K, T]) List(filter func(v *T) bool) []*T {
	keys := make([]K, 0, len(s.records))
	for key, v := range s.records {
		if filter != nil && !filter(v) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return s.keyText(keys[i]) < s.keyText(keys[j]) })
	out := make([]*T, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.clone(s.records[key]))
	}
	return out
}
