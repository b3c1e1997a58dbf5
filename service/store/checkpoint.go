package store

import (
	"sort"

	"github.com/viant/gridstore/internal/idgen"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
	"github.com/viant/gridstore/service/dao/criteria"
)

// AddCheckPoint appends a checkpoint for an existing task. A missing ID is
// assigned and a zero Seq is replaced with the next insertion sequence; a
// restored checkpoint keeps its Seq and advances the sequence past it.
func (s *Store) AddCheckPoint(cp *entry.CheckPoint) (*entry.CheckPoint, error) {
	key := cp.Key().TaskKey()
	if !s.tasks.Has(key) {
		return nil, dao.NotFound(entry.EntityTask, key.String())
	}
	stored := cp.Clone()
	if stored.ID == "" {
		stored.ID = idgen.New()
	}
	for _, existing := range s.checkPoints[key] {
		if existing.ID == stored.ID {
			return nil, dao.Duplicate(entry.EntityCheckPoint, stored.ID)
		}
	}
	if stored.Seq == 0 {
		s.seq++
		stored.Seq = s.seq
	} else if stored.Seq > s.seq {
		s.seq = stored.Seq
	}
	list := append(s.checkPoints[key], stored)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	s.checkPoints[key] = list
	return stored.Clone(), nil
}

// CheckPoints returns checkpoints matching the optional Name, TaskID and
// ContextID terms (a missing term is a wildcard), in insertion order.
func (s *Store) CheckPoints(parameters ...*dao.Parameter) []*entry.CheckPoint {
	var out []*entry.CheckPoint
	for _, list := range s.checkPoints {
		for _, cp := range list {
			if criteria.Match(checkPointFields(cp), parameters) {
				out = append(out, cp.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// RemoveCheckPoints deletes matching checkpoints and returns them in
// insertion order.
func (s *Store) RemoveCheckPoints(parameters ...*dao.Parameter) []*entry.CheckPoint {
	var removed []*entry.CheckPoint
	for key, list := range s.checkPoints {
		kept := list[:0]
		for _, cp := range list {
			if criteria.Match(checkPointFields(cp), parameters) {
				removed = append(removed, cp)
				continue
			}
			kept = append(kept, cp)
		}
		if len(kept) == 0 {
			delete(s.checkPoints, key)
			continue
		}
		s.checkPoints[key] = kept
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Seq < removed[j].Seq })
	return removed
}

// RemoveCheckPoint deletes a single checkpoint by record id.
func (s *Store) RemoveCheckPoint(key entry.TaskKey, id string) (*entry.CheckPoint, error) {
	list := s.checkPoints[key]
	for i, cp := range list {
		if cp.ID != id {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(s.checkPoints, key)
		} else {
			s.checkPoints[key] = list
		}
		return cp, nil
	}
	return nil, dao.NotFound(entry.EntityCheckPoint, key.String()+"/"+id)
}

// RestoreCheckPoints re-inserts previously removed checkpoints, used to roll
// back a mutation.
func (s *Store) RestoreCheckPoints(list []*entry.CheckPoint) {
	for _, cp := range list {
		_, _ = s.AddCheckPoint(cp)
	}
}

func checkPointFields(cp *entry.CheckPoint) criteria.Fields {
	return func(name string) (string, bool) {
		switch name {
		case dao.Name:
			return cp.Name, true
		case dao.TaskID:
			return cp.TaskID, true
		case dao.ContextID:
			return cp.ContextID, true
		case dao.HostName:
			return cp.HostName, true
		}
		return "", false
	}
}
