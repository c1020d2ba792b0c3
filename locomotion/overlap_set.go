package locomotion

import "sort"

// ColliderID identifies a collider across the physics backend and the ECS.
type ColliderID uint64

// OverlapSet tracks the colliders currently overlapping a sensor for one
// category. Insert and Remove are idempotent.
type OverlapSet struct {
	ids map[ColliderID]struct{}
}

// Insert adds id. Inserting a present id is a no-op.
func (s *OverlapSet) Insert(id ColliderID) {
	if s == nil {
		return
	}
	if s.ids == nil {
		s.ids = make(map[ColliderID]struct{})
	}
	s.ids[id] = struct{}{}
}

// Remove deletes id. Removing an absent id is a no-op.
func (s *OverlapSet) Remove(id ColliderID) {
	if s == nil || s.ids == nil {
		return
	}
	delete(s.ids, id)
}

func (s *OverlapSet) Has(id ColliderID) bool {
	if s == nil || s.ids == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

func (s *OverlapSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

func (s *OverlapSet) Empty() bool {
	return s.Len() == 0
}

// IDs returns the members in ascending order.
func (s *OverlapSet) IDs() []ColliderID {
	if s.Len() == 0 {
		return nil
	}
	out := make([]ColliderID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Purge drops every member for which alive reports false and returns how
// many were removed. A nil alive func keeps everything.
func (s *OverlapSet) Purge(alive func(ColliderID) bool) int {
	if s == nil || s.ids == nil || alive == nil {
		return 0
	}
	removed := 0
	for id := range s.ids {
		if !alive(id) {
			delete(s.ids, id)
			removed++
		}
	}
	return removed
}

// Clear empties the set.
func (s *OverlapSet) Clear() {
	if s == nil {
		return
	}
	s.ids = nil
}
