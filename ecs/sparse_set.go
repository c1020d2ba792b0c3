package ecs

// store is the type-erased view the world keeps of each component table.
type store interface {
	has(id entityID) bool
	remove(id entityID) bool
	len() int
}

// sparseSet keeps component values densely packed and indexed by entity
// slot. Values are stored by pointer so callers can mutate in place.
type sparseSet[T any] struct {
	dense  []entityID
	values []*T
	sparse []int32
}

func newSparseSet[T any]() *sparseSet[T] {
	return &sparseSet[T]{}
}

func (s *sparseSet[T]) index(id entityID) (int, bool) {
	if int(id) >= len(s.sparse) {
		return 0, false
	}
	idx := int(s.sparse[id])
	if idx < 0 || idx >= len(s.dense) || s.dense[idx] != id {
		return 0, false
	}
	return idx, true
}

func (s *sparseSet[T]) has(id entityID) bool {
	_, ok := s.index(id)
	return ok
}

func (s *sparseSet[T]) get(id entityID) (*T, bool) {
	idx, ok := s.index(id)
	if !ok {
		return nil, false
	}
	return s.values[idx], true
}

func (s *sparseSet[T]) set(id entityID, v *T) {
	if idx, ok := s.index(id); ok {
		s.values[idx] = v
		return
	}
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[id] = int32(len(s.dense))
	s.dense = append(s.dense, id)
	s.values = append(s.values, v)
}

// remove swaps the last element into the freed slot.
func (s *sparseSet[T]) remove(id entityID) bool {
	idx, ok := s.index(id)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[moved] = int32(idx)

	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[id] = -1
	return true
}

func (s *sparseSet[T]) len() int {
	return len(s.dense)
}
