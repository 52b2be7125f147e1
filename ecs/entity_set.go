package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
)

// EntitySet is an unordered set of entities with O(1) add, remove and membership, packed for
// iteration. It is the interest set of a system.
type EntitySet struct {
	dense []Entity
	index *intmap.Map[Entity, int]
}

func newEntitySet() *EntitySet {
	return &EntitySet{index: intmap.New[Entity, int](64)}
}

func (s *EntitySet) add(e Entity) bool {
	if _, ok := s.index.Get(e); ok {
		return false
	}
	s.index.Put(e, len(s.dense))
	s.dense = append(s.dense, e)
	return true
}

func (s *EntitySet) remove(e Entity) bool {
	idx, ok := s.index.Get(e)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	if idx != last {
		moved := s.dense[last]
		s.dense[idx] = moved
		s.index.Put(moved, idx)
	}
	s.dense = s.dense[:last]
	s.index.Del(e)
	return true
}

func (s *EntitySet) clear() {
	s.dense = s.dense[:0]
	s.index.Clear()
}

// Has reports whether e is in the set.
func (s *EntitySet) Has(e Entity) bool {
	_, ok := s.index.Get(e)
	return ok
}

// Len returns the number of entities in the set.
func (s *EntitySet) Len() int {
	return len(s.dense)
}

// All iterates the set. Order is unspecified, and entities removed during iteration may be
// skipped or visited once more.
func (s *EntitySet) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i := 0; i < len(s.dense); i++ {
			if !yield(s.dense[i]) {
				return
			}
		}
	}
}

// Slice returns a copy of the members, safe to hold while the set changes.
func (s *EntitySet) Slice() []Entity {
	return slices.Clone(s.dense)
}
