package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

const absent int32 = -1

// SparseSet stores values of a single component type keyed by entity. Insert, Remove and
// lookups are O(1) and the values are densely packed for iteration.
//
// Remove is a swap-remove: the last value moves into the removed slot, so pointers returned
// by Get or Lookup are only valid until the next Insert or Remove on the same set.
type SparseSet[T any] struct {
	dense  []T
	owners []Entity
	sparse []int32
}

// NewSparseSet creates an empty set addressable by every entity id.
func NewSparseSet[T any]() *SparseSet[T] {
	sparse := make([]int32, MaxEntities)
	for i := range sparse {
		sparse[i] = absent
	}
	return &SparseSet[T]{sparse: sparse}
}

// Insert stores value for e. It fails if e is out of range, already present, or the set is full.
func (s *SparseSet[T]) Insert(e Entity, value T) bool {
	if !e.valid() || s.sparse[e] != absent || len(s.dense) >= MaxEntities {
		return false
	}

	s.sparse[e] = int32(len(s.dense))
	s.dense = append(s.dense, value)
	s.owners = append(s.owners, e)
	return true
}

// InsertEmpty stores the zero value of T for e.
func (s *SparseSet[T]) InsertEmpty(e Entity) bool {
	var zero T
	return s.Insert(e, zero)
}

// Remove deletes the value for e by moving the last value into its slot.
func (s *SparseSet[T]) Remove(e Entity) bool {
	if !e.valid() || s.sparse[e] == absent {
		return false
	}

	idx := s.sparse[e]
	last := int32(len(s.dense) - 1)
	if idx != last {
		moved := s.owners[last]
		s.dense[idx] = s.dense[last]
		s.owners[idx] = moved
		s.sparse[moved] = idx
	}

	var zero T
	s.dense[last] = zero // drop anything the value referenced
	s.dense = s.dense[:last]
	s.owners = s.owners[:last]
	s.sparse[e] = absent
	return true
}

// Has reports whether e has a value in the set.
func (s *SparseSet[T]) Has(e Entity) bool {
	return e.valid() && s.sparse[e] != absent
}

// Get returns a pointer to the value for e. The caller must have checked Has; Get panics
// when e is absent.
func (s *SparseSet[T]) Get(e Entity) *T {
	if !s.Has(e) {
		panic(fmt.Sprintf("ecs: entity %d has no %s in sparse set", e, reflect.TypeFor[T]()))
	}
	return &s.dense[s.sparse[e]]
}

// Lookup returns a pointer to the value for e, if present.
func (s *SparseSet[T]) Lookup(e Entity) (*T, bool) {
	if !s.Has(e) {
		return nil, false
	}
	return &s.dense[s.sparse[e]], true
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int {
	return len(s.dense)
}

// Entities returns the entities in dense order. The slice is owned by the set.
func (s *SparseSet[T]) Entities() []Entity {
	return s.owners
}

// All iterates entities and pointers to their values in dense order.
func (s *SparseSet[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range s.dense {
			if !yield(s.owners[i], &s.dense[i]) {
				return
			}
		}
	}
}

// Values iterates pointers to the stored values in dense order.
func (s *SparseSet[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range s.dense {
			if !yield(&s.dense[i]) {
				return
			}
		}
	}
}

// Clear removes every value.
func (s *SparseSet[T]) Clear() {
	for _, e := range s.owners {
		s.sparse[e] = absent
	}
	clear(s.dense)
	s.dense = s.dense[:0]
	s.owners = s.owners[:0]
}

func (s *SparseSet[T]) insertAny(e Entity, item any) bool {
	if ptr, ok := item.(*T); ok {
		if ptr == nil {
			return s.InsertEmpty(e)
		}
		return s.Insert(e, *ptr)
	}
	if val, ok := item.(T); ok {
		return s.Insert(e, val)
	}
	return false
}

func (s *SparseSet[T]) insertEmpty(e Entity) bool { return s.InsertEmpty(e) }

func (s *SparseSet[T]) remove(e Entity) bool { return s.Remove(e) }

func (s *SparseSet[T]) has(e Entity) bool { return s.Has(e) }

func (s *SparseSet[T]) getAny(e Entity) any {
	ptr, ok := s.Lookup(e)
	if !ok {
		return nil
	}
	return ptr
}

func (s *SparseSet[T]) len() int { return s.Len() }

func (s *SparseSet[T]) entities() []Entity { return s.Entities() }

func (s *SparseSet[T]) clear() { s.Clear() }
