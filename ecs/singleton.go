package ecs

import "reflect"

// Singleton provides access to a single value of T owned by a World and not associated with
// any entity. Use it for global game state, configuration, or shared services.
type Singleton[T any] struct {
	world *World
	value *T
}

// NewSingleton returns an accessor for the T of w. If w has no T yet, it is created from
// initializer, or the zero value when none is given. The T exists in w after the call.
func NewSingleton[T any](w *World, initializer ...T) *Singleton[T] {
	t := reflect.TypeFor[T]()
	if _, ok := w.singletons[t]; !ok {
		value := new(T)
		if len(initializer) > 0 {
			*value = initializer[0]
		}
		w.singletons[t] = value
	}

	s := &Singleton[T]{}
	s.Init(w)
	return s
}

// Init binds the Singleton to w. It is called automatically by RegisterSystem for Singleton
// fields of a system.
func (s *Singleton[T]) Init(w *World) {
	s.world = w
	s.updateCache()
}

// Get returns a pointer to the value, or nil if w has no T.
func (s *Singleton[T]) Get() *T {
	if s.value == nil {
		s.updateCache()
	}
	return s.value
}

// Exists reports whether w has a T.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	if value, ok := s.world.singletons[reflect.TypeFor[T]()]; ok {
		s.value = value.(*T)
	}
}

// SetSingleton stores value as the T of w, replacing any previous value in place so existing
// accessors observe it.
func SetSingleton[T any](w *World, value T) *T {
	t := reflect.TypeFor[T]()
	if existing, ok := w.singletons[t]; ok {
		ptr := existing.(*T)
		*ptr = value
		return ptr
	}
	ptr := &value
	w.singletons[t] = ptr
	return ptr
}
