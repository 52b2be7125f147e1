package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityType = reflect.TypeFor[Entity]()

// iface mirrors the runtime layout of a non-empty interface value.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// View fills a struct of component pointers for an entity.
// The type T should be a struct with embedded or named pointer fields for each component type.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag, and a field of
// type Entity receives the id of the entity being viewed.
type View[T any] struct {
	world       *World
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr

	hasEntity    bool
	entityOffset uintptr

	// storages caches the backing set of each field while the component ids stay the same.
	storages   []componentStorage
	generation uint64
}

// NewView creates a new view for the given struct type.
// Embedded fields are always required.
func NewView[T any](w *World) *View[T] {
	v := &View[T]{}
	v.Init(w)
	return v
}

// Init binds the view to w. It is called automatically by RegisterSystem for View fields of
// a system.
func (v *View[T]) Init(w *World) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v.world = w
	v.types = make([]reflect.Type, 0, structType.NumField())
	v.optional = make([]bool, 0, structType.NumField())
	v.fieldOffset = make([]uintptr, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityType {
			v.hasEntity = true
			v.entityOffset = field.Offset
			continue
		}
		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types or ecs.Entity")
		}

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			if tag := field.Tag.Get("ecs"); tag != "" {
				if tag != "optional" {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
				isOptional = true
			}
		}

		v.types = append(v.types, fieldType.Elem())
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}

	v.storages = make([]componentStorage, len(v.types))
	v.generation = w.components.generation - 1
}

func (v *View[T]) refresh() {
	if v.generation == v.world.components.generation {
		return
	}
	for i, t := range v.types {
		v.storages[i] = v.world.components.storageOf(t)
	}
	v.generation = v.world.components.generation
}

// Fill populates the provided struct pointer with component data for the given entity.
// Returns false if the entity is missing any required components.
// Optional components are set to nil if not present.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	v.refresh()

	// Write through unsafe.Pointer to avoid reflection in the hot path
	structPtr := unsafe.Pointer(ptr)

	for i, storage := range v.storages {
		var component any
		if storage != nil {
			component = storage.getAny(e)
		}

		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])
		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		// The interface holds a *C, so its data word is the component pointer
		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	if v.hasEntity {
		*(*Entity)(unsafe.Add(structPtr, v.entityOffset)) = e
	}
	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter yields a populated view struct for every entity of entities that has the required
// components, typically a system's interest set:
//
//	for e, m := range s.Movers.Iter(s.Entities().All()) { ... }
func (v *View[T]) Iter(entities iter.Seq[Entity]) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		var result T
		for e := range entities {
			if !v.Fill(e, &result) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// All yields every entity of the world that has the required components, driven by the
// smallest required component set. Adding or removing those components during iteration
// invalidates it.
func (v *View[T]) All() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		v.refresh()
		var driver componentStorage
		for i, storage := range v.storages {
			if v.optional[i] {
				continue
			}
			if storage == nil {
				return
			}
			if driver == nil || storage.len() < driver.len() {
				driver = storage
			}
		}

		var candidates iter.Seq[Entity]
		if driver != nil {
			candidates = func(yield func(Entity) bool) {
				for _, e := range driver.entities() {
					if !yield(e) {
						return
					}
				}
			}
		} else {
			candidates = v.world.Entities()
		}

		for e, value := range v.Iter(candidates) {
			if !yield(e, value) {
				return
			}
		}
	}
}

// Values returns an iterator over the view structs of All, without entity ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.All() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates an entity with the non-nil components of data. The component types must be
// known to the world.
func (v *View[T]) Spawn(data T) (Entity, error) {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, componentType := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(componentType, componentPtr).Interface())
	}

	return v.world.Spawn(components...)
}
