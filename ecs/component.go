package ecs

import "reflect"

// Component can be implemented by component types that want to be registered under a name of
// their choosing. Types that do not implement it are named after their Go type, e.g. "game.Position".
// The name is what scene files and editor tooling use to find a component type.
type Component interface {
	ComponentName() string
}

// componentKind describes a component type independently of whether it currently holds an id.
type componentKind struct {
	typ        reflect.Type
	name       string
	newStorage func() componentStorage
	newValue   func() any
}

func newComponentKind[T any]() *componentKind {
	t := reflect.TypeFor[T]()
	return &componentKind{
		typ:        t,
		name:       componentName(t),
		newStorage: func() componentStorage { return NewSparseSet[T]() },
		newValue:   func() any { return new(T) },
	}
}

func componentName(t reflect.Type) string {
	if c, ok := reflect.New(t).Interface().(Component); ok {
		if name := c.ComponentName(); name != "" {
			return name
		}
	}
	return t.String()
}

// componentType returns the component type of a value, looking through one level of pointer.
func componentType(value any) reflect.Type {
	t := reflect.TypeOf(value)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
