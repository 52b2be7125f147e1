package ecs

import "go.uber.org/zap"

// ComponentListener is notified after a component of the type it listens to has been added to
// or removed from an entity, once signatures and interest sets are up to date.
type ComponentListener interface {
	// OnComponentAdded receives a pointer to the new component.
	OnComponentAdded(w *World, e Entity, component any)
	OnComponentRemoved(w *World, e Entity)
}

// ComponentListenerFuncs adapts plain functions to a ComponentListener. Nil functions are skipped.
type ComponentListenerFuncs struct {
	Added   func(w *World, e Entity, component any)
	Removed func(w *World, e Entity)
}

func (l ComponentListenerFuncs) OnComponentAdded(w *World, e Entity, component any) {
	if l.Added != nil {
		l.Added(w, e, component)
	}
}

func (l ComponentListenerFuncs) OnComponentRemoved(w *World, e Entity) {
	if l.Removed != nil {
		l.Removed(w, e)
	}
}

// Listen subscribes l to adds and removes of T. T is added to the component catalog.
func Listen[T any](w *World, l ComponentListener) error {
	kind, err := kindOf[T](w.components)
	if err != nil {
		return err
	}
	w.listeners[kind.typ] = append(w.listeners[kind.typ], l)
	w.log.Debug("component listener added", zap.String("component", kind.name))
	return nil
}

func (w *World) notifyAdded(e Entity, kind *componentKind) {
	listeners := w.listeners[kind.typ]
	if len(listeners) == 0 {
		return
	}
	component, err := w.components.getByType(e, kind.typ)
	if err != nil {
		// An interest set handler already removed it again.
		return
	}
	for _, l := range listeners {
		l.OnComponentAdded(w, e, component)
	}
}

func (w *World) notifyRemoved(e Entity, kind *componentKind) {
	for _, l := range w.listeners[kind.typ] {
		l.OnComponentRemoved(w, e)
	}
}
