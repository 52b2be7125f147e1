package ecs

import (
	"reflect"
	"slices"

	"github.com/rotisserie/eris"
)

// System is a unit of behavior that runs over the entities carrying a set of components.
//
// Implement a system as a struct that embeds SystemBase and declares its required components in
// SetSignature:
//
//	type MoverSystem struct {
//		ecs.SystemBase
//	}
//
//	func (s *MoverSystem) SetSignature(sig *ecs.SignatureBuilder) {
//		ecs.Require[Position](sig)
//		ecs.Require[Velocity](sig)
//	}
//
// The system then implements any of the stage handler interfaces (Updater, Renderer, ...) and
// iterates its interest set, Entities, inside them.
type System interface {
	SetSignature(sig *SignatureBuilder)
	systemBase() *SystemBase
}

// SystemBase holds the bookkeeping the SystemRegistry keeps for every system.
type SystemBase struct {
	name      string
	entities  *EntitySet
	required  []*componentKind
	signature Signature
	// satisfiable is false while one of the required types is unregistered, in which case no
	// entity can match.
	satisfiable bool
}

func (b *SystemBase) systemBase() *SystemBase { return b }

// Entities returns the interest set: every entity whose signature contains the system's.
func (b *SystemBase) Entities() *EntitySet {
	return b.entities
}

// Signature returns the required signature under the current component ids.
func (b *SystemBase) Signature() Signature {
	return b.signature
}

// Name returns the Go type name of the system.
func (b *SystemBase) Name() string {
	return b.name
}

func (b *SystemBase) matches(sig Signature) bool {
	return b.satisfiable && sig.Contains(b.signature)
}

// resolve recomputes the required signature from the current component ids.
func (b *SystemBase) resolve(components *ComponentRegistry) {
	b.signature.Reset()
	b.satisfiable = true
	for _, kind := range b.required {
		id, ok := components.ids[kind.typ]
		if !ok {
			b.satisfiable = false
			continue
		}
		b.signature.Set(id)
	}
}

// SignatureBuilder collects the components a system requires.
type SignatureBuilder struct {
	components *ComponentRegistry
	required   []*componentKind
	// fresh holds the kinds this builder registered, so a failed signature can give their ids back.
	fresh []*componentKind
	err   error
}

// Require adds T to the signature being built, registering T if needed.
func Require[T any](b *SignatureBuilder) {
	if b.err != nil {
		return
	}
	kind, err := kindOf[T](b.components)
	if err == nil {
		err = b.register(kind)
	}
	if err != nil {
		b.err = err
		return
	}
	b.require(kind)
}

// RequireType is Require for a type known only at run time. The type must already be in the
// component catalog.
func (b *SignatureBuilder) RequireType(t reflect.Type) {
	if b.err != nil {
		return
	}
	kind, ok := b.components.catalog[t]
	if !ok {
		b.err = eris.Wrapf(ErrComponentNotRegistered, "component %s is not in the catalog", t)
		return
	}
	if err := b.register(kind); err != nil {
		b.err = err
		return
	}
	b.require(kind)
}

func (b *SignatureBuilder) register(kind *componentKind) error {
	_, had := b.components.ids[kind.typ]
	if _, err := b.components.register(kind); err != nil {
		return err
	}
	if !had {
		b.fresh = append(b.fresh, kind)
	}
	return nil
}

// rollback unregisters the kinds registered by this builder that still hold no instances.
func (b *SignatureBuilder) rollback() {
	for _, kind := range b.fresh {
		id, ok := b.components.ids[kind.typ]
		if ok && b.components.slots[id].storage.len() == 0 {
			b.components.unregister(id)
		}
	}
	b.fresh = nil
}

func (b *SignatureBuilder) require(kind *componentKind) {
	if !slices.Contains(b.required, kind) {
		b.required = append(b.required, kind)
	}
}

// EntityAddedHandler is notified when an entity enters the interest set.
type EntityAddedHandler interface {
	OnEntityAdded(w *World, e Entity)
}

// EntityRemovedHandler is notified when an entity leaves the interest set, including when
// it is destroyed.
type EntityRemovedHandler interface {
	OnEntityRemoved(w *World, e Entity)
}

// Starter runs once before the first frame.
type Starter interface {
	OnStart(f *Frame)
}

// PreEventHandler runs at the start of every frame, before events are dispatched.
type PreEventHandler interface {
	OnPreEvent(f *Frame)
}

// EventHandler receives every event pushed to the frame loop.
type EventHandler interface {
	OnEvent(f *Frame, ev Event)
}

// WindowResizeHandler receives window size changes.
type WindowResizeHandler interface {
	OnWindowResize(f *Frame, ev WindowResizeEvent)
}

// FixedUpdater runs zero or more times per frame with a constant FixedDeltaTime.
type FixedUpdater interface {
	OnFixedUpdate(f *Frame)
}

type Updater interface {
	OnUpdate(f *Frame)
}

type Renderer interface {
	OnRender(f *Frame)
}

type PostRenderer interface {
	OnPostRender(f *Frame)
}
