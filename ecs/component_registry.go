package ecs

import (
	"reflect"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type componentSlot struct {
	kind    *componentKind
	storage componentStorage
}

// ComponentRegistry owns one SparseSet per registered component type and the type, name and id
// mappings between them. Types are registered lazily on first add and unregistered as soon as
// their last instance is removed, which frees the id for the next registration.
//
// Every type the registry has ever seen stays in its catalog, so a component can still be
// constructed by name after its type was unregistered.
type ComponentRegistry struct {
	log   *zap.Logger
	slots [MaxComponents]*componentSlot
	ids   map[reflect.Type]ComponentID
	names map[string]ComponentID
	count int

	// generation changes whenever a type is registered or unregistered, so holders of ids can
	// tell when to re-resolve them.
	generation uint64

	catalog       map[reflect.Type]*componentKind
	catalogByName map[string]*componentKind
}

// NewComponentRegistry creates an empty registry. A nil logger discards output.
func NewComponentRegistry(logger *zap.Logger) *ComponentRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComponentRegistry{
		log:           logger,
		ids:           make(map[reflect.Type]ComponentID),
		names:         make(map[string]ComponentID),
		catalog:       make(map[reflect.Type]*componentKind),
		catalogByName: make(map[string]*componentKind),
	}
}

// RegisterComponent registers T under the lowest free id. Registering a type that is already
// registered returns its current id.
func RegisterComponent[T any](r *ComponentRegistry) (ComponentID, error) {
	kind, err := kindOf[T](r)
	if err != nil {
		return 0, err
	}
	return r.register(kind)
}

// DeclareComponent adds T to the catalog without registering it, so it can be created by name
// before any entity carries it.
func DeclareComponent[T any](r *ComponentRegistry) error {
	_, err := kindOf[T](r)
	return err
}

// ComponentIDOf returns the current id of T.
func ComponentIDOf[T any](r *ComponentRegistry) (ComponentID, error) {
	id, ok := TryComponentIDOf[T](r)
	if !ok {
		return 0, eris.Wrapf(ErrComponentNotRegistered, "component %s", reflect.TypeFor[T]())
	}
	return id, nil
}

// TryComponentIDOf returns the current id of T and whether T is registered.
func TryComponentIDOf[T any](r *ComponentRegistry) (ComponentID, bool) {
	id, ok := r.ids[reflect.TypeFor[T]()]
	return id, ok
}

// SparseSetOf returns the backing set of T while T is registered. The set must not be
// mutated directly; use the World so signatures and systems stay in sync.
func SparseSetOf[T any](r *ComponentRegistry) (*SparseSet[T], bool) {
	id, ok := TryComponentIDOf[T](r)
	if !ok {
		return nil, false
	}
	return r.slots[id].storage.(*SparseSet[T]), true
}

func kindOf[T any](r *ComponentRegistry) (*componentKind, error) {
	if kind, ok := r.catalog[reflect.TypeFor[T]()]; ok {
		return kind, nil
	}
	return r.declare(newComponentKind[T]())
}

func (r *ComponentRegistry) declare(kind *componentKind) (*componentKind, error) {
	if existing, ok := r.catalog[kind.typ]; ok {
		return existing, nil
	}
	if other, ok := r.catalogByName[kind.name]; ok {
		return nil, eris.Wrapf(ErrComponentNameConflict, "%q is used by %s and %s", kind.name, other.typ, kind.typ)
	}
	r.catalog[kind.typ] = kind
	r.catalogByName[kind.name] = kind
	return kind, nil
}

func (r *ComponentRegistry) register(kind *componentKind) (ComponentID, error) {
	if id, ok := r.ids[kind.typ]; ok {
		return id, nil
	}
	if r.count >= MaxComponents {
		r.log.Error("component registration failed",
			zap.String("component", kind.name),
			zap.Int("registered", r.count))
		return 0, eris.Wrapf(ErrTooManyComponents, "registering %q", kind.name)
	}

	var id ComponentID
	for r.slots[id] != nil {
		id++
	}
	r.slots[id] = &componentSlot{kind: kind, storage: kind.newStorage()}
	r.ids[kind.typ] = id
	r.names[kind.name] = id
	r.count++
	r.generation++

	r.log.Debug("component registered", zap.String("component", kind.name), zap.Uint8("id", uint8(id)))
	return id, nil
}

func (r *ComponentRegistry) unregister(id ComponentID) {
	slot := r.slots[id]
	if slot == nil {
		return
	}
	delete(r.ids, slot.kind.typ)
	delete(r.names, slot.kind.name)
	r.slots[id] = nil
	r.count--
	r.generation++

	r.log.Debug("component unregistered", zap.String("component", slot.kind.name), zap.Uint8("id", uint8(id)))
}

// add stores item for e, registering the kind on demand. item may be a T, a *T, or nil for the
// zero value. The returned bool is false when e already had the component and nothing was stored.
func (r *ComponentRegistry) add(e Entity, kind *componentKind, item any) (ComponentID, bool, error) {
	if !e.valid() {
		return 0, false, eris.Wrapf(ErrEntityOutOfRange, "adding %q to entity %d", kind.name, e)
	}
	id, err := r.register(kind)
	if err != nil {
		return 0, false, err
	}

	storage := r.slots[id].storage
	if storage.has(e) {
		r.log.Warn("entity already has component",
			zap.Uint32("entity", uint32(e)),
			zap.String("component", kind.name))
		return id, false, nil
	}

	var stored bool
	if item == nil {
		stored = storage.insertEmpty(e)
	} else {
		stored = storage.insertAny(e, item)
	}
	if !stored {
		if storage.len() == 0 {
			r.unregister(id)
		}
		return 0, false, eris.Errorf("cannot store %T as component %q of entity %d", item, kind.name, e)
	}
	return id, true, nil
}

// remove deletes the component of type t from e. The id is resolved before the type can be
// unregistered and is returned so the caller can clear the signature bit. The returned bool is
// false when e did not have the component.
func (r *ComponentRegistry) remove(e Entity, t reflect.Type) (ComponentID, bool, error) {
	if !e.valid() {
		return 0, false, eris.Wrapf(ErrEntityOutOfRange, "removing %s from entity %d", t, e)
	}
	id, ok := r.ids[t]
	if !ok {
		return 0, false, nil
	}
	return id, r.removeID(e, id), nil
}

func (r *ComponentRegistry) removeID(e Entity, id ComponentID) bool {
	slot := r.slots[id]
	if slot == nil || !slot.storage.remove(e) {
		return false
	}
	if slot.storage.len() == 0 {
		r.unregister(id)
	}
	return true
}

// get returns a *T for the component with the given id, type-erased.
func (r *ComponentRegistry) get(e Entity, id ComponentID) (any, error) {
	if !e.valid() {
		return nil, eris.Wrapf(ErrEntityOutOfRange, "entity %d", e)
	}
	if int(id) >= MaxComponents || r.slots[id] == nil {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component id %d", id)
	}
	ptr := r.slots[id].storage.getAny(e)
	if ptr == nil {
		return nil, eris.Wrapf(ErrComponentMissing, "entity %d, component %q", e, r.slots[id].kind.name)
	}
	return ptr, nil
}

func (r *ComponentRegistry) getByType(e Entity, t reflect.Type) (any, error) {
	id, ok := r.ids[t]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %s", t)
	}
	return r.get(e, id)
}

func getData[T any](r *ComponentRegistry, e Entity) (*T, error) {
	if !e.valid() {
		return nil, eris.Wrapf(ErrEntityOutOfRange, "entity %d", e)
	}
	set, ok := SparseSetOf[T](r)
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %s", reflect.TypeFor[T]())
	}
	ptr, ok := set.Lookup(e)
	if !ok {
		return nil, eris.Wrapf(ErrComponentMissing, "entity %d, component %s", e, reflect.TypeFor[T]())
	}
	return ptr, nil
}

func (r *ComponentRegistry) has(e Entity, t reflect.Type) bool {
	id, ok := r.ids[t]
	return ok && r.slots[id].storage.has(e)
}

func (r *ComponentRegistry) storageOf(t reflect.Type) componentStorage {
	id, ok := r.ids[t]
	if !ok {
		return nil
	}
	return r.slots[id].storage
}

// ComponentID returns the current id of the component registered under name.
func (r *ComponentRegistry) ComponentID(name string) (ComponentID, error) {
	id, ok := r.TryComponentID(name)
	if !ok {
		return 0, eris.Wrapf(ErrComponentNotRegistered, "component %q", name)
	}
	return id, nil
}

// TryComponentID returns the current id of the component registered under name, if any.
func (r *ComponentRegistry) TryComponentID(name string) (ComponentID, bool) {
	id, ok := r.names[name]
	return id, ok
}

// ComponentName returns the name of the component currently holding id.
func (r *ComponentRegistry) ComponentName(id ComponentID) (string, error) {
	if int(id) >= MaxComponents || r.slots[id] == nil {
		return "", eris.Wrapf(ErrComponentNotRegistered, "component id %d", id)
	}
	return r.slots[id].kind.name, nil
}

// ComponentType returns the Go type of the component currently holding id.
func (r *ComponentRegistry) ComponentType(id ComponentID) (reflect.Type, error) {
	if int(id) >= MaxComponents || r.slots[id] == nil {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component id %d", id)
	}
	return r.slots[id].kind.typ, nil
}

func (r *ComponentRegistry) IsRegistered(name string) bool {
	_, ok := r.names[name]
	return ok
}

func (r *ComponentRegistry) IsRegisteredID(id ComponentID) bool {
	return int(id) < MaxComponents && r.slots[id] != nil
}

func (r *ComponentRegistry) isRegisteredType(t reflect.Type) bool {
	_, ok := r.ids[t]
	return ok
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return r.count
}

// Names returns the names of the registered component types ordered by id.
func (r *ComponentRegistry) Names() []string {
	names := make([]string, 0, r.count)
	for _, slot := range r.slots {
		if slot != nil {
			names = append(names, slot.kind.name)
		}
	}
	return names
}

// Catalog returns the names of every component type the registry knows how to construct,
// sorted alphabetically.
func (r *ComponentRegistry) Catalog() []string {
	names := make([]string, 0, len(r.catalogByName))
	for name := range r.catalogByName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New returns a pointer to a new zero value of the catalogued component called name.
func (r *ComponentRegistry) New(name string) (any, error) {
	kind, ok := r.catalogByName[name]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %q is not in the catalog", name)
	}
	return kind.newValue(), nil
}

// kindOfValue resolves the catalogued kind of a T or *T value.
func (r *ComponentRegistry) kindOfValue(value any) (*componentKind, error) {
	t := componentType(value)
	if t == nil {
		return nil, eris.Wrap(ErrComponentNotRegistered, "nil component value")
	}
	kind, ok := r.catalog[t]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %s is not in the catalog", t)
	}
	return kind, nil
}

func (r *ComponentRegistry) kindByName(name string) (*componentKind, bool) {
	kind, ok := r.catalogByName[name]
	return kind, ok
}

// clear drops every registration and its data. The catalog is kept.
func (r *ComponentRegistry) clear() {
	for id, slot := range r.slots {
		if slot != nil {
			slot.storage.clear()
			r.unregister(ComponentID(id))
		}
	}
}
