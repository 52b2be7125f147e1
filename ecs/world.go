package ecs

import (
	"errors"
	"iter"
	"reflect"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// World is the single entry point to an ECS: it owns the component, entity and system registries
// and sequences every change that touches more than one of them, so callers never observe a
// signature that disagrees with component data or with system interest sets.
//
// A World is not safe for concurrent use. Independent Worlds may run on separate goroutines.
type World struct {
	log        *zap.Logger
	components *ComponentRegistry
	entities   *EntityRegistry
	systems    *SystemRegistry

	listeners  map[reflect.Type][]ComponentListener
	singletons map[reflect.Type]any
	stageRuns  [stageCount]uint64
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used by the World and its registries.
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.log = logger
		}
	}
}

// NewWorld creates an empty World.
func NewWorld(opts ...Option) *World {
	w := &World{
		log:        zap.NewNop(),
		listeners:  make(map[reflect.Type][]ComponentListener),
		singletons: make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.components = NewComponentRegistry(w.log.Named("components"))
	w.entities = NewEntityRegistry(w.log.Named("entities"))
	w.systems = NewSystemRegistry(w.components, w.log.Named("systems"))
	return w
}

func (w *World) Logger() *zap.Logger { return w.log }

// Components returns the component registry. Use it for lookups; mutate through the World.
func (w *World) Components() *ComponentRegistry { return w.components }

// SystemRegistry returns the system registry. Use it for lookups; mutate through the World.
func (w *World) SystemRegistry() *SystemRegistry { return w.systems }

// CreateEntity creates an entity with an empty signature. Systems that require no components
// match every living entity, so they receive it right away.
func (w *World) CreateEntity() (Entity, error) {
	e, err := w.entities.Create()
	if err != nil {
		return 0, err
	}
	w.systems.EntitySignatureChanged(w, e)
	return e, nil
}

// Spawn creates an entity and adds each of values to it. Values may be components or pointers
// to components, and their types must be known to the World (see DeclareComponent). On failure
// the entity is destroyed again.
func (w *World) Spawn(values ...any) (Entity, error) {
	e, err := w.CreateEntity()
	if err != nil {
		return 0, err
	}
	for _, value := range values {
		if err := w.AddComponentValue(e, value); err != nil {
			if destroyErr := w.DestroyEntity(e); destroyErr != nil {
				w.log.Error("cleanup after failed spawn", zap.Uint32("entity", uint32(e)), zap.Error(destroyErr))
			}
			return 0, err
		}
	}
	return e, nil
}

// DestroyEntity removes every component of e, returns its id to the pool and drops it from every
// interest set. Destroying a dead entity logs a warning and does nothing.
func (w *World) DestroyEntity(e Entity) error {
	if !e.valid() {
		return eris.Wrapf(ErrEntityOutOfRange, "destroying entity %d", e)
	}
	if !w.entities.IsAlive(e) {
		w.log.Warn("entity already destroyed", zap.Uint32("entity", uint32(e)))
		return nil
	}

	// Handlers run by each removal may change the signature, so re-read it every time.
	for {
		id, ok := w.entities.signatures[e].first()
		if !ok {
			break
		}
		slot := w.components.slots[id]
		if slot == nil {
			w.entities.signatures[e].Clear(id)
			continue
		}
		if err := w.removeComponent(e, slot.kind); err != nil {
			return err
		}
	}

	if _, err := w.entities.Destroy(e); err != nil {
		return err
	}
	w.systems.EntityDestroyed(w, e)
	return nil
}

// DestroyAllEntities destroys every living entity in ascending id order.
func (w *World) DestroyAllEntities() error {
	for _, e := range slices.Collect(w.entities.All()) {
		if err := w.DestroyEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// EntityCount returns the number of living entities.
func (w *World) EntityCount() int {
	return w.entities.Len()
}

// Entities iterates the living entities in ascending id order. Collect it before destroying
// entities inside the loop.
func (w *World) Entities() iter.Seq[Entity] {
	return w.entities.All()
}

func (w *World) IsAlive(e Entity) bool {
	return w.entities.IsAlive(e)
}

// Signature returns the component signature of e.
func (w *World) Signature(e Entity) (Signature, error) {
	return w.entities.Signature(e)
}

// AddComponent attaches a T to e, initialised from value when given and to the zero value
// otherwise, and returns a pointer to the stored component. If e already has a T, a warning is
// logged and the existing component is returned unchanged.
//
// The pointer is nil with a nil error when a membership handler or listener removed the T (or
// destroyed e) before AddComponent returned.
func AddComponent[T any](w *World, e Entity, value ...T) (*T, error) {
	kind, err := kindOf[T](w.components)
	if err != nil {
		return nil, err
	}
	var item any
	if len(value) > 0 {
		item = value[0]
	}
	if err := w.addComponent(e, kind, item); err != nil {
		return nil, err
	}
	ptr, err := getData[T](w.components, e)
	if errors.Is(err, ErrComponentMissing) || errors.Is(err, ErrComponentNotRegistered) {
		return nil, nil
	}
	return ptr, err
}

// RemoveComponent detaches the T of e. Removing a component e does not have logs a warning.
func RemoveComponent[T any](w *World, e Entity) error {
	kind, err := kindOf[T](w.components)
	if err != nil {
		return err
	}
	return w.removeComponent(e, kind)
}

// GetComponent returns a pointer to the T of e. The pointer is valid until the next add or
// remove of a T on any entity.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	return getData[T](w.components, e)
}

// HasComponent reports whether e has a T.
func HasComponent[T any](w *World, e Entity) bool {
	return w.components.has(e, reflect.TypeFor[T]())
}

// IsComponentRegistered reports whether T currently holds a component id.
func IsComponentRegistered[T any](w *World) bool {
	return w.components.isRegisteredType(reflect.TypeFor[T]())
}

// AddComponentValue adds value, a component or a pointer to one, to e. The type of value must
// be known to the World.
func (w *World) AddComponentValue(e Entity, value any) error {
	kind, err := w.components.kindOfValue(value)
	if err != nil {
		return err
	}
	return w.addComponent(e, kind, value)
}

// AddComponentByName adds the component called name to e. value may be nil for the zero value,
// or a value or pointer of the named type.
func (w *World) AddComponentByName(e Entity, name string, value any) error {
	kind, ok := w.components.kindByName(name)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "component %q is not in the catalog", name)
	}
	if value != nil && componentType(value) != kind.typ {
		return eris.Errorf("value of type %T cannot be used as component %q", value, name)
	}
	return w.addComponent(e, kind, value)
}

// RemoveComponentByName removes the component called name from e.
func (w *World) RemoveComponentByName(e Entity, name string) error {
	kind, ok := w.components.kindByName(name)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "component %q is not in the catalog", name)
	}
	return w.removeComponent(e, kind)
}

// RemoveComponentType removes the component of type t from e.
func (w *World) RemoveComponentType(e Entity, t reflect.Type) error {
	kind, ok := w.components.catalog[t]
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "component %s is not in the catalog", t)
	}
	return w.removeComponent(e, kind)
}

// HasComponentNamed reports whether e has the component called name.
func (w *World) HasComponentNamed(e Entity, name string) bool {
	id, ok := w.components.TryComponentID(name)
	return ok && w.entities.HasComponent(e, id)
}

// Component returns a pointer to the component with the given id on e, type-erased.
func (w *World) Component(e Entity, id ComponentID) (any, error) {
	return w.components.get(e, id)
}

// AllComponents returns pointers to every component of e, ordered by component id.
func (w *World) AllComponents(e Entity) ([]any, error) {
	sig, err := w.entities.Signature(e)
	if err != nil {
		return nil, err
	}
	components := make([]any, 0, sig.Count())
	for id := range sig.IDs() {
		c, err := w.components.get(e, id)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, nil
}

// ComponentID returns the current id of the component called name.
func (w *World) ComponentID(name string) (ComponentID, error) {
	return w.components.ComponentID(name)
}

// ComponentName returns the name of the component currently holding id.
func (w *World) ComponentName(id ComponentID) (string, error) {
	return w.components.ComponentName(id)
}

func (w *World) addComponent(e Entity, kind *componentKind, item any) error {
	if !w.entities.IsAlive(e) {
		if !e.valid() {
			return eris.Wrapf(ErrEntityOutOfRange, "adding %q to entity %d", kind.name, e)
		}
		return eris.Wrapf(ErrEntityNotAlive, "adding %q to entity %d", kind.name, e)
	}

	id, stored, err := w.components.add(e, kind, item)
	if err != nil {
		return err
	}
	if !stored {
		return nil
	}

	if _, err := w.entities.SetSignature(e, id, true); err != nil {
		return err
	}
	w.systems.EntitySignatureChanged(w, e)
	w.notifyAdded(e, kind)
	return nil
}

func (w *World) removeComponent(e Entity, kind *componentKind) error {
	if !e.valid() {
		return eris.Wrapf(ErrEntityOutOfRange, "removing %q from entity %d", kind.name, e)
	}

	id, removed, err := w.components.remove(e, kind.typ)
	if err != nil {
		return err
	}
	if !removed {
		w.log.Warn("entity does not have component",
			zap.Uint32("entity", uint32(e)),
			zap.String("component", kind.name))
		return nil
	}

	if _, err := w.entities.SetSignature(e, id, false); err != nil {
		return err
	}
	w.systems.EntitySignatureChanged(w, e)
	w.notifyRemoved(e, kind)
	return nil
}

// RegisterSystem registers sys and returns it. If a system of the same type is already
// registered, a warning is logged and the existing instance is returned instead.
//
// View and Singleton fields of the system are initialised, then every living entity is
// evaluated against the system's signature.
func RegisterSystem[S System](w *World, sys S) (S, error) {
	registered, err := w.AddSystem(sys)
	if err != nil {
		var zero S
		return zero, err
	}
	return registered.(S), nil
}

// AddSystem is RegisterSystem for callers that only hold a System.
func (w *World) AddSystem(sys System) (System, error) {
	registered, added, err := w.systems.register(sys)
	if err != nil {
		return nil, err
	}
	if added {
		w.initSystemFields(registered)
		w.evaluateSystem(registered)
	}
	return registered, nil
}

// GetSystem returns the registered system of type S.
func GetSystem[S System](w *World) (S, bool) {
	sys, ok := w.systems.Get(reflect.TypeFor[S]())
	if !ok {
		var zero S
		return zero, false
	}
	return sys.(S), true
}

// UnregisterSystem drops the system of type S with its interest set.
func UnregisterSystem[S System](w *World) bool {
	return w.systems.Unregister(reflect.TypeFor[S]())
}

// SystemSignature returns the signature required by the system of type S under the current
// component ids.
func SystemSignature[S System](w *World) (Signature, error) {
	return w.systems.Signature(reflect.TypeFor[S]())
}

// Systems returns the registered systems in registration order.
func (w *World) Systems() []System {
	return w.systems.Systems()
}

// SystemStats returns execution statistics per system in registration order.
func (w *World) SystemStats() []SystemStats {
	return w.systems.Stats()
}

func (w *World) evaluateSystem(sys System) {
	entry, ok := w.systems.byType[reflect.TypeOf(sys)]
	if !ok {
		return
	}
	for _, e := range slices.Collect(w.entities.All()) {
		if !entry.registered {
			return
		}
		if w.entities.IsAlive(e) {
			w.systems.evaluate(w, entry, e, w.entities.signatures[e])
		}
	}
}

// initSystemFields calls Init on every View and Singleton field of a system.
func (w *World) initSystemFields(sys System) {
	value := reflect.ValueOf(sys).Elem()
	typ := value.Type()

	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		if !strings.HasPrefix(typeName, "View[") && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		init := field.Addr().MethodByName("Init")
		if !init.IsValid() {
			panic("Init method not found on field: " + typ.Field(i).Name)
		}
		init.Call([]reflect.Value{reflect.ValueOf(w)})
	}
}

// IterateSystems runs stage on every system in registration order.
func (w *World) IterateSystems(f *Frame, stage Stage) {
	w.IterateSystemsEvent(f, nil, stage)
}

// IterateSystemsEvent runs stage on every system in registration order, passing ev to event
// handlers.
func (w *World) IterateSystemsEvent(f *Frame, ev Event, stage Stage) {
	if stage < stageCount {
		w.stageRuns[stage]++
	}
	if f.World == nil {
		f.World = w
	}
	w.systems.IterateSystems(f, stage, ev)
}

// StageRuns returns how many times stage has been iterated.
func (w *World) StageRuns(stage Stage) uint64 {
	if stage >= stageCount {
		return 0
	}
	return w.stageRuns[stage]
}
