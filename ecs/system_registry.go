package ecs

import (
	"reflect"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
	// Entities is the size of the interest set.
	Entities int
	// Requires names the required components.
	Requires []string
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

type systemEntry struct {
	typ        reflect.Type
	system     System
	base       *SystemBase
	stats      systemStatsInternal
	registered bool
}

// SystemRegistry owns one instance per system type, in registration order, and keeps every
// system's interest set in step with entity signatures.
type SystemRegistry struct {
	log        *zap.Logger
	components *ComponentRegistry
	// entries is replaced, never mutated in place, so a pass can range over a snapshot while
	// handlers register or unregister systems.
	entries    []*systemEntry
	byType     map[reflect.Type]*systemEntry
	generation uint64
}

// NewSystemRegistry creates an empty registry resolving signatures against components.
func NewSystemRegistry(components *ComponentRegistry, logger *zap.Logger) *SystemRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemRegistry{
		log:        logger,
		components: components,
		byType:     make(map[reflect.Type]*systemEntry),
	}
}

// register adds sys and declares its signature. When a system of the same type is already
// registered it is returned instead and the bool is false.
func (r *SystemRegistry) register(sys System) (System, bool, error) {
	t := reflect.TypeOf(sys)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct || reflect.ValueOf(sys).IsNil() {
		return nil, false, eris.Wrapf(ErrInvalidSystem, "%T is not a pointer to a struct", sys)
	}
	if existing, ok := r.byType[t]; ok {
		r.log.Warn("system already registered", zap.String("system", existing.base.name))
		return existing.system, false, nil
	}

	builder := &SignatureBuilder{components: r.components}
	sys.SetSignature(builder)
	if builder.err != nil {
		builder.rollback()
		r.log.Error("system signature failed", zap.Stringer("system", t.Elem()), zap.Error(builder.err))
		return nil, false, eris.Wrapf(builder.err, "declaring signature of %s", t.Elem())
	}

	base := sys.systemBase()
	base.name = t.Elem().String()
	base.entities = newEntitySet()
	base.required = builder.required
	base.resolve(r.components)

	entry := &systemEntry{
		typ:        t,
		system:     sys,
		base:       base,
		stats:      systemStatsInternal{minDuration: time.Duration(1<<63 - 1)},
		registered: true,
	}
	r.byType[t] = entry
	r.entries = append(slices.Clip(r.entries), entry)

	r.log.Debug("system registered",
		zap.String("system", base.name),
		zap.Stringer("signature", base.signature))
	return sys, true, nil
}

// Unregister drops the system of type t with its signature and interest set.
func (r *SystemRegistry) Unregister(t reflect.Type) bool {
	entry, ok := r.byType[t]
	if !ok {
		return false
	}
	entry.registered = false
	entry.base.entities.clear()
	delete(r.byType, t)
	r.entries = slices.DeleteFunc(slices.Clone(r.entries), func(e *systemEntry) bool { return e == entry })

	r.log.Debug("system unregistered", zap.String("system", entry.base.name))
	return true
}

// Get returns the system of type t, which must be the pointer type the system was registered as.
func (r *SystemRegistry) Get(t reflect.Type) (System, bool) {
	entry, ok := r.byType[t]
	if !ok {
		return nil, false
	}
	return entry.system, true
}

// Signature returns the required signature of the system of type t.
func (r *SystemRegistry) Signature(t reflect.Type) (Signature, error) {
	entry, ok := r.byType[t]
	if !ok {
		return Signature{}, eris.Wrapf(ErrSystemNotRegistered, "system %s", t)
	}
	r.refresh()
	return entry.base.signature, nil
}

// Systems returns the systems in registration order.
func (r *SystemRegistry) Systems() []System {
	systems := make([]System, len(r.entries))
	for i, entry := range r.entries {
		systems[i] = entry.system
	}
	return systems
}

func (r *SystemRegistry) Len() int {
	return len(r.entries)
}

// refresh re-resolves every system signature if component ids changed since the last call.
func (r *SystemRegistry) refresh() {
	if r.generation == r.components.generation {
		return
	}
	for _, entry := range r.entries {
		entry.base.resolve(r.components)
	}
	r.generation = r.components.generation
}

// EntitySignatureChanged re-evaluates e against every system in registration order, adding it
// to the interest sets it now matches and removing it from those it no longer matches.
//
// Membership handlers may change the components of e. Each system is therefore tested against
// the signature e has when its turn comes, not the one it had when the call started.
func (r *SystemRegistry) EntitySignatureChanged(w *World, e Entity) {
	for _, entry := range r.entries {
		if !w.entities.IsAlive(e) {
			// A handler destroyed it and EntityDestroyed already emptied the sets.
			return
		}
		if !entry.registered {
			continue
		}
		r.evaluate(w, entry, e, w.entities.signatures[e])
	}
}

// evaluate tests e against one system. sig must be the current signature of e.
func (r *SystemRegistry) evaluate(w *World, entry *systemEntry, e Entity, sig Signature) {
	r.refresh()
	base := entry.base
	if base.matches(sig) {
		if base.entities.add(e) {
			if h, ok := entry.system.(EntityAddedHandler); ok {
				h.OnEntityAdded(w, e)
			}
		}
		return
	}
	if base.entities.remove(e) {
		if h, ok := entry.system.(EntityRemovedHandler); ok {
			h.OnEntityRemoved(w, e)
		}
	}
}

// EntityDestroyed removes e from every interest set.
func (r *SystemRegistry) EntityDestroyed(w *World, e Entity) {
	for _, entry := range r.entries {
		if !entry.registered || !entry.base.entities.remove(e) {
			continue
		}
		if h, ok := entry.system.(EntityRemovedHandler); ok {
			h.OnEntityRemoved(w, e)
		}
	}
}

// IterateSystems calls the handler for stage on every system that implements it, in
// registration order. ev is passed to StageEvent handlers, and to StageWindowResize handlers
// when it is a WindowResizeEvent.
func (r *SystemRegistry) IterateSystems(f *Frame, stage Stage, ev Event) {
	f.Stage = stage
	for _, entry := range r.entries {
		if !entry.registered || !handles(entry.system, stage, ev) {
			continue
		}
		start := time.Now()
		dispatch(entry.system, f, stage, ev)
		entry.stats.record(time.Since(start))
	}
}

func handles(sys System, stage Stage, ev Event) bool {
	var ok bool
	switch stage {
	case StageStart:
		_, ok = sys.(Starter)
	case StagePreEvent:
		_, ok = sys.(PreEventHandler)
	case StageEvent:
		_, ok = sys.(EventHandler)
	case StageWindowResize:
		if _, isResize := ev.(WindowResizeEvent); isResize {
			_, ok = sys.(WindowResizeHandler)
		}
	case StageFixedUpdate:
		_, ok = sys.(FixedUpdater)
	case StageUpdate:
		_, ok = sys.(Updater)
	case StageRender:
		_, ok = sys.(Renderer)
	case StagePostRender:
		_, ok = sys.(PostRenderer)
	}
	return ok
}

func dispatch(sys System, f *Frame, stage Stage, ev Event) {
	switch stage {
	case StageStart:
		sys.(Starter).OnStart(f)
	case StagePreEvent:
		sys.(PreEventHandler).OnPreEvent(f)
	case StageEvent:
		sys.(EventHandler).OnEvent(f, ev)
	case StageWindowResize:
		sys.(WindowResizeHandler).OnWindowResize(f, ev.(WindowResizeEvent))
	case StageFixedUpdate:
		sys.(FixedUpdater).OnFixedUpdate(f)
	case StageUpdate:
		sys.(Updater).OnUpdate(f)
	case StageRender:
		sys.(Renderer).OnRender(f)
	case StagePostRender:
		sys.(PostRenderer).OnPostRender(f)
	}
}

// Stats returns execution statistics per system in registration order.
func (r *SystemRegistry) Stats() []SystemStats {
	stats := make([]SystemStats, len(r.entries))
	for i, entry := range r.entries {
		internal := entry.stats
		avg := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avg = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}
		stats[i] = SystemStats{
			Name:           entry.base.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avg,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
			Entities:       entry.base.entities.Len(),
			Requires:       requiredNames(entry.base),
		}
	}
	return stats
}

func requiredNames(base *SystemBase) []string {
	names := make([]string, len(base.required))
	for i, kind := range base.required {
		names[i] = kind.name
	}
	return names
}
