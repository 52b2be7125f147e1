package ecs

import (
	"iter"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// EntityRegistry issues and recycles entity ids and owns each entity's Signature.
//
// Free ids are kept in a FIFO ring, so a destroyed id goes to the back of the line and is
// reused only after every id freed before it.
type EntityRegistry struct {
	log        *zap.Logger
	free       [MaxEntities]Entity
	head       int
	freeCount  int
	alive      [MaxEntities]bool
	signatures [MaxEntities]Signature
	living     int
}

// NewEntityRegistry creates a registry with every id free, queued in ascending order.
func NewEntityRegistry(logger *zap.Logger) *EntityRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &EntityRegistry{log: logger}
	r.reset()
	return r
}

func (r *EntityRegistry) reset() {
	for i := range r.free {
		r.free[i] = Entity(i)
	}
	r.head = 0
	r.freeCount = MaxEntities
	r.alive = [MaxEntities]bool{}
	r.signatures = [MaxEntities]Signature{}
	r.living = 0
}

// Create pops the next free id.
func (r *EntityRegistry) Create() (Entity, error) {
	if r.freeCount == 0 {
		r.log.Error("entity pool exhausted", zap.Int("living", r.living))
		return 0, eris.Wrapf(ErrTooManyEntities, "limit is %d", MaxEntities)
	}

	e := r.free[r.head]
	r.head = (r.head + 1) % MaxEntities
	r.freeCount--

	r.alive[e] = true
	r.signatures[e].Reset()
	r.living++
	return e, nil
}

// Destroy clears the signature of e and returns its id to the free queue. It reports false
// without error when e is already dead. Component data is not touched.
func (r *EntityRegistry) Destroy(e Entity) (bool, error) {
	if !e.valid() {
		return false, eris.Wrapf(ErrEntityOutOfRange, "destroying entity %d", e)
	}
	if !r.alive[e] {
		return false, nil
	}

	r.signatures[e].Reset()
	r.alive[e] = false
	r.free[(r.head+r.freeCount)%MaxEntities] = e
	r.freeCount++
	r.living--
	return true, nil
}

// SetSignature sets or clears the bit for id on e and returns the resulting signature.
func (r *EntityRegistry) SetSignature(e Entity, id ComponentID, value bool) (Signature, error) {
	if !e.valid() {
		return Signature{}, eris.Wrapf(ErrEntityOutOfRange, "entity %d", e)
	}
	if int(id) >= MaxComponents {
		return Signature{}, eris.Wrapf(ErrComponentNotRegistered, "component id %d", id)
	}
	if value {
		r.signatures[e].Set(id)
	} else {
		r.signatures[e].Clear(id)
	}
	return r.signatures[e], nil
}

// Signature returns a copy of the signature of e.
func (r *EntityRegistry) Signature(e Entity) (Signature, error) {
	if !e.valid() {
		return Signature{}, eris.Wrapf(ErrEntityOutOfRange, "entity %d", e)
	}
	return r.signatures[e], nil
}

// HasComponent reports whether the signature of e has the bit for id set.
func (r *EntityRegistry) HasComponent(e Entity, id ComponentID) bool {
	return e.valid() && int(id) < MaxComponents && r.signatures[e].Test(id)
}

func (r *EntityRegistry) IsAlive(e Entity) bool {
	return e.valid() && r.alive[e]
}

// Len returns the number of living entities.
func (r *EntityRegistry) Len() int {
	return r.living
}

// All iterates the living entities in ascending id order.
func (r *EntityRegistry) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		seen := 0
		for i := 0; i < MaxEntities && seen < r.living; i++ {
			if !r.alive[i] {
				continue
			}
			seen++
			if !yield(Entity(i)) {
				return
			}
		}
	}
}

// DestroyAll returns every id to the pool in ascending order.
func (r *EntityRegistry) DestroyAll() {
	r.reset()
}
