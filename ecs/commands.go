package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
)

// Commands provides a buffer for deferred structural changes that are applied at the end of a
// frame stage, so systems can queue them while iterating interest sets.
type Commands struct {
	spawns  []spawnCommand
	deletes []Entity
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return newCommands()
}

type deferCommand struct {
	fn func(w *World) error
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity Entity
	// apply is set for typed adds; otherwise component is added by value.
	apply     func(w *World) error
	component any
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

// Defer queues a function to run after every other queued command.
func (c *Commands) Defer(fn func(w *World) error) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues the creation of an entity with the given components. Their types must be known
// to the World when the buffer is flushed.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Destroy queues an entity destruction.
func (c *Commands) Destroy(entity Entity) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition. The type of component must be known to the World
// when the buffer is flushed; use Add for types that may not be.
func (c *Commands) AddComponent(entity Entity, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// Add queues the addition of a T to entity.
func Add[T any](c *Commands, entity Entity, value T) {
	c.adds = append(c.adds, addComponentCommand{
		entity: entity,
		apply: func(w *World) error {
			_, err := AddComponent(w, entity, value)
			return err
		},
	})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Remove queues the removal of the T of entity.
func Remove[T any](c *Commands, entity Entity) {
	c.RemoveComponent(entity, reflect.TypeFor[T]())
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies the queued commands to w in the order destroys, removes, adds, spawns, defers,
// and resets the buffer. Adds and removes targeting an entity destroyed by the same flush are
// dropped. Every command runs even if an earlier one failed; the failures are combined.
func (c *Commands) Flush(w *World) error {
	var errs error
	deleted := make(map[Entity]bool, len(c.deletes))

	for _, e := range c.deletes {
		errs = multierr.Append(errs, w.DestroyEntity(e))
		deleted[e] = true
	}

	for _, cmd := range c.removes {
		if deleted[cmd.entity] {
			continue
		}
		errs = multierr.Append(errs, w.RemoveComponentType(cmd.entity, cmd.compType))
	}

	for _, cmd := range c.adds {
		if deleted[cmd.entity] {
			continue
		}
		if cmd.apply != nil {
			errs = multierr.Append(errs, cmd.apply(w))
		} else {
			errs = multierr.Append(errs, w.AddComponentValue(cmd.entity, cmd.component))
		}
	}

	for _, cmd := range c.spawns {
		if _, err := w.Spawn(cmd.components...); err != nil {
			errs = multierr.Append(errs, eris.Wrap(err, "spawning entity"))
		}
	}

	for _, df := range c.defers {
		errs = multierr.Append(errs, df.fn(w))
	}

	c.reset()
	return errs
}

func (c *Commands) reset() {
	clear(c.spawns)
	clear(c.adds)
	clear(c.defers)
	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
