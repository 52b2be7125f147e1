package ecs

// Capacities are fixed at build time and bound every per-entity and per-component array.
const (
	// MaxEntities is the number of entity ids in the pool.
	MaxEntities = 50000

	// MaxComponents is the number of component types that can be registered at once.
	MaxComponents = 64
)

// Entity is an opaque identifier in [0, MaxEntities). It carries no data of its own.
type Entity uint32

// ComponentID is the compact numeric id of a registered component type, in [0, MaxComponents).
// Ids are not stable: when the last instance of a type is removed the type is unregistered and
// its id may later be handed to a different type.
type ComponentID uint8

func (e Entity) valid() bool {
	return uint32(e) < MaxEntities
}
