package ecs

import "github.com/rotisserie/eris"

// Hard failures returned by the registries and the World. They are always wrapped with
// context, so match them with errors.Is.
var (
	ErrEntityOutOfRange       = eris.New("entity out of range")
	ErrTooManyEntities        = eris.New("too many entities in existence")
	ErrEntityNotAlive         = eris.New("entity is not alive")
	ErrTooManyComponents      = eris.New("maximum number of registered component types reached")
	ErrComponentNotRegistered = eris.New("component not registered")
	ErrComponentMissing       = eris.New("entity does not have component")
	ErrSystemNotRegistered    = eris.New("system not registered")
	ErrInvalidSystem          = eris.New("invalid system")

	// ErrComponentNameConflict is returned when two distinct Go types resolve to the same
	// component name.
	ErrComponentNameConflict = eris.New("component name already used by another type")
)
