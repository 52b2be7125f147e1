package ecs

// componentStorage is the type-erased view of a SparseSet used by the ComponentRegistry so it can
// own sets of different component types behind one interface.
type componentStorage interface {
	// insertAny accepts either a T or a *T.
	insertAny(e Entity, item any) bool
	insertEmpty(e Entity) bool
	remove(e Entity) bool
	has(e Entity) bool
	// getAny returns a *T, or nil when e is absent.
	getAny(e Entity) any
	len() int
	// entities returns the members in dense order; the slice is owned by the storage.
	entities() []Entity
	clear()
}

var _ componentStorage = (*SparseSet[struct{}])(nil)
