package ecs_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/hotbean/ecs"
)

type namedMover struct {
	ecs.Entity
	*Position
	Velocity *Velocity
	Name     *Name `ecs:"optional"`
}

func TestViewGet(t *testing.T) {
	w := ecs.NewWorld()
	view := ecs.NewView[namedMover](w)

	e := mustCreate(t, w)
	assert.Nil(t, view.Get(e), "types not registered yet")

	_, err := ecs.AddComponent(w, e, Position{X: 1})
	require.NoError(t, err)
	assert.Nil(t, view.Get(e), "required velocity missing")

	_, err = ecs.AddComponent(w, e, Velocity{DX: 2})
	require.NoError(t, err)

	m := view.Get(e)
	require.NotNil(t, m)
	assert.Equal(t, e, m.Entity)
	assert.Equal(t, float32(1), m.Position.X)
	assert.Equal(t, float32(2), m.Velocity.DX)
	assert.Nil(t, m.Name)

	m.Position.X = 10
	pos, err := ecs.GetComponent[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, float32(10), pos.X, "views point at stored components")

	_, err = ecs.AddComponent(w, e, Name{Value: "bean"})
	require.NoError(t, err)
	m = view.Get(e)
	require.NotNil(t, m)
	require.NotNil(t, m.Name)
	assert.Equal(t, "bean", m.Name.Value)
}

func TestViewAll(t *testing.T) {
	w := ecs.NewWorld()
	view := ecs.NewView[namedMover](w)

	var movers []ecs.Entity
	for i := 0; i < 10; i++ {
		e := mustCreate(t, w)
		_, err := ecs.AddComponent(w, e, Position{X: float32(i)})
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = ecs.AddComponent(w, e, Velocity{})
			require.NoError(t, err)
			movers = append(movers, e)
		}
	}

	var seen []ecs.Entity
	for e, m := range view.All() {
		assert.Equal(t, e, m.Entity)
		seen = append(seen, e)
	}
	assert.ElementsMatch(t, movers, seen)
	assert.Len(t, slices.Collect(view.Values()), len(movers))

	var first int
	for range view.All() {
		first++
		break
	}
	assert.Equal(t, 1, first)
}

func TestViewAfterIDReassignment(t *testing.T) {
	w := ecs.NewWorld()
	view := ecs.NewView[struct{ *Velocity }](w)

	e := mustCreate(t, w)
	_, err := ecs.AddComponent(w, e, Position{})
	require.NoError(t, err)
	require.NoError(t, ecs.RemoveComponent[Position](w, e))

	_, err = ecs.AddComponent(w, e, Velocity{DX: 3})
	require.NoError(t, err)

	got := view.Get(e)
	require.NotNil(t, got)
	assert.Equal(t, float32(3), got.Velocity.DX)
}

func TestViewSpawn(t *testing.T) {
	w := ecs.NewWorld()
	require.NoError(t, ecs.DeclareComponent[Position](w.Components()))
	require.NoError(t, ecs.DeclareComponent[Velocity](w.Components()))
	require.NoError(t, ecs.DeclareComponent[Name](w.Components()))
	view := ecs.NewView[namedMover](w)

	e, err := view.Spawn(namedMover{Position: &Position{X: 4}, Velocity: &Velocity{DY: 1}})
	require.NoError(t, err)

	m := view.Get(e)
	require.NotNil(t, m)
	assert.Equal(t, float32(4), m.Position.X)
	assert.Nil(t, m.Name)
	assert.False(t, ecs.HasComponent[Name](w, e))

	assert.Panics(t, func() {
		_, _ = view.Spawn(namedMover{Position: &Position{}})
	})
}

func TestViewRejectsBadFields(t *testing.T) {
	w := ecs.NewWorld()
	assert.Panics(t, func() { ecs.NewView[struct{ Position }](w) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"maybe"`
		}](w)
	})
}
