package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/hotbean/ecs"
)

type GameState struct {
	Level int
	Score int
}

type scoreKeeper struct {
	ecs.SystemBase
	State ecs.Singleton[GameState]
}

func (s *scoreKeeper) SetSignature(*ecs.SignatureBuilder) {}

func (s *scoreKeeper) OnUpdate(*ecs.Frame) {
	if state := s.State.Get(); state != nil {
		state.Score++
	}
}

func TestSingleton(t *testing.T) {
	w := ecs.NewWorld()

	state := ecs.NewSingleton(w, GameState{Level: 3})
	require.True(t, state.Exists())
	assert.Equal(t, 3, state.Get().Level)

	again := ecs.NewSingleton[GameState](w)
	assert.Same(t, state.Get(), again.Get(), "existing values are not replaced")

	ptr := ecs.SetSingleton(w, GameState{Level: 9})
	assert.Same(t, ptr, state.Get())
	assert.Equal(t, 9, state.Get().Level)
}

func TestSingletonSystemField(t *testing.T) {
	w := ecs.NewWorld()
	keeper, err := ecs.RegisterSystem(w, &scoreKeeper{})
	require.NoError(t, err)
	assert.False(t, keeper.State.Exists())

	ecs.SetSingleton(w, GameState{})
	s := ecs.NewScheduler(w)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Once(0))
	}

	assert.True(t, keeper.State.Exists(), "values set after registration are picked up")
	assert.Equal(t, 3, keeper.State.Get().Score)
}
