package engine_test

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/engine"
)

func TestInputSystem(t *testing.T) {
	w := ecs.NewWorld()
	_, err := engine.RegisterInput(w)
	require.NoError(t, err)
	state := ecs.NewSingleton[engine.InputState](w)

	s := ecs.NewScheduler(w)
	s.PushEvent(engine.KeyEvent{Key: ebiten.KeySpace, Down: true})
	s.PushEvent(engine.KeyEvent{Key: ebiten.KeyA, Down: true})
	s.PushEvent(engine.MouseButtonEvent{Button: ebiten.MouseButtonLeft, Down: true})
	require.NoError(t, s.Once(0))

	assert.True(t, state.Get().IsPressed(ebiten.KeySpace))
	assert.True(t, state.Get().IsPressed(ebiten.KeyA))

	s.PushEvent(engine.KeyEvent{Key: ebiten.KeySpace, Down: false})
	require.NoError(t, s.Once(0))
	assert.False(t, state.Get().IsPressed(ebiten.KeySpace))
	assert.True(t, state.Get().IsPressed(ebiten.KeyA))

	var empty *engine.InputState
	assert.False(t, empty.IsPressed(ebiten.KeyA))
}
