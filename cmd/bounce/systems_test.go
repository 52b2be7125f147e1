package main

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/engine"
)

func TestReflect1D(t *testing.T) {
	tests := []struct {
		name             string
		pos, vel         float64
		wantPos, wantVel float64
	}{
		{"inside", 50, 10, 50, 10},
		{"past the low edge", 5, -10, 15, 10},
		{"past the high edge", 98, 10, 82, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := reflect1D(tt.pos, tt.vel, 10, 100)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantVel, vel)
		})
	}

	pos, _ := reflect1D(3, 1, 10, 12)
	assert.Equal(t, 6.0, pos, "an arena smaller than the ball centers it")
}

func newBounceWorld(t *testing.T) (*ecs.World, *ecs.Scheduler, string) {
	t.Helper()
	w := ecs.NewWorld()
	require.NoError(t, declareComponents(w))
	_, err := engine.RegisterInput(w)
	require.NoError(t, err)
	ecs.NewSingleton(w, Arena{Width: 100, Height: 100})
	ecs.NewSingleton[engine.QuitRequest](w)

	s := ecs.NewScheduler(w, ecs.WithFixedStep(0.125))
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, registerSystems(s, zaptest.NewLogger(t), path, rand.New(rand.NewPCG(1, 1))))
	return w, s, path
}

func TestBounceKeepsBallsInside(t *testing.T) {
	w, s, _ := newBounceWorld(t)
	e, err := w.Spawn(Position{X: 50, Y: 50}, Velocity{DX: 300, DY: -170}, Ball{Radius: 5})
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		require.NoError(t, s.Once(0.125))
		pos, err := ecs.GetComponent[Position](w, e)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pos.X, 5.0)
		assert.LessOrEqual(t, pos.X, 95.0)
		assert.GreaterOrEqual(t, pos.Y, 5.0)
		assert.LessOrEqual(t, pos.Y, 95.0)
	}
}

func TestBounceResize(t *testing.T) {
	w, s, _ := newBounceWorld(t)
	s.PushEvent(ecs.WindowResizeEvent{Width: 640, Height: 480})
	require.NoError(t, s.Once(0))

	arena := ecs.NewSingleton[Arena](w).Get()
	assert.Equal(t, Arena{Width: 640, Height: 480}, *arena)
}

func TestControlKeys(t *testing.T) {
	w, s, _ := newBounceWorld(t)
	press := func(key ebiten.Key) {
		s.PushEvent(engine.KeyEvent{Key: key, Down: true})
		require.NoError(t, s.Once(0))
	}

	press(ebiten.KeySpace)
	press(ebiten.KeySpace)
	assert.Equal(t, 2, w.EntityCount())

	press(ebiten.KeyBackspace)
	assert.Equal(t, 1, w.EntityCount())

	press(ebiten.KeyEscape)
	assert.True(t, ecs.NewSingleton[engine.QuitRequest](w).Get().Requested)
}

func TestSaveAndLoadScene(t *testing.T) {
	w, s, _ := newBounceWorld(t)
	e, err := w.Spawn(Position{X: 10, Y: 20}, Velocity{DX: 1}, Ball{Radius: 4})
	require.NoError(t, err)

	s.PushEvent(engine.KeyEvent{Key: ebiten.KeyS, Down: true})
	require.NoError(t, s.Once(0))

	require.NoError(t, w.DestroyEntity(e))
	_, err = w.Spawn(Position{X: 99, Y: 99}, Velocity{}, Ball{Radius: 1})
	require.NoError(t, err)

	s.PushEvent(engine.KeyEvent{Key: ebiten.KeyL, Down: true})
	require.NoError(t, s.Once(0))

	require.Equal(t, 1, w.EntityCount())
	for _, ball := range ecs.NewView[struct {
		*Position
		*Ball
	}](w).All() {
		assert.Equal(t, Position{X: 10, Y: 20}, *ball.Position)
		assert.Equal(t, 4.0, ball.Radius)
	}
}
