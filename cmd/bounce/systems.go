package main

import (
	"image/color"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/scene"
	"github.com/plus3/hotbean/engine"
)

// BounceSystem moves balls and reflects them off the arena edges.
type BounceSystem struct {
	ecs.SystemBase
	Arena ecs.Singleton[Arena]
	Balls ecs.View[struct {
		*Position
		*Velocity
		*Ball
	}]
}

func (s *BounceSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
	ecs.Require[Velocity](sig)
	ecs.Require[Ball](sig)
}

func (s *BounceSystem) OnWindowResize(_ *ecs.Frame, ev ecs.WindowResizeEvent) {
	if arena := s.Arena.Get(); arena != nil {
		arena.Width, arena.Height = float64(ev.Width), float64(ev.Height)
	}
}

func (s *BounceSystem) OnFixedUpdate(f *ecs.Frame) {
	arena := s.Arena.Get()
	if arena == nil {
		return
	}
	dt := f.FixedDeltaTime
	for _, b := range s.Balls.Iter(s.Entities().All()) {
		b.X += b.DX * dt
		b.Y += b.DY * dt
		b.X, b.DX = reflect1D(b.X, b.DX, b.Radius, arena.Width)
		b.Y, b.DY = reflect1D(b.Y, b.DY, b.Radius, arena.Height)
	}
}

// reflect1D keeps a coordinate within [r, limit-r], flipping the velocity at the bounds.
func reflect1D(pos, vel, r, limit float64) (float64, float64) {
	switch {
	case limit < 2*r:
		return limit / 2, vel
	case pos < r:
		return 2*r - pos, -vel
	case pos > limit-r:
		return 2*(limit-r) - pos, -vel
	}
	return pos, vel
}

// RenderSystem draws every ball onto the frame surface.
type RenderSystem struct {
	ecs.SystemBase
	Balls ecs.View[struct {
		*Position
		*Ball
	}]
}

func (s *RenderSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
	ecs.Require[Ball](sig)
}

func (s *RenderSystem) OnRender(f *ecs.Frame) {
	screen, ok := f.Surface.(*ebiten.Image)
	if !ok {
		return
	}
	screen.Fill(color.RGBA{R: 24, G: 20, B: 28, A: 255})
	for _, b := range s.Balls.Iter(s.Entities().All()) {
		vector.DrawFilledCircle(screen, float32(b.X), float32(b.Y), float32(b.Radius), b.Color, true)
	}
}

// ControlSystem maps keys to actions: space spawns a ball, backspace removes the oldest, S and
// L save and load the scene file, escape quits.
type ControlSystem struct {
	ecs.SystemBase
	Arena     ecs.Singleton[Arena]
	Quit      ecs.Singleton[engine.QuitRequest]
	ScenePath string
	Log       *zap.Logger

	rng *rand.Rand
}

func (s *ControlSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Ball](sig)
}

func (s *ControlSystem) OnEvent(f *ecs.Frame, ev ecs.Event) {
	key, ok := ev.(engine.KeyEvent)
	if !ok || !key.Down {
		return
	}

	switch key.Key {
	case ebiten.KeySpace:
		arena := s.Arena.Get()
		if arena == nil {
			return
		}
		f.Commands.Spawn(randomBall(s.rng, arena)...)
	case ebiten.KeyBackspace:
		if oldest, ok := firstEntity(s.Entities()); ok {
			f.Commands.Destroy(oldest)
		}
	case ebiten.KeyS:
		f.Commands.Defer(s.save)
	case ebiten.KeyL:
		f.Commands.Defer(s.load)
	case ebiten.KeyEscape:
		if q := s.Quit.Get(); q != nil {
			q.Requested = true
		}
	}
}

func (s *ControlSystem) save(w *ecs.World) error {
	doc, err := scene.SaveEntities(w, "bounce", s.Entities().All())
	if err != nil {
		return err
	}
	f, err := os.Create(s.ScenePath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := scene.Encode(f, doc); err != nil {
		return err
	}
	s.Log.Info("scene saved", zap.String("path", s.ScenePath), zap.Int("entities", len(doc.Entities)))
	return nil
}

// load replaces the balls with the saved scene.
func (s *ControlSystem) load(w *ecs.World) error {
	f, err := os.Open(s.ScenePath)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := scene.Decode(f)
	if err != nil {
		return err
	}

	for _, e := range s.Entities().Slice() {
		if err := w.DestroyEntity(e); err != nil {
			return err
		}
	}
	entities, err := scene.Load(w, doc)
	if err != nil {
		return err
	}
	s.Log.Info("scene loaded", zap.String("path", s.ScenePath), zap.Int("entities", len(entities)))
	return nil
}

func firstEntity(set *ecs.EntitySet) (ecs.Entity, bool) {
	for e := range set.All() {
		return e, true
	}
	return 0, false
}

func randomBall(rng *rand.Rand, arena *Arena) []any {
	r := 8 + rng.Float64()*24
	return []any{
		Position{X: r + rng.Float64()*max(arena.Width-2*r, 0), Y: r + rng.Float64()*max(arena.Height-2*r, 0)},
		Velocity{DX: (rng.Float64() - 0.5) * 400, DY: (rng.Float64() - 0.5) * 400},
		Ball{Radius: r, Color: color.RGBA{
			R: uint8(128 + rng.IntN(128)),
			G: uint8(128 + rng.IntN(128)),
			B: uint8(128 + rng.IntN(128)),
			A: 255,
		}},
	}
}
