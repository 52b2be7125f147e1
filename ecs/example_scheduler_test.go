package ecs_test

import (
	"fmt"

	"github.com/plus3/hotbean/ecs"
)

type Transform struct {
	X, Y float32
}

type Speed struct {
	DX, DY float32
}

type Hitpoints struct {
	Current, Max int
}

type MovementSystem struct {
	ecs.SystemBase
	Bodies ecs.View[struct {
		*Transform
		*Speed
	}]
}

func (s *MovementSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Transform](sig)
	ecs.Require[Speed](sig)
}

func (s *MovementSystem) OnFixedUpdate(f *ecs.Frame) {
	for _, body := range s.Bodies.Iter(s.Entities().All()) {
		body.Transform.X += body.Speed.DX * float32(f.FixedDeltaTime)
		body.Transform.Y += body.Speed.DY * float32(f.FixedDeltaTime)
	}
}

type HealingSystem struct {
	ecs.SystemBase
	RegenPerSecond int
}

func (s *HealingSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Hitpoints](sig)
}

func (s *HealingSystem) OnUpdate(f *ecs.Frame) {
	for e := range s.Entities().All() {
		hp, err := ecs.GetComponent[Hitpoints](f.World, e)
		if err != nil {
			continue
		}
		hp.Current = min(hp.Max, hp.Current+int(float64(s.RegenPerSecond)*f.DeltaTime))
	}
}

// ExampleScheduler builds a headless game loop. MovementSystem integrates in fixed steps while
// HealingSystem runs once per frame with the variable delta time.
func ExampleScheduler() {
	w := ecs.NewWorld()
	scheduler := ecs.NewScheduler(w, ecs.WithFixedStep(0.125))

	if _, err := scheduler.Register(&MovementSystem{}); err != nil {
		panic(err)
	}
	if _, err := scheduler.Register(&HealingSystem{RegenPerSecond: 40}); err != nil {
		panic(err)
	}

	hero, _ := w.CreateEntity()
	ecs.AddComponent(w, hero, Transform{})
	ecs.AddComponent(w, hero, Speed{DX: 8, DY: 4})
	ecs.AddComponent(w, hero, Hitpoints{Current: 50, Max: 100})

	for i := 0; i < 4; i++ {
		if err := scheduler.Once(0.25); err != nil {
			panic(err)
		}
	}

	t, _ := ecs.GetComponent[Transform](w, hero)
	hp, _ := ecs.GetComponent[Hitpoints](w, hero)
	stats := scheduler.GetStats()
	fmt.Printf("position (%.0f, %.0f)\n", t.X, t.Y)
	fmt.Printf("hitpoints %d/%d\n", hp.Current, hp.Max)
	fmt.Printf("%d frames, %d fixed steps\n", stats.Frames, stats.FixedSteps)

	// Output:
	// position (8, 4)
	// hitpoints 90/100
	// 4 frames, 8 fixed steps
}

type logger struct {
	ecs.SystemBase
}

func (s *logger) SetSignature(*ecs.SignatureBuilder) {}

func (s *logger) OnStart(*ecs.Frame) { fmt.Println("start") }

func (s *logger) OnEvent(_ *ecs.Frame, ev ecs.Event) { fmt.Println("event", ev) }

func (s *logger) OnWindowResize(_ *ecs.Frame, ev ecs.WindowResizeEvent) {
	fmt.Printf("resize %dx%d\n", ev.Width, ev.Height)
}

func (s *logger) OnUpdate(f *ecs.Frame) { fmt.Println("update", f.Count) }

func (s *logger) OnRender(f *ecs.Frame) { fmt.Println("render", f.Surface) }

// ExampleScheduler_PushEvent shows events queued between frames being delivered at the start of
// the next frame.
func ExampleScheduler_PushEvent() {
	w := ecs.NewWorld()
	scheduler := ecs.NewScheduler(w)
	scheduler.Register(&logger{})

	scheduler.PushEvent("jump")
	scheduler.PushEvent(ecs.WindowResizeEvent{Width: 640, Height: 480})
	scheduler.Update(0)
	scheduler.Render("screen")
	scheduler.Once(0)

	// Output:
	// start
	// event jump
	// resize 640x480
	// update 0
	// render screen
	// update 1
	// render <nil>
}
