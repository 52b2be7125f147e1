package ecs_test

import (
	"fmt"

	"github.com/plus3/hotbean/ecs"
)

type Clock struct {
	Elapsed float64
}

type ClockSystem struct {
	ecs.SystemBase
	Clock ecs.Singleton[Clock]
}

func (s *ClockSystem) SetSignature(*ecs.SignatureBuilder) {}

func (s *ClockSystem) OnUpdate(f *ecs.Frame) {
	s.Clock.Get().Elapsed += f.DeltaTime
}

// ExampleSingleton keeps world-wide state outside of any entity.
func ExampleSingleton() {
	w := ecs.NewWorld()
	ecs.NewSingleton(w, Clock{})

	scheduler := ecs.NewScheduler(w)
	scheduler.Register(&ClockSystem{})
	for i := 0; i < 4; i++ {
		scheduler.Once(0.25)
	}

	clock := ecs.NewSingleton[Clock](w)
	fmt.Println("elapsed:", clock.Get().Elapsed)

	// Output:
	// elapsed: 1
}
