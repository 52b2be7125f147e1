package ecs_test

import (
	"fmt"

	"github.com/plus3/hotbean/ecs"
)

type Mass struct {
	Kilograms float32
}

type WeighingSystem struct {
	ecs.SystemBase
}

func (s *WeighingSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Mass](sig)
}

func (s *WeighingSystem) OnEntityAdded(_ *ecs.World, e ecs.Entity) {
	fmt.Println("weighing", e)
}

func (s *WeighingSystem) OnEntityRemoved(_ *ecs.World, e ecs.Entity) {
	fmt.Println("stopped weighing", e)
}

// ExampleWorld shows interest sets following entity signatures as components come and go.
func ExampleWorld() {
	w := ecs.NewWorld()
	ecs.RegisterSystem(w, &WeighingSystem{})

	rock, _ := w.CreateEntity()
	feather, _ := w.CreateEntity()

	ecs.AddComponent(w, rock, Mass{Kilograms: 12})
	ecs.AddComponent(w, feather, Mass{Kilograms: 0.01})

	ecs.RemoveComponent[Mass](w, feather)
	w.DestroyEntity(rock)

	fmt.Println("registered:", ecs.IsComponentRegistered[Mass](w))

	// Output:
	// weighing 0
	// weighing 1
	// stopped weighing 1
	// stopped weighing 0
	// registered: false
}

// ExampleWorld_AllComponents lists the components of an entity through the type-erased API.
func ExampleWorld_AllComponents() {
	w := ecs.NewWorld()
	e, _ := w.CreateEntity()
	ecs.AddComponent(w, e, Transform{X: 1, Y: 2})
	ecs.AddComponent(w, e, Hitpoints{Current: 3, Max: 3})

	components, _ := w.AllComponents(e)
	for _, c := range components {
		fmt.Printf("%T %+v\n", c, c)
	}

	id, _ := w.ComponentID("ecs_test.Hitpoints")
	fmt.Println("hitpoints id:", id)

	// Output:
	// *ecs_test.Transform &{X:1 Y:2}
	// *ecs_test.Hitpoints &{Current:3 Max:3}
	// hitpoints id: 1
}
