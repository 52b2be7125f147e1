package ecs_test

import (
	"testing"

	"github.com/plus3/hotbean/ecs"
)

func populate(b *testing.B, w *ecs.World, n int) []ecs.Entity {
	b.Helper()
	entities := make([]ecs.Entity, n)
	for i := range entities {
		e := mustCreate(b, w)
		if _, err := ecs.AddComponent(w, e, Position{X: float32(i)}); err != nil {
			b.Fatal(err)
		}
		if _, err := ecs.AddComponent(w, e, Velocity{DX: 1, DY: 1}); err != nil {
			b.Fatal(err)
		}
		entities[i] = e
	}
	return entities
}

func BenchmarkCreateDestroy(b *testing.B) {
	w := ecs.NewWorld()
	for b.Loop() {
		e, _ := w.CreateEntity()
		_ = w.DestroyEntity(e)
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	w := ecs.NewWorld()
	_, _ = ecs.RegisterSystem(w, &PhysicsSystem{})
	entities := populate(b, w, 1000)

	i := 0
	for b.Loop() {
		e := entities[i%len(entities)]
		_ = ecs.RemoveComponent[Velocity](w, e)
		_, _ = ecs.AddComponent(w, e, Velocity{DX: 1})
		i++
	}
}

func BenchmarkGetComponent(b *testing.B) {
	w := ecs.NewWorld()
	entities := populate(b, w, 1000)

	i := 0
	for b.Loop() {
		_, _ = ecs.GetComponent[Position](w, entities[i%len(entities)])
		i++
	}
}

func BenchmarkFixedUpdate10k(b *testing.B) {
	w := ecs.NewWorld()
	_, _ = ecs.RegisterSystem(w, &PhysicsSystem{})
	populate(b, w, 10000)
	s := ecs.NewScheduler(w)

	for b.Loop() {
		_ = s.Once(ecs.DefaultFixedStep)
	}
}

func BenchmarkViewAll10k(b *testing.B) {
	w := ecs.NewWorld()
	populate(b, w, 10000)
	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	for b.Loop() {
		for _, m := range view.All() {
			m.Position.X += m.Velocity.DX
		}
	}
}
