package main

import (
	"math/rand/v2"

	"github.com/plus3/hotbean/ecs"
)

type Position struct{ X, Y float64 }

type Velocity struct{ DX, DY float64 }

type Acceleration struct{ AX, AY float64 }

type Health struct{ Current, Max float64 }

type Damage struct{ PerSecond float64 }

type Lifetime struct{ Remaining float64 }

type Spin struct{ Angle, Rate float64 }

type Mass struct{ Kilograms float64 }

type Tint struct{ R, G, B uint8 }

type Tag struct{ Group int }

// componentCount is the number of component types random entities draw from.
const componentCount = 10

// addRandomComponent adds the component with index i to e.
func addRandomComponent(w *ecs.World, e ecs.Entity, i int, rng *rand.Rand) error {
	var err error
	switch i {
	case 0:
		_, err = ecs.AddComponent(w, e, Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000})
	case 1:
		_, err = ecs.AddComponent(w, e, Velocity{DX: rng.Float64() - 0.5, DY: rng.Float64() - 0.5})
	case 2:
		_, err = ecs.AddComponent(w, e, Acceleration{AY: -9.8})
	case 3:
		_, err = ecs.AddComponent(w, e, Health{Current: 100, Max: 100})
	case 4:
		_, err = ecs.AddComponent(w, e, Damage{PerSecond: rng.Float64() * 20})
	case 5:
		_, err = ecs.AddComponent(w, e, Lifetime{Remaining: 1 + rng.Float64()*5})
	case 6:
		_, err = ecs.AddComponent(w, e, Spin{Rate: rng.Float64()})
	case 7:
		_, err = ecs.AddComponent(w, e, Mass{Kilograms: 1 + rng.Float64()})
	case 8:
		_, err = ecs.AddComponent(w, e, Tint{R: uint8(rng.IntN(256))})
	default:
		_, err = ecs.AddComponent(w, e, Tag{Group: rng.IntN(8)})
	}
	return err
}

// spawnRandomEntity creates an entity with n distinct random components.
func spawnRandomEntity(w *ecs.World, n int, rng *rand.Rand) error {
	e, err := w.CreateEntity()
	if err != nil {
		return err
	}
	for _, i := range rng.Perm(componentCount)[:n] {
		if err := addRandomComponent(w, e, i, rng); err != nil {
			return err
		}
	}
	return nil
}
