package main

import (
	"math/rand/v2"

	"github.com/plus3/hotbean/ecs"
)

type IntegrateSystem struct {
	ecs.SystemBase
	Bodies ecs.View[struct {
		*Position
		*Velocity
		Acceleration *Acceleration `ecs:"optional"`
	}]
}

func (s *IntegrateSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
	ecs.Require[Velocity](sig)
}

func (s *IntegrateSystem) OnFixedUpdate(f *ecs.Frame) {
	dt := f.FixedDeltaTime
	for _, b := range s.Bodies.Iter(s.Entities().All()) {
		if b.Acceleration != nil {
			b.DX += b.Acceleration.AX * dt
			b.DY += b.Acceleration.AY * dt
		}
		b.X += b.DX * dt
		b.Y += b.DY * dt
	}
}

type DamageSystem struct {
	ecs.SystemBase
	Targets ecs.View[struct {
		ecs.Entity
		*Health
		*Damage
	}]
}

func (s *DamageSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Health](sig)
	ecs.Require[Damage](sig)
}

func (s *DamageSystem) OnUpdate(f *ecs.Frame) {
	for _, t := range s.Targets.Iter(s.Entities().All()) {
		t.Current -= t.PerSecond * f.DeltaTime
		if t.Current <= 0 {
			f.Commands.Destroy(t.Entity)
		}
	}
}

type LifetimeSystem struct {
	ecs.SystemBase
	Items ecs.View[struct {
		ecs.Entity
		*Lifetime
	}]
}

func (s *LifetimeSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Lifetime](sig)
}

func (s *LifetimeSystem) OnUpdate(f *ecs.Frame) {
	for _, item := range s.Items.Iter(s.Entities().All()) {
		item.Remaining -= f.DeltaTime
		if item.Remaining <= 0 {
			ecs.Remove[Lifetime](f.Commands, item.Entity)
		}
	}
}

type SpinSystem struct {
	ecs.SystemBase
	Spinners ecs.View[struct{ *Spin }]
}

func (s *SpinSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Spin](sig)
}

func (s *SpinSystem) OnUpdate(f *ecs.Frame) {
	for _, sp := range s.Spinners.Iter(s.Entities().All()) {
		sp.Angle += sp.Rate * f.DeltaTime
	}
}

// ChurnSystem keeps the population steady by spawning replacements for destroyed entities,
// which keeps component types being unregistered and registered again.
type ChurnSystem struct {
	ecs.SystemBase
	Target int
	rng    *rand.Rand
}

func (s *ChurnSystem) SetSignature(*ecs.SignatureBuilder) {}

func (s *ChurnSystem) OnPostRender(f *ecs.Frame) {
	missing := s.Target - f.World.EntityCount()
	for i := 0; i < missing; i++ {
		n := s.rng.IntN(5) + 1
		f.Commands.Defer(func(w *ecs.World) error {
			return spawnRandomEntity(w, n, s.rng)
		})
	}
}

func registerSystems(s *ecs.Scheduler, target int, rng *rand.Rand) error {
	for _, sys := range []ecs.System{
		&IntegrateSystem{},
		&DamageSystem{},
		&LifetimeSystem{},
		&SpinSystem{},
		&ChurnSystem{Target: target, rng: rng},
	} {
		if _, err := s.Register(sys); err != nil {
			return err
		}
	}
	return nil
}
