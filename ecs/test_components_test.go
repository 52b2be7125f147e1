package ecs_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/plus3/hotbean/ecs"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

// Sprite names itself instead of using its Go type name.
type Sprite struct {
	Texture string
}

func (Sprite) ComponentName() string { return "sprite" }

// FakeSprite claims the same name as Sprite.
type FakeSprite struct{}

func (FakeSprite) ComponentName() string { return "sprite" }

// MoverSystem requires Position, like a renderer or physics system would.
type MoverSystem struct {
	ecs.SystemBase
}

func (s *MoverSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
}

// PhysicsSystem requires Position and Velocity and integrates one into the other.
type PhysicsSystem struct {
	ecs.SystemBase

	Bodies ecs.View[struct {
		*Position
		*Velocity
	}]
}

func (s *PhysicsSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
	ecs.Require[Velocity](sig)
}

func (s *PhysicsSystem) OnFixedUpdate(f *ecs.Frame) {
	for _, body := range s.Bodies.Iter(s.Entities().All()) {
		body.Position.X += body.Velocity.DX * float32(f.FixedDeltaTime)
		body.Position.Y += body.Velocity.DY * float32(f.FixedDeltaTime)
	}
}

// trackingSystem records its membership callbacks.
type trackingSystem struct {
	ecs.SystemBase

	added   []ecs.Entity
	removed []ecs.Entity
}

func (s *trackingSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Health](sig)
}

func (s *trackingSystem) OnEntityAdded(_ *ecs.World, e ecs.Entity) {
	s.added = append(s.added, e)
}

func (s *trackingSystem) OnEntityRemoved(_ *ecs.World, e ecs.Entity) {
	s.removed = append(s.removed, e)
}

// bodyTracker records membership callbacks of entities carrying Position and Velocity.
type bodyTracker struct{ trackingSystem }

func (s *bodyTracker) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
	ecs.Require[Velocity](sig)
}

// velocityAttacher gives every entity with a Position a Velocity as soon as it joins.
type velocityAttacher struct {
	ecs.SystemBase
	err error
}

func (s *velocityAttacher) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
}

func (s *velocityAttacher) OnEntityAdded(w *ecs.World, e ecs.Entity) {
	if ecs.HasComponent[Velocity](w, e) {
		return
	}
	if _, err := ecs.AddComponent(w, e, Velocity{DX: 1}); err != nil {
		s.err = err
	}
}

// positionStripper takes the Position away from every entity that gets a Name.
type positionStripper struct {
	ecs.SystemBase
	err error
}

func (s *positionStripper) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Name](sig)
}

func (s *positionStripper) OnEntityAdded(w *ecs.World, e ecs.Entity) {
	if err := ecs.RemoveComponent[Position](w, e); err != nil {
		s.err = err
	}
}

// positionRejecter removes a Position again as soon as it is added.
type positionRejecter struct {
	ecs.SystemBase
}

func (s *positionRejecter) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
}

func (s *positionRejecter) OnEntityAdded(w *ecs.World, e ecs.Entity) {
	_ = ecs.RemoveComponent[Position](w, e)
}

// newObservedWorld returns a world whose log output can be inspected.
func newObservedWorld(t *testing.T) (*ecs.World, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return ecs.NewWorld(ecs.WithLogger(zap.New(core))), logs
}

func mustCreate(t testing.TB, w *ecs.World) ecs.Entity {
	t.Helper()
	e, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	return e
}

func members(s interface{ Entities() *ecs.EntitySet }) []ecs.Entity {
	return s.Entities().Slice()
}
