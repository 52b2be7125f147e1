package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/hotbean/ecs"
)

// stageRecorder appends "<name>:<stage>" to a shared log for every stage it handles.
type stageRecorder struct {
	ecs.SystemBase
	name string
	log  *[]string
}

func (s *stageRecorder) SetSignature(*ecs.SignatureBuilder) {}

func (s *stageRecorder) record(f *ecs.Frame) { *s.log = append(*s.log, s.name+":"+f.Stage.String()) }

func (s *stageRecorder) OnStart(f *ecs.Frame)       { s.record(f) }
func (s *stageRecorder) OnPreEvent(f *ecs.Frame)    { s.record(f) }
func (s *stageRecorder) OnFixedUpdate(f *ecs.Frame) { s.record(f) }
func (s *stageRecorder) OnUpdate(f *ecs.Frame)      { s.record(f) }
func (s *stageRecorder) OnRender(f *ecs.Frame)      { s.record(f) }
func (s *stageRecorder) OnPostRender(f *ecs.Frame)  { s.record(f) }

func (s *stageRecorder) OnEvent(f *ecs.Frame, ev ecs.Event) {
	s.record(f)
}

func (s *stageRecorder) OnWindowResize(f *ecs.Frame, ev ecs.WindowResizeEvent) {
	s.record(f)
}

// secondRecorder is a distinct type so both can be registered on one world.
type secondRecorder struct{ stageRecorder }

// updateOnly implements nothing but Update.
type updateOnly struct {
	ecs.SystemBase
	calls int
}

func (s *updateOnly) SetSignature(*ecs.SignatureBuilder) {}
func (s *updateOnly) OnUpdate(*ecs.Frame)                { s.calls++ }

// registeringSystem registers updateOnly from inside its own Update.
type registeringSystem struct {
	ecs.SystemBase
	registered *updateOnly
}

func (s *registeringSystem) SetSignature(*ecs.SignatureBuilder) {}

func (s *registeringSystem) OnUpdate(f *ecs.Frame) {
	if s.registered == nil {
		s.registered, _ = ecs.RegisterSystem(f.World, &updateOnly{})
	}
}

// unregisteringSystem unregisters updateOnly from inside its own Update.
type unregisteringSystem struct {
	ecs.SystemBase
}

func (s *unregisteringSystem) SetSignature(*ecs.SignatureBuilder) {}

func (s *unregisteringSystem) OnUpdate(f *ecs.Frame) {
	ecs.UnregisterSystem[*updateOnly](f.World)
}

// velocityCounter records how many members it has on every Update.
type velocityCounter struct {
	ecs.SystemBase
	seen []int
}

func (s *velocityCounter) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Velocity](sig)
}

func (s *velocityCounter) OnUpdate(*ecs.Frame) { s.seen = append(s.seen, s.Entities().Len()) }

type laterVelocityCounter struct{ velocityCounter }

// launcher gives its members a Velocity during Update, without going through Commands.
type launcher struct {
	ecs.SystemBase
	err error
}

func (s *launcher) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[Position](sig)
}

func (s *launcher) OnUpdate(f *ecs.Frame) {
	for _, e := range s.Entities().Slice() {
		if ecs.HasComponent[Velocity](f.World, e) {
			continue
		}
		if _, err := ecs.AddComponent(f.World, e, Velocity{DX: 1}); err != nil {
			s.err = err
		}
	}
}

func TestSignatureChangeVisibleLaterInPass(t *testing.T) {
	w := ecs.NewWorld()
	before, err := ecs.RegisterSystem(w, &velocityCounter{})
	require.NoError(t, err)
	l, err := ecs.RegisterSystem(w, &launcher{})
	require.NoError(t, err)
	after, err := ecs.RegisterSystem(w, &laterVelocityCounter{})
	require.NoError(t, err)

	e := mustCreate(t, w)
	_, err = ecs.AddComponent(w, e, Position{})
	require.NoError(t, err)

	f := ecs.NewFrame(w, 0)
	w.IterateSystems(f, ecs.StageUpdate)
	require.NoError(t, l.err)
	assert.Equal(t, []int{0}, before.seen, "systems already visited are not revisited")
	assert.Equal(t, []int{1}, after.seen, "later systems see the change in the same pass")

	w.IterateSystems(f, ecs.StageUpdate)
	assert.Equal(t, []int{0, 1}, before.seen)
	assert.Equal(t, []int{1, 1}, after.seen)
}

func TestStageDispatchOrder(t *testing.T) {
	w := ecs.NewWorld()
	var log []string
	_, err := ecs.RegisterSystem(w, &stageRecorder{name: "a", log: &log})
	require.NoError(t, err)
	_, err = ecs.RegisterSystem(w, &secondRecorder{stageRecorder{name: "b", log: &log}})
	require.NoError(t, err)

	f := ecs.NewFrame(w, 0.1)
	for _, stage := range []ecs.Stage{ecs.StageUpdate, ecs.StageRender} {
		w.IterateSystems(f, stage)
	}

	assert.Equal(t, []string{"a:update", "b:update", "a:render", "b:render"}, log)
	assert.Equal(t, uint64(1), w.StageRuns(ecs.StageUpdate))
	assert.Equal(t, uint64(0), w.StageRuns(ecs.StageFixedUpdate))
}

func TestWindowResizeDispatch(t *testing.T) {
	w := ecs.NewWorld()
	var log []string
	_, err := ecs.RegisterSystem(w, &stageRecorder{name: "a", log: &log})
	require.NoError(t, err)

	f := ecs.NewFrame(w, 0)
	w.IterateSystemsEvent(f, "key", ecs.StageWindowResize)
	assert.Empty(t, log, "resize handlers only receive resize events")

	w.IterateSystemsEvent(f, ecs.WindowResizeEvent{Width: 640, Height: 480}, ecs.StageWindowResize)
	assert.Equal(t, []string{"a:window-resize"}, log)
}

func TestRegisterDuringPass(t *testing.T) {
	w := ecs.NewWorld()
	registrar, err := ecs.RegisterSystem(w, &registeringSystem{})
	require.NoError(t, err)

	f := ecs.NewFrame(w, 0)
	w.IterateSystems(f, ecs.StageUpdate)
	require.NotNil(t, registrar.registered)
	assert.Equal(t, 0, registrar.registered.calls, "systems added mid-pass start with the next pass")

	w.IterateSystems(f, ecs.StageUpdate)
	assert.Equal(t, 1, registrar.registered.calls)
}

func TestUnregisterDuringPass(t *testing.T) {
	w := ecs.NewWorld()
	_, err := ecs.RegisterSystem(w, &unregisteringSystem{})
	require.NoError(t, err)
	victim, err := ecs.RegisterSystem(w, &updateOnly{})
	require.NoError(t, err)

	w.IterateSystems(ecs.NewFrame(w, 0), ecs.StageUpdate)
	assert.Equal(t, 0, victim.calls, "systems removed mid-pass are skipped")
	assert.Len(t, w.Systems(), 1)
}

func TestSystemStats(t *testing.T) {
	w := ecs.NewWorld()
	_, err := ecs.RegisterSystem(w, &updateOnly{})
	require.NoError(t, err)
	_, err = ecs.RegisterSystem(w, &PhysicsSystem{})
	require.NoError(t, err)

	e := mustCreate(t, w)
	_, err = ecs.AddComponent(w, e, Position{})
	require.NoError(t, err)
	_, err = ecs.AddComponent(w, e, Velocity{})
	require.NoError(t, err)

	f := ecs.NewFrame(w, 0)
	for i := 0; i < 3; i++ {
		w.IterateSystems(f, ecs.StageUpdate)
	}

	stats := w.SystemStats()
	require.Len(t, stats, 2)

	assert.Equal(t, "ecs_test.updateOnly", stats[0].Name)
	assert.Equal(t, int64(3), stats[0].ExecutionCount)
	assert.LessOrEqual(t, stats[0].MinDuration, stats[0].MaxDuration)
	assert.Empty(t, stats[0].Requires)

	assert.Equal(t, "ecs_test.PhysicsSystem", stats[1].Name)
	assert.Equal(t, int64(0), stats[1].ExecutionCount, "PhysicsSystem has no update handler")
	assert.Zero(t, stats[1].MinDuration)
	assert.Equal(t, 1, stats[1].Entities)
	assert.Equal(t, []string{"ecs_test.Position", "ecs_test.Velocity"}, stats[1].Requires)
}

func TestEntitySet(t *testing.T) {
	w := ecs.NewWorld()
	mover, err := ecs.RegisterSystem(w, &MoverSystem{})
	require.NoError(t, err)

	var entities []ecs.Entity
	for i := 0; i < 5; i++ {
		e := mustCreate(t, w)
		_, err := ecs.AddComponent(w, e, Position{})
		require.NoError(t, err)
		entities = append(entities, e)
	}
	require.NoError(t, w.DestroyEntity(entities[1]))

	set := mover.Entities()
	assert.Equal(t, 4, set.Len())
	assert.False(t, set.Has(entities[1]))
	assert.ElementsMatch(t, []ecs.Entity{entities[0], entities[2], entities[3], entities[4]}, set.Slice())

	var seen int
	for range set.All() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
