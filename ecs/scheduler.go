package ecs

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultFixedStep is the FixedUpdate step in seconds.
	DefaultFixedStep = 1.0 / 60.0
	// DefaultMaxDelta caps the frame delta fed to the fixed-step accumulator, so a long stall
	// does not turn into a burst of fixed updates.
	DefaultMaxDelta = 0.25
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	FixedSteps      uint64
	Systems         []SystemStats
}

// Scheduler drives a World through the frame lifecycle: Start once, then per frame PreEvent,
// one Event or WindowResize pass per queued event, FixedUpdate zero or more times, Update,
// Render and PostRender. Commands queued on the frame are flushed after Update and after
// PostRender.
type Scheduler struct {
	world *World
	log   *zap.Logger

	fixedStep   float64
	maxDelta    float64
	accumulator float64

	frame      *Frame
	events     []Event
	pending    []Event
	started    bool
	frames     uint64
	fixedSteps uint64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithFixedStep sets the FixedUpdate step in seconds.
func WithFixedStep(step float64) SchedulerOption {
	return func(s *Scheduler) {
		if step > 0 {
			s.fixedStep = step
		}
	}
}

// WithMaxDelta sets the largest frame delta in seconds fed to the accumulator.
func WithMaxDelta(maxDelta float64) SchedulerOption {
	return func(s *Scheduler) {
		if maxDelta > 0 {
			s.maxDelta = maxDelta
		}
	}
}

// NewScheduler creates a new scheduler for the given world.
func NewScheduler(w *World, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		world:     w,
		log:       w.log.Named("scheduler"),
		fixedStep: DefaultFixedStep,
		maxDelta:  DefaultMaxDelta,
		frame:     NewFrame(w, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frame.FixedDeltaTime = s.fixedStep
	return s
}

func (s *Scheduler) World() *World { return s.world }

// Register adds a system to the world. See RegisterSystem.
func (s *Scheduler) Register(system System) (System, error) {
	return s.world.AddSystem(system)
}

// PushEvent queues ev for the next frame. WindowResizeEvent values are delivered to
// WindowResizeHandler systems, everything else to EventHandler systems.
func (s *Scheduler) PushEvent(ev Event) {
	s.pending = append(s.pending, ev)
}

// Start runs the Start stage. It is called by the first Update if not called before, and
// does nothing after the first call.
func (s *Scheduler) Start() error {
	if s.started {
		return nil
	}
	s.started = true
	s.log.Debug("starting systems", zap.Int("systems", s.world.systems.Len()))
	s.world.IterateSystems(s.frame, StageStart)
	return s.frame.Commands.Flush(s.world)
}

// Update runs the PreEvent, Event, WindowResize, FixedUpdate and Update stages for a frame that
// took dt seconds, then flushes the queued commands.
func (s *Scheduler) Update(dt float64) error {
	var errs error
	if !s.started {
		errs = s.Start()
	}

	if dt < 0 {
		dt = 0
	}
	if dt > s.maxDelta {
		dt = s.maxDelta
	}

	f := s.frame
	f.DeltaTime = dt
	f.FixedDeltaTime = s.fixedStep
	f.Count = s.frames
	f.Surface = nil

	s.world.IterateSystems(f, StagePreEvent)

	// Events pushed by handlers wait for the next frame.
	s.events, s.pending = s.pending, s.events[:0]
	for _, ev := range s.events {
		if resize, ok := ev.(WindowResizeEvent); ok {
			s.world.IterateSystemsEvent(f, resize, StageWindowResize)
			continue
		}
		s.world.IterateSystemsEvent(f, ev, StageEvent)
	}
	clear(s.events)

	s.accumulator += dt
	for s.accumulator >= s.fixedStep {
		s.world.IterateSystems(f, StageFixedUpdate)
		s.accumulator -= s.fixedStep
		s.fixedSteps++
	}
	f.Alpha = s.accumulator / s.fixedStep

	s.world.IterateSystems(f, StageUpdate)
	return multierr.Append(errs, f.Commands.Flush(s.world))
}

// Render runs the Render and PostRender stages against surface, which may be nil when running
// headless, then flushes the queued commands and ends the frame.
func (s *Scheduler) Render(surface any) error {
	f := s.frame
	f.Surface = surface
	s.world.IterateSystems(f, StageRender)
	s.world.IterateSystems(f, StagePostRender)
	f.Surface = nil
	s.frames++
	return f.Commands.Flush(s.world)
}

// Once runs a full headless frame with the given delta time.
func (s *Scheduler) Once(dt float64) error {
	return multierr.Append(s.Update(dt), s.Render(nil))
}

// Run executes frames at the given interval until the context is cancelled or a frame fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// Frames returns the number of completed frames.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: s.world.systems.Len(),
		Frames:      s.frames,
		FixedSteps:  s.fixedSteps,
		Systems:     s.world.SystemStats(),
	}
	for _, system := range stats.Systems {
		stats.TotalExecutions += system.ExecutionCount
	}
	return stats
}
