package ecs

// Stage is one of the per-frame callback points systems can implement.
type Stage uint8

const (
	StageStart Stage = iota
	StagePreEvent
	StageEvent
	StageWindowResize
	StageFixedUpdate
	StageUpdate
	StageRender
	StagePostRender

	stageCount
)

var stageNames = [stageCount]string{
	StageStart:        "start",
	StagePreEvent:     "pre-event",
	StageEvent:        "event",
	StageWindowResize: "window-resize",
	StageFixedUpdate:  "fixed-update",
	StageUpdate:       "update",
	StageRender:       "render",
	StagePostRender:   "post-render",
}

func (s Stage) String() string {
	if s >= stageCount {
		return "unknown"
	}
	return stageNames[s]
}

// Stages lists every stage in the order a frame runs them.
var Stages = [...]Stage{
	StageStart,
	StagePreEvent,
	StageEvent,
	StageWindowResize,
	StageFixedUpdate,
	StageUpdate,
	StageRender,
	StagePostRender,
}

// Event is an external event delivered during StageEvent, typically input from the window
// driver.
type Event any

// WindowResizeEvent is delivered during StageWindowResize.
type WindowResizeEvent struct {
	Width  int
	Height int
}

// Frame is passed to every stage handler.
type Frame struct {
	World *World

	// DeltaTime is the wall time in seconds since the previous frame.
	DeltaTime float64
	// FixedDeltaTime is the constant step of StageFixedUpdate.
	FixedDeltaTime float64
	// Alpha is how far the frame is between two fixed steps, in [0, 1).
	Alpha float64
	// Count is the number of frames run before this one.
	Count uint64
	Stage Stage

	// Surface is the render target supplied by the window driver during StageRender and
	// StagePostRender, e.g. an *ebiten.Image. It is nil when running headless.
	Surface any

	Commands *Commands
}

// NewFrame creates a frame for w with an empty command buffer.
func NewFrame(w *World, dt float64) *Frame {
	return &Frame{
		World:     w,
		DeltaTime: dt,
		Commands:  newCommands(),
	}
}
