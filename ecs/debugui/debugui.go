// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers the render function of every ImguiItem to the end of the update stage,
// and keeps the ImguiInputState singleton current.
type ImguiSystem struct {
	ecs.SystemBase

	Items      ecs.View[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) SetSignature(sig *ecs.SignatureBuilder) {
	ecs.Require[ImguiItem](sig)
}

// OnUpdate updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) OnUpdate(frame *ecs.Frame) {
	if state := i.InputState.Get(); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for _, item := range i.Items.Iter(i.Entities().All()) {
		render := item.Render
		if render == nil {
			continue
		}
		frame.Commands.Defer(func(*ecs.World) error {
			render()
			return nil
		})
	}
}

// Register adds the ImguiSystem and the ImguiInputState singleton to w.
func Register(w *ecs.World) (*ImguiSystem, error) {
	ecs.NewSingleton[ImguiInputState](w)
	return ecs.RegisterSystem(w, &ImguiSystem{})
}
