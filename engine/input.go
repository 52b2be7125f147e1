package engine

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/hotbean/ecs"
)

// KeyEvent is pushed to the scheduler when a key goes down or up.
type KeyEvent struct {
	Key  ebiten.Key
	Down bool
}

// MouseButtonEvent is pushed to the scheduler when a mouse button goes down or up. X and Y are
// the cursor position in screen pixels.
type MouseButtonEvent struct {
	Button ebiten.MouseButton
	Down   bool
	X, Y   int
}

// InputState is a singleton holding the keys currently held down.
type InputState struct {
	Pressed map[ebiten.Key]bool
}

// IsPressed reports whether key is held down.
func (s *InputState) IsPressed(key ebiten.Key) bool {
	return s != nil && s.Pressed[key]
}

// InputSystem keeps the InputState singleton in step with key events.
type InputSystem struct {
	ecs.SystemBase
	State ecs.Singleton[InputState]
}

func (s *InputSystem) SetSignature(*ecs.SignatureBuilder) {}

func (s *InputSystem) OnEvent(_ *ecs.Frame, ev ecs.Event) {
	key, ok := ev.(KeyEvent)
	if !ok {
		return
	}
	state := s.State.Get()
	if state == nil {
		return
	}
	if key.Down {
		state.Pressed[key.Key] = true
	} else {
		delete(state.Pressed, key.Key)
	}
}

// RegisterInput adds the InputState singleton and the InputSystem to w.
func RegisterInput(w *ecs.World) (*InputSystem, error) {
	ecs.NewSingleton(w, InputState{Pressed: make(map[ebiten.Key]bool)})
	return ecs.RegisterSystem(w, &InputSystem{})
}
